package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/retry"
	"time"
)

const (
	previewChars  = 150
	maxRetryAfter = 30 * time.Second
)

type Dispatcher struct {
	sender Sender
	policy retry.Policy
	pause  time.Duration
}

func NewDispatcher(sender Sender, policy retry.Policy, pause time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, policy: policy, pause: pause}
}

type Report struct {
	Sent   int
	Failed int
	// Undelivered keeps the failed segments in send order.
	Undelivered []chunk.Segment
}

// Deliver sends every segment in order. A segment that still fails after the
// retry policy is logged and skipped; the remaining segments are attempted.
func (d *Dispatcher) Deliver(ctx context.Context, segments []chunk.Segment) Report {
	var rep Report

	if len(segments) == 0 {
		slog.Info("no segments to deliver")
		return rep
	}

	for i, seg := range segments {
		if ctx.Err() != nil {
			rep.Failed += len(segments) - i
			rep.Undelivered = append(rep.Undelivered, segments[i:]...)
			slog.Error("delivery cancelled", "remaining", len(segments)-i, "error", ctx.Err())
			break
		}

		text := seg.Text()
		label := fmt.Sprintf("send part %d/%d", seg.Index, seg.Total)

		err := d.policy.Do(ctx, label, func(ctx context.Context) error {
			return d.sendOnce(ctx, text)
		})

		if err != nil {
			rep.Failed++
			rep.Undelivered = append(rep.Undelivered, seg)
			logSendFailure(seg, err)
		} else {
			rep.Sent++
			slog.Info("part sent", "part", seg.Index, "total", seg.Total, "bytes", seg.Bytes(), "chars", len([]rune(text)))
		}

		if i < len(segments)-1 && d.pause > 0 {
			slog.Info("pausing before next part", "pause", d.pause.String())
			select {
			case <-ctx.Done():
			case <-time.After(d.pause):
			}
		}
	}

	return rep
}

func (d *Dispatcher) sendOnce(ctx context.Context, text string) error {
	err := d.sender.Send(ctx, text)
	if err == nil {
		return nil
	}

	if !isTemporary(err) {
		return retry.Permanent(err)
	}

	var se *SendError
	if errors.As(err, &se) && se.RetryAfter > 0 {
		return retry.After(err, min(se.RetryAfter, maxRetryAfter))
	}
	return err
}

func logSendFailure(seg chunk.Segment, err error) {
	text := seg.Text()
	attrs := []any{
		"part", seg.Index,
		"total", seg.Total,
		"bytes", seg.Bytes(),
		"chars", len([]rune(text)),
		"preview", chunk.Preview(text, previewChars),
		"error", err,
	}

	var se *SendError
	if errors.As(err, &se) {
		attrs = append(attrs, "kind", se.Kind, "status", se.StatusCode, "description", se.Description)
	}

	slog.Error("failed to send part", attrs...)
}

// Notify sends a best-effort notice to the channel. The message is cut to
// the transport limit.
func Notify(ctx context.Context, sender Sender, msg string) {
	if parts := chunk.ForceSplit(msg, chunk.DefaultHardLimit); len(parts) > 0 {
		msg = parts[0]
	}

	if err := sender.Send(ctx, msg); err != nil {
		slog.Error("failed to send failure notice", "error", err)
	}
}
