package delivery

import (
	"context"
	"errors"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/retry"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeSender struct {
	sent     []string
	failures map[string][]error
}

func (f *fakeSender) Send(ctx context.Context, text string) error {
	if errs := f.failures[text]; len(errs) > 0 {
		f.failures[text] = errs[1:]
		return errs[0]
	}
	f.sent = append(f.sent, text)
	return nil
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}
}

func segments(texts ...string) []chunk.Segment {
	segs := make([]chunk.Segment, len(texts))
	for i, txt := range texts {
		segs[i] = chunk.Segment{Index: i + 1, Total: len(texts), Payload: txt}
		if len(texts) > 1 {
			segs[i].Marker = chunk.Marker("Part", i+1, len(texts))
		}
	}
	return segs
}

func TestDeliverInOrder(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testPolicy(), time.Millisecond)

	rep := d.Deliver(context.Background(), segments("one", "two", "three"))

	assert.Equal(t, 3, rep.Sent)
	assert.Equal(t, 0, rep.Failed)
	assert.Equal(t, []string{"Part 1/3:\n\none", "Part 2/3:\n\ntwo", "Part 3/3:\n\nthree"}, sender.sent)
}

func TestDeliverPausesBetweenParts(t *testing.T) {
	pause := 20 * time.Millisecond
	sender := &fakeSender{}
	d := NewDispatcher(sender, testPolicy(), pause)

	start := time.Now()
	rep := d.Deliver(context.Background(), segments("one", "two", "three"))

	assert.Equal(t, 3, rep.Sent)
	assert.Equal(t, true, time.Since(start) >= 2*pause)
}

func TestDeliverNoPauseForSinglePart(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testPolicy(), time.Hour)

	start := time.Now()
	rep := d.Deliver(context.Background(), segments("only"))

	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, true, time.Since(start) < time.Minute)
}

func TestDeliverWaitsRetryAfterInsteadOfDelay(t *testing.T) {
	sender := &fakeSender{failures: map[string][]error{
		"only": {&SendError{Kind: KindRateLimited, StatusCode: 429, RetryAfter: 10 * time.Millisecond}},
	}}
	d := NewDispatcher(sender, retry.Policy{MaxAttempts: 2, Delay: time.Hour}, 0)

	start := time.Now()
	rep := d.Deliver(context.Background(), segments("only"))

	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, true, time.Since(start) < time.Minute)
}

type cancelSender struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelSender) Send(ctx context.Context, text string) error {
	c.calls++
	c.cancel()
	return &SendError{Kind: KindNetwork, StatusCode: 502, Description: "bad gateway"}
}

func TestDeliverCancelledDuringRetryWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &cancelSender{cancel: cancel}
	d := NewDispatcher(sender, retry.Policy{MaxAttempts: 3, Delay: time.Hour}, 0)

	rep := d.Deliver(ctx, segments("first", "second"))

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, 0, rep.Sent)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, 2, len(rep.Undelivered))
}

func TestDeliverRetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{failures: map[string][]error{
		"only": {&SendError{Kind: KindTimeout}, &SendError{Kind: KindNetwork, StatusCode: 502}},
	}}
	d := NewDispatcher(sender, testPolicy(), 0)

	rep := d.Deliver(context.Background(), segments("only"))

	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, []string{"only"}, sender.sent)
}

func TestDeliverContinuesAfterRejectedPart(t *testing.T) {
	first := "Part 1/2:\n\nfirst"
	sender := &fakeSender{failures: map[string][]error{
		first: {
			&SendError{Kind: KindTooLong, StatusCode: 400, Description: "message is too long"},
			errors.New("must not be retried"),
		},
	}}
	d := NewDispatcher(sender, testPolicy(), 0)

	rep := d.Deliver(context.Background(), segments("first", "second"))

	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 1, len(rep.Undelivered))
	assert.Equal(t, first, rep.Undelivered[0].Text())
	assert.Equal(t, []string{"Part 2/2:\n\nsecond"}, sender.sent)
	assert.Equal(t, 1, len(sender.failures[first]))
}

func TestDeliverNothing(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testPolicy(), 0)

	rep := d.Deliver(context.Background(), nil)

	assert.Equal(t, Report{}, rep)
	assert.Equal(t, 0, len(sender.sent))
}

func TestDeliverCancelled(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testPolicy(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := d.Deliver(ctx, segments("a", "b"))

	assert.Equal(t, 0, rep.Sent)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, 2, len(rep.Undelivered))
}

func TestNotify(t *testing.T) {
	sender := &fakeSender{}

	Notify(context.Background(), sender, "digest run failed")

	assert.Equal(t, []string{"digest run failed"}, sender.sent)
}
