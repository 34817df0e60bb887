package delivery

import (
	"errors"
	"fmt"
	"time"
)

type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindTooLong     ErrorKind = "too_long"
	KindRejected    ErrorKind = "rejected"
	KindNetwork     ErrorKind = "network"
)

// SendError classifies a failed send so the caller can decide whether a
// retry makes sense.
type SendError struct {
	Kind        ErrorKind
	StatusCode  int
	Description string
	RetryAfter  time.Duration
	Err         error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("send failed (%s): status %d: %s", e.Kind, e.StatusCode, e.Description)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func (e *SendError) Temporary() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimited, KindNetwork:
		return true
	}
	return false
}

func isTemporary(err error) bool {
	var se *SendError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
