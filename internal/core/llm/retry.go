package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	callTimeout  = 60 * time.Second
	retryBackoff = 2 * time.Second
)

// withRetry bounds one external model call with a timeout and retries it a
// single time on transient failure. Auth and validation errors are never
// retried.
func withRetry[T any](ctx context.Context, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := func() (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		return fn(callCtx)
	}

	out, err := attempt()
	if err == nil || !isTransient(err) || ctx.Err() != nil {
		return out, err
	}

	log.Printf("WARN: %s failed transiently, retrying once: %v", op, err)
	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return out, ctx.Err()
	}
	return attempt()
}

func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return errors.Is(err, context.DeadlineExceeded)
}
