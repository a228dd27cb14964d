package debounce

import (
	"context"
	"errors"
)

// ErrSuperseded is the cancel cause of a call replaced by a newer one.
var ErrSuperseded = errors.New("superseded by a newer edit")

// Superseded reports whether ctx was cancelled because a newer call started.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}
