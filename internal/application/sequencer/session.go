package sequencer

import (
	"context"
	"time"
)

// Session is a live browser owned by exactly one run.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find blocks until an element matching loc satisfies ready, or timeout elapses.
	Find(ctx context.Context, loc Locator, ready Readiness, timeout time.Duration) (Element, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Element is a single-use handle to remote DOM state. Callers must not keep it
// across a scroll, click or navigation; locate again instead.
type Element interface {
	Click(ctx context.Context) error
	Input(ctx context.Context, text string) error
	ScrollIntoView(ctx context.Context) error
	Selected(ctx context.Context) (bool, error)
}
