package scraper

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoContainers   = errors.New("no listing containers matched")
	ErrTooFewListings = errors.New("too few listings extracted")
)

// RenderedPage is what one navigation yields: the serialized DOM plus the
// debug material saved next to it.
type RenderedPage struct {
	URL        string
	Title      string
	HTML       string
	Screenshot []byte
}

// Renderer loads a page in a real browser and returns its rendered state.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*RenderedPage, error)
}

// Wait sleeps for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
