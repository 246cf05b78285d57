package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rankwatch/config"
	"rankwatch/models"
)

type ExtractorOptions struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MinListings int
	MaxListings int
	Cascade     Cascade
}

func ExtractorOptionsFrom(cfg config.ScraperConfig) ExtractorOptions {
	return ExtractorOptions{
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		MinListings: cfg.MinListings,
		MaxListings: cfg.MaxListings,
		Cascade:     DefaultCascade,
	}
}

// Extractor turns a target page into its ordered listings, retrying soft and
// hard failures a bounded number of times.
type Extractor struct {
	renderer  Renderer
	artifacts ArtifactSink
	opts      ExtractorOptions
	wait      func(ctx context.Context, d time.Duration) error
}

func NewExtractor(renderer Renderer, artifacts ArtifactSink, opts ExtractorOptions) *Extractor {
	if artifacts == nil {
		artifacts = NopSink{}
	}
	if opts.Cascade.Containers == nil {
		opts.Cascade = DefaultCascade
	}
	return &Extractor{
		renderer:  renderer,
		artifacts: artifacts,
		opts:      opts,
		wait:      Wait,
	}
}

// Extract never fails: after the last attempt it returns an empty slice.
func (e *Extractor) Extract(ctx context.Context, target models.WatchTarget) []models.Listing {
	attempts := max(e.opts.MaxRetries, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		log.Info().
			Str("target", target.Key()).
			Int("attempt", attempt).
			Int("of", attempts).
			Msg("Fetching listings")

		listings, err := e.attempt(ctx, target, attempt)
		if err == nil {
			return listings
		}

		var ev *zerolog.Event
		if errors.Is(err, ErrTooFewListings) || errors.Is(err, ErrNoContainers) {
			ev = log.Warn()
		} else {
			ev = log.Error()
		}
		ev.Err(err).Str("target", target.Key()).Int("attempt", attempt).Msg("Attempt failed")

		if attempt < attempts {
			if err := e.wait(ctx, e.opts.RetryDelay); err != nil {
				break
			}
		}
	}

	log.Error().Str("target", target.Key()).Int("attempts", attempts).Msg("All attempts failed")
	return []models.Listing{}
}

func (e *Extractor) attempt(ctx context.Context, target models.WatchTarget, attempt int) (listings []models.Listing, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("attempt panicked: %v", r)
		}
	}()

	page, err := e.renderer.Render(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("target", target.Key()).Str("title", page.Title).Msg("Page loaded")

	e.saveArtifacts(ctx, target, attempt, page)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(target.URL)
	if err != nil {
		return nil, fmt.Errorf("parse target url: %w", err)
	}

	selector, listings, err := e.opts.Cascade.Extract(doc, base, e.opts.MaxListings)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("target", target.Key()).
		Str("selector", selector).
		Int("count", len(listings)).
		Msg("Listings extracted")
	for i, l := range listings[:min(3, len(listings))] {
		log.Debug().Int("rank", i+1).Str("name", l.Name).Str("price", l.Price).Msg("Listing")
	}

	if len(listings) < e.opts.MinListings {
		return nil, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewListings, len(listings), e.opts.MinListings)
	}
	return listings, nil
}

func (e *Extractor) saveArtifacts(ctx context.Context, target models.WatchTarget, attempt int, page *RenderedPage) {
	if len(page.Screenshot) > 0 {
		name := ArtifactName(target.Category, attempt, "png")
		if err := e.artifacts.Save(ctx, name, page.Screenshot, "image/png"); err != nil {
			log.Warn().Err(err).Str("artifact", name).Msg("Failed to save screenshot")
		}
	}

	name := ArtifactName(target.Category, attempt, "html")
	if err := e.artifacts.Save(ctx, name, []byte(page.HTML), "text/html; charset=utf-8"); err != nil {
		log.Warn().Err(err).Str("artifact", name).Msg("Failed to save page HTML")
	}
}
