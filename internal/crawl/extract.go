package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobtrawler/internal/browser"
	"jobtrawler/internal/listing"
)

// Extractor reads the five listing fields off the current detail view. Each
// field is pulled independently: a missing element degrades that field to its
// fallback instead of failing the card. Extraction never navigates.
type Extractor struct {
	selectors      Selectors
	settleInterval time.Duration
	settleTimeout  time.Duration
	logger         *zap.Logger
}

// NewExtractor builds an Extractor. Settle timings bound the wait for
// lazy-loaded detail panels to stop growing before any field is read.
func NewExtractor(selectors Selectors, settleInterval, settleTimeout time.Duration, logger *zap.Logger) *Extractor {
	if settleInterval <= 0 {
		settleInterval = 500 * time.Millisecond
	}
	if settleTimeout <= 0 {
		settleTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		selectors:      selectors,
		settleInterval: settleInterval,
		settleTimeout:  settleTimeout,
		logger:         logger,
	}
}

// Extract settles the detail view, then reads every field. The returned
// record is always usable; absence shows up as the field fallback ("N/A" for
// everything except salary, which stays empty because the source genuinely
// omits it).
func (e *Extractor) Extract(ctx context.Context, s browser.Session) (listing.Record, error) {
	if err := e.settle(ctx, s); err != nil {
		return listing.Record{}, fmt.Errorf("settle detail view: %w", err)
	}

	return listing.Record{
		Title:       e.field(ctx, s, e.selectors.Title, "title", listing.FallbackMissing),
		Location:    e.field(ctx, s, e.selectors.Location, "location", listing.FallbackMissing),
		Salary:      e.field(ctx, s, e.selectors.Salary, "salary", ""),
		Benefits:    e.field(ctx, s, e.selectors.Benefits, "benefits", listing.FallbackMissing),
		Description: e.field(ctx, s, e.selectors.Description, "description", listing.FallbackMissing),
	}, nil
}

// settle scrolls to the bottom repeatedly until the document height stops
// growing between polls, so lazy-loaded panels are present before any read.
// The overall wait is bounded by settleTimeout; hitting the bound is not an
// error, extraction proceeds with whatever has loaded.
func (e *Extractor) settle(ctx context.Context, s browser.Session) error {
	deadline := time.Now().Add(e.settleTimeout)

	last, err := s.ContentHeight(ctx)
	if err != nil {
		return fmt.Errorf("initial height: %w", err)
	}

	for time.Now().Before(deadline) {
		if err := s.ScrollToBottom(ctx); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.settleInterval):
		}

		height, err := s.ContentHeight(ctx)
		if err != nil {
			return fmt.Errorf("poll height: %w", err)
		}
		if height == last {
			return nil
		}
		last = height
	}

	e.logger.Debug("detail view still growing at settle deadline",
		zap.Duration("timeout", e.settleTimeout))
	return nil
}

func (e *Extractor) field(ctx context.Context, s browser.Session, loc browser.Locator, name, fallback string) string {
	el, err := s.Find(ctx, loc)
	if err != nil {
		if !errors.Is(err, browser.ErrNotFound) {
			e.logger.Warn("field lookup failed", zap.String("field", name), zap.Error(err))
		}
		return fallback
	}
	text, err := s.Text(ctx, el)
	if err != nil {
		e.logger.Warn("field read failed", zap.String("field", name), zap.Error(err))
		return fallback
	}
	if text == "" {
		return fallback
	}
	return text
}
