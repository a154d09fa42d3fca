package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobtrawler/internal/browser"
	"jobtrawler/internal/metrics"
	"jobtrawler/internal/operator"
)

// Obstructions clears transient UI elements that block interaction: the
// consent banner and the anti-automation challenge. Clearing is idempotent
// and called at every navigation boundary; absence of either obstruction is
// the normal case, not an error.
type Obstructions struct {
	selectors Selectors
	wait      time.Duration
	confirmer operator.Confirmer
	logger    *zap.Logger
}

// NewObstructions builds the handler. wait bounds how long detection looks
// for an obstruction that may not be there.
func NewObstructions(selectors Selectors, wait time.Duration, confirmer operator.Confirmer, logger *zap.Logger) *Obstructions {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if confirmer == nil {
		confirmer = operator.AutoConfirm{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Obstructions{
		selectors: selectors,
		wait:      wait,
		confirmer: confirmer,
		logger:    logger,
	}
}

// Clear checks for a challenge first, then the consent banner. A detected
// challenge suspends the run on the operator confirmer; this is the only
// unbounded wait in the system, and it still honors ctx cancellation.
func (o *Obstructions) Clear(ctx context.Context, s browser.Session) error {
	if err := o.clearChallenge(ctx, s); err != nil {
		return err
	}
	return o.clearConsent(ctx, s)
}

func (o *Obstructions) clearChallenge(ctx context.Context, s browser.Session) error {
	err := s.WaitVisible(ctx, o.selectors.Challenge, o.wait)
	if err != nil {
		if errors.Is(err, browser.ErrTimeout) || errors.Is(err, browser.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("detect challenge: %w", err)
	}

	o.logger.Warn("anti-automation challenge detected, waiting for operator")
	metrics.ObserveChallengePause()
	if err := o.confirmer.AwaitConfirmation(ctx, "A challenge is blocking the crawl. Solve it in the browser window."); err != nil {
		return fmt.Errorf("challenge pause: %w", err)
	}
	metrics.ObserveObstructionCleared("challenge")
	o.logger.Info("operator confirmed, resuming crawl")
	return nil
}

func (o *Obstructions) clearConsent(ctx context.Context, s browser.Session) error {
	if err := s.WaitVisible(ctx, o.selectors.ConsentAccept, o.wait); err != nil {
		if errors.Is(err, browser.ErrTimeout) || errors.Is(err, browser.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("detect consent banner: %w", err)
	}

	el, err := s.Find(ctx, o.selectors.ConsentAccept)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			// Banner disappeared between detection and lookup.
			return nil
		}
		return fmt.Errorf("locate consent banner: %w", err)
	}
	if err := s.Click(ctx, el); err != nil {
		return fmt.Errorf("dismiss consent banner: %w", err)
	}
	metrics.ObserveObstructionCleared("consent")
	o.logger.Debug("consent banner dismissed")
	return nil
}
