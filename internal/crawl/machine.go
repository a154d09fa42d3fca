package crawl

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobtrawler/internal/archive"
	"jobtrawler/internal/browser"
	"jobtrawler/internal/hash/sha256"
	"jobtrawler/internal/listing"
	"jobtrawler/internal/metrics"
)

// ErrNoSearchControls indicates the search form could not be located at run
// start. No results are possible, so the run fails before yielding anything.
var ErrNoSearchControls = errors.New("crawl: search controls not found")

// state enumerates the crawl machine's positions. Transitions are driven
// exclusively by the step loop in Run so that pagination and termination
// conditions stay independently testable.
type state int

const (
	stateSearching state = iota
	stateScanning
	stateOpening
	stateReturning
	stateAdvancing
	stateTerminated
)

// Config holds per-session crawl knobs.
type Config struct {
	// StartURL is the site root carrying the search form.
	StartURL string

	// PaginationWait bounds how long the machine waits for the next-page
	// control to become interactable before treating the results as
	// exhausted.
	PaginationWait time.Duration

	// PolitenessQPS caps click-through navigations per second. Zero disables
	// pacing.
	PolitenessQPS float64

	// ArchivePrefix prefixes snapshot keys when an archive store is attached.
	ArchivePrefix string

	// ArchiveContentType is stamped on archived snapshots.
	ArchiveContentType string
}

// Machine drives one crawl session: submit search, walk listing cards in
// rendered order, extract each detail view, persist novel records, and
// advance through result pages until pagination is exhausted.
//
// The short-circuit on the first duplicate of a page relies on the site
// listing newest postings first; it is documented site behavior, not a
// proven invariant, and a reordered page could hide novel items behind an
// incidental duplicate.
type Machine struct {
	session      browser.Session
	store        listing.Store
	oracle       *Oracle
	extractor    *Extractor
	obstructions *Obstructions
	snapshots    archive.Store
	hasher       *sha256.Hasher
	limiter      *rate.Limiter
	selectors    Selectors
	cfg          Config
	logger       *zap.Logger
}

// New assembles a Machine. snapshots may be nil to disable detail-view
// archival. The browser session is owned by the caller; the machine never
// tears it down.
func New(
	session browser.Session,
	store listing.Store,
	extractor *Extractor,
	obstructions *Obstructions,
	snapshots archive.Store,
	selectors Selectors,
	cfg Config,
	logger *zap.Logger,
) *Machine {
	if cfg.PaginationWait <= 0 {
		cfg.PaginationWait = 10 * time.Second
	}
	if cfg.ArchiveContentType == "" {
		cfg.ArchiveContentType = "text/html; charset=utf-8"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.PolitenessQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.PolitenessQPS), 1)
	}
	return &Machine{
		session:      session,
		store:        store,
		oracle:       NewOracle(store),
		extractor:    extractor,
		obstructions: obstructions,
		snapshots:    snapshots,
		hasher:       sha256.New(),
		limiter:      limiter,
		selectors:    selectors,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run executes the session and returns a lazy, finite sequence of newly
// persisted records in processing order. Breaking out of the range is a clean
// stop: no further navigation happens and nothing partial is persisted. A
// fatal failure (unreachable search controls, dead session) is yielded once
// as a non-nil error and ends the sequence; per-card failures are logged and
// skipped, never surfaced.
func (m *Machine) Run(ctx context.Context, search listing.Search) iter.Seq2[listing.Record, error] {
	return func(yield func(listing.Record, error) bool) {
		cur := &cursor{}

		for st := stateSearching; st != stateTerminated; {
			if ctx.Err() != nil {
				m.logger.Info("run canceled", zap.Int("page", cur.page))
				return
			}

			var (
				next state
				stop bool
			)
			switch st {
			case stateSearching:
				next, stop = m.stepSearch(ctx, search, yield)
			case stateScanning:
				next = m.stepScan(ctx, cur)
			case stateOpening:
				next, stop = m.stepCard(ctx, cur, yield)
			case stateReturning:
				next = m.stepReturn(ctx, cur)
			case stateAdvancing:
				next = m.stepAdvance(ctx, cur)
			default:
				m.logger.Error("unknown state, terminating", zap.Int("state", int(st)))
				next = stateTerminated
			}
			if stop {
				return
			}
			st = next
		}

		m.logger.Info("run finished",
			zap.Int("pages", cur.page+1),
			zap.Int("persisted", cur.persisted))
	}
}

// cursor tracks the machine's position within the result set.
type cursor struct {
	page          int
	card          int
	duplicateSeen bool
	persisted     int
}

// stepSearch navigates to the site root, clears obstructions, and submits
// the search form. Missing search controls are fatal for the run.
func (m *Machine) stepSearch(ctx context.Context, search listing.Search, yield func(listing.Record, error) bool) (state, bool) {
	if err := m.submitSearch(ctx, search); err != nil {
		m.logger.Error("search submission failed", zap.Error(err))
		yield(listing.Record{}, err)
		return stateTerminated, true
	}
	return stateScanning, false
}

func (m *Machine) submitSearch(ctx context.Context, search listing.Search) error {
	if err := m.session.Navigate(ctx, m.cfg.StartURL); err != nil {
		return fmt.Errorf("open %s: %w", m.cfg.StartURL, err)
	}
	if err := m.obstructions.Clear(ctx, m.session); err != nil {
		return fmt.Errorf("clear obstructions on landing: %w", err)
	}

	terms, err := m.session.Find(ctx, m.selectors.SearchTerms)
	if err != nil {
		return fmt.Errorf("%w: terms field: %v", ErrNoSearchControls, err)
	}
	location, err := m.session.Find(ctx, m.selectors.SearchLocation)
	if err != nil {
		return fmt.Errorf("%w: location field: %v", ErrNoSearchControls, err)
	}

	if err := m.session.Type(ctx, terms, search.Terms); err != nil {
		return fmt.Errorf("fill terms: %w", err)
	}
	if err := m.session.Type(ctx, location, search.Location); err != nil {
		return fmt.Errorf("fill location: %w", err)
	}
	if err := m.session.Submit(ctx, location); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}

	// Zero results is legitimate; only log when nothing shows up.
	if err := m.session.WaitVisible(ctx, m.selectors.ListingCard, m.cfg.PaginationWait); err != nil {
		m.logger.Info("no listing cards after search", zap.Error(err))
	}

	m.logger.Info("search submitted",
		zap.String("terms", search.Terms),
		zap.String("location", search.Location))
	return nil
}

// stepScan decides what to do with the current results page: open the next
// unprocessed card, or move to pagination once the page is exhausted or a
// duplicate ended it early.
func (m *Machine) stepScan(ctx context.Context, cur *cursor) state {
	if cur.duplicateSeen {
		return stateAdvancing
	}

	cards, err := m.session.FindAll(ctx, m.selectors.ListingCard)
	if err != nil {
		m.logger.Warn("enumerate cards failed", zap.Int("page", cur.page), zap.Error(err))
		return stateAdvancing
	}

	if cur.card >= len(cards) {
		return stateAdvancing
	}
	return stateOpening
}

// stepCard processes one card end to end: click through, clear obstructions,
// extract, consult the oracle, persist when novel. Every failure here is
// recoverable at the card level.
func (m *Machine) stepCard(ctx context.Context, cur *cursor, yield func(listing.Record, error) bool) (state, bool) {
	log := m.logger.With(zap.Int("page", cur.page), zap.Int("card", cur.card))

	// Card handles go stale on every navigation, so re-locate by index.
	cards, err := m.session.FindAll(ctx, m.selectors.ListingCard)
	if err != nil || cur.card >= len(cards) {
		log.Warn("card vanished before open", zap.Error(err))
		metrics.ObserveCardFailure("open")
		cur.card++
		return stateScanning, false
	}

	if err := m.pace(ctx); err != nil {
		return stateTerminated, false
	}
	if err := m.session.Click(ctx, cards[cur.card]); err != nil {
		log.Warn("card click failed", zap.Error(err))
		metrics.ObserveCardFailure("open")
		cur.card++
		return stateScanning, false
	}
	if err := m.obstructions.Clear(ctx, m.session); err != nil {
		log.Warn("obstruction clearing failed on detail view", zap.Error(err))
		metrics.ObserveCardFailure("open")
		return stateReturning, false
	}

	metrics.ObserveCardScanned()
	rec, err := m.extractor.Extract(ctx, m.session)
	if err != nil {
		log.Warn("extraction failed", zap.Error(err))
		metrics.ObserveCardFailure("extract")
		return stateReturning, false
	}

	exists, err := m.oracle.Exists(ctx, rec.Title)
	if err != nil {
		log.Warn("duplicate check failed", zap.String("title", rec.Title), zap.Error(err))
		metrics.ObserveCardFailure("persist")
		return stateReturning, false
	}
	if exists {
		log.Info("duplicate observed, ending page scan", zap.String("title", rec.Title))
		metrics.ObserveDuplicate()
		cur.duplicateSeen = true
		return stateReturning, false
	}

	if _, err := m.store.Insert(ctx, rec); err != nil {
		log.Warn("insert failed", zap.String("title", rec.Title), zap.Error(err))
		metrics.ObserveCardFailure("persist")
		return stateReturning, false
	}
	m.oracle.Remember(rec.Title)
	cur.persisted++
	metrics.ObserveRecordPersisted()
	m.archiveSnapshot(ctx, rec.Title, log)
	log.Info("listing persisted", zap.String("title", rec.Title))

	if !yield(rec, nil) {
		// Consumer stopped early; abandon the rest of the crawl cleanly.
		log.Info("consumer stopped run")
		return stateTerminated, true
	}
	return stateReturning, false
}

// stepReturn navigates back to the results page after a detail view.
func (m *Machine) stepReturn(ctx context.Context, cur *cursor) state {
	if err := m.pace(ctx); err != nil {
		return stateTerminated
	}
	if err := m.session.Back(ctx); err != nil {
		m.logger.Warn("return to results failed",
			zap.Int("page", cur.page), zap.Int("card", cur.card), zap.Error(err))
		metrics.ObserveCardFailure("return")
	}
	if err := m.obstructions.Clear(ctx, m.session); err != nil {
		m.logger.Warn("obstruction clearing failed on results", zap.Error(err))
	}
	cur.card++
	return stateScanning
}

// stepAdvance activates the next-page control. Its absence, or failure to
// become interactable within the bounded wait, is the normal end of the
// result set rather than an error. A page scanned without any duplicate
// still advances; only pagination exhaustion terminates the run.
func (m *Machine) stepAdvance(ctx context.Context, cur *cursor) state {
	if err := m.session.WaitVisible(ctx, m.selectors.NextPage, m.cfg.PaginationWait); err != nil {
		if errors.Is(err, browser.ErrTimeout) || errors.Is(err, browser.ErrNotFound) {
			m.logger.Info("no next page, results exhausted", zap.Int("page", cur.page))
		} else {
			m.logger.Warn("next-page wait failed", zap.Int("page", cur.page), zap.Error(err))
		}
		return stateTerminated
	}

	next, err := m.session.Find(ctx, m.selectors.NextPage)
	if err != nil {
		m.logger.Info("next page control vanished, results exhausted", zap.Int("page", cur.page))
		return stateTerminated
	}
	if err := m.pace(ctx); err != nil {
		return stateTerminated
	}
	if err := m.session.Click(ctx, next); err != nil {
		m.logger.Warn("next-page click failed, treating results as exhausted",
			zap.Int("page", cur.page), zap.Error(err))
		return stateTerminated
	}
	if err := m.obstructions.Clear(ctx, m.session); err != nil {
		m.logger.Warn("obstruction clearing failed on new page", zap.Error(err))
	}

	cur.page++
	cur.card = 0
	cur.duplicateSeen = false
	metrics.ObservePageAdvanced()
	m.logger.Info("advanced to next page", zap.Int("page", cur.page))
	return stateScanning
}

func (m *Machine) pace(ctx context.Context) error {
	if m.limiter == nil {
		return nil
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	return nil
}

// archiveSnapshot stores the rendered detail view for later review. Failures
// are logged and never fail the card.
func (m *Machine) archiveSnapshot(ctx context.Context, title string, log *zap.Logger) {
	if m.snapshots == nil {
		return
	}
	html, err := m.session.HTML(ctx)
	if err != nil {
		log.Warn("snapshot capture failed", zap.Error(err))
		return
	}
	key := m.hasher.Hash([]byte(title)) + ".html"
	if m.cfg.ArchivePrefix != "" {
		key = m.cfg.ArchivePrefix + "/" + key
	}
	uri, err := m.snapshots.Put(ctx, key, m.cfg.ArchiveContentType, []byte(html))
	if err != nil {
		log.Warn("snapshot archive failed", zap.Error(err))
		return
	}
	log.Debug("snapshot archived", zap.String("uri", uri))
}
