package crawl

import (
	"context"
	"time"

	"jobtrawler/internal/browser"
	"jobtrawler/internal/listing"
)

// fakeCard is one listing on a scripted results page. Empty field values mean
// the detail view has no such element. clickErr makes opening the card fail.
type fakeCard struct {
	title       string
	location    string
	salary      string
	benefits    string
	description string
	clickErr    error
}

// Record renders the card the way extraction would see it on a fully loaded
// detail view.
func (c fakeCard) Record() listing.Record {
	return listing.Record{
		Title:       c.title,
		Location:    c.location,
		Salary:      c.salary,
		Benefits:    c.benefits,
		Description: c.description,
	}
}

type fakeElement struct {
	kind  string
	idx   int
	value string
}

// fakeSite is a scripted job board implementing browser.Session. It models a
// landing page with search controls, paginated results, and per-card detail
// views, with optional consent banner and challenge obstructions.
type fakeSite struct {
	selectors Selectors
	pages     [][]fakeCard

	missingSearchControls bool
	consentPending        bool
	challengeOnDetail     bool

	view            string // "home", "results", "detail"
	pageIdx         int
	detailIdx       int
	challengeServed bool

	// heights is consumed one value per ContentHeight call; once drained the
	// height is stable at 1200.
	heights []float64

	typed         map[string]string
	opened        []string
	consentClicks int
	backs         int
	submits       int
	scrolls       int
}

func newFakeSite(pages [][]fakeCard) *fakeSite {
	return &fakeSite{
		selectors: DefaultSelectors(),
		pages:     pages,
		typed:     map[string]string{},
	}
}

func (f *fakeSite) currentCards() []fakeCard {
	if f.pageIdx >= len(f.pages) {
		return nil
	}
	return f.pages[f.pageIdx]
}

func (f *fakeSite) Navigate(_ context.Context, _ string) error {
	f.view = "home"
	f.pageIdx = 0
	return nil
}

func (f *fakeSite) Find(_ context.Context, loc browser.Locator) (browser.Element, error) {
	switch loc.Query {
	case f.selectors.SearchTerms.Query:
		if f.view == "home" && !f.missingSearchControls {
			return &fakeElement{kind: "terms"}, nil
		}
	case f.selectors.SearchLocation.Query:
		if f.view == "home" && !f.missingSearchControls {
			return &fakeElement{kind: "location"}, nil
		}
	case f.selectors.NextPage.Query:
		if f.view == "results" && f.pageIdx < len(f.pages)-1 {
			return &fakeElement{kind: "next"}, nil
		}
	case f.selectors.ConsentAccept.Query:
		if f.consentPending {
			return &fakeElement{kind: "consent"}, nil
		}
	default:
		if f.view == "detail" {
			if value, ok := f.detailField(loc); ok {
				return &fakeElement{kind: "field", value: value}, nil
			}
		}
	}
	return nil, browser.ErrNotFound
}

func (f *fakeSite) detailField(loc browser.Locator) (string, bool) {
	card := f.currentCards()[f.detailIdx]
	var value string
	switch loc.Query {
	case f.selectors.Title.Query:
		value = card.title
	case f.selectors.Location.Query:
		value = card.location
	case f.selectors.Salary.Query:
		value = card.salary
	case f.selectors.Benefits.Query:
		value = card.benefits
	case f.selectors.Description.Query:
		value = card.description
	default:
		return "", false
	}
	if value == "" {
		return "", false
	}
	return value, true
}

func (f *fakeSite) FindAll(_ context.Context, loc browser.Locator) ([]browser.Element, error) {
	if loc.Query != f.selectors.ListingCard.Query || f.view != "results" {
		return nil, nil
	}
	els := make([]browser.Element, len(f.currentCards()))
	for i := range f.currentCards() {
		els[i] = &fakeElement{kind: "card", idx: i}
	}
	return els, nil
}

func (f *fakeSite) Click(_ context.Context, el browser.Element) error {
	fe := el.(*fakeElement)
	switch fe.kind {
	case "card":
		card := f.currentCards()[fe.idx]
		if card.clickErr != nil {
			return card.clickErr
		}
		f.view = "detail"
		f.detailIdx = fe.idx
		f.opened = append(f.opened, card.title)
	case "next":
		f.pageIdx++
		f.view = "results"
	case "consent":
		f.consentPending = false
		f.consentClicks++
	}
	return nil
}

func (f *fakeSite) Type(_ context.Context, el browser.Element, text string) error {
	f.typed[el.(*fakeElement).kind] = text
	return nil
}

func (f *fakeSite) Submit(_ context.Context, _ browser.Element) error {
	f.view = "results"
	f.pageIdx = 0
	f.submits++
	return nil
}

func (f *fakeSite) Text(_ context.Context, el browser.Element) (string, error) {
	return el.(*fakeElement).value, nil
}

func (f *fakeSite) Back(_ context.Context) error {
	f.view = "results"
	f.backs++
	return nil
}

func (f *fakeSite) WaitVisible(_ context.Context, loc browser.Locator, _ time.Duration) error {
	switch loc.Query {
	case f.selectors.Challenge.Query:
		if f.challengeOnDetail && f.view == "detail" && !f.challengeServed {
			f.challengeServed = true
			return nil
		}
	case f.selectors.ConsentAccept.Query:
		if f.consentPending {
			return nil
		}
	case f.selectors.ListingCard.Query:
		if f.view == "results" && len(f.currentCards()) > 0 {
			return nil
		}
	case f.selectors.NextPage.Query:
		if f.view == "results" && f.pageIdx < len(f.pages)-1 {
			return nil
		}
	}
	return browser.ErrTimeout
}

func (f *fakeSite) ContentHeight(_ context.Context) (float64, error) {
	if len(f.heights) > 0 {
		h := f.heights[0]
		f.heights = f.heights[1:]
		return h, nil
	}
	return 1200, nil
}

func (f *fakeSite) ScrollToBottom(_ context.Context) error {
	f.scrolls++
	return nil
}

func (f *fakeSite) HTML(_ context.Context) (string, error) {
	return "<html><body>detail</body></html>", nil
}
