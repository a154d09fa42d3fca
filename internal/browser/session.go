// Package browser abstracts the live browser session the crawl engine drives.
// The engine depends only on Session; the chromedp implementation lives in
// this package, test fakes live with their consumers.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a locator matched no element on the current page.
var ErrNotFound = errors.New("browser: element not found")

// ErrTimeout indicates a bounded wait elapsed before its condition held.
var ErrTimeout = errors.New("browser: wait timed out")

// By selects the locator language.
type By int

// Locator languages understood by Session implementations.
const (
	ByCSS By = iota
	ByXPath
)

// Locator identifies elements on the current page.
type Locator struct {
	Query string
	By    By
}

// CSS builds a CSS-selector locator.
func CSS(query string) Locator { return Locator{Query: query, By: ByCSS} }

// XPath builds an XPath locator.
func XPath(query string) Locator { return Locator{Query: query, By: ByXPath} }

// Element is an opaque handle to a located element. Handles are valid only
// until the next navigation; callers must re-locate after Navigate or Back.
type Element any

// Session is the navigation contract consumed by the crawl engine. There is a
// single current page per session; every method acts on it. All blocking
// operations honor ctx cancellation, and waits are bounded by the session's
// configured timeouts rather than open-ended.
type Session interface {
	// Navigate loads the URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error

	// Find returns a handle to the first element matching the locator, or
	// ErrNotFound.
	Find(ctx context.Context, loc Locator) (Element, error)

	// FindAll returns handles to every matching element in document order.
	// No match is not an error; the slice is empty.
	FindAll(ctx context.Context, loc Locator) ([]Element, error)

	// Click dispatches a mouse click on the element.
	Click(ctx context.Context, el Element) error

	// Type clears the element and types the text into it.
	Type(ctx context.Context, el Element, text string) error

	// Submit submits the form the element belongs to.
	Submit(ctx context.Context, el Element) error

	// Text returns the element's visible text, trimmed.
	Text(ctx context.Context, el Element) (string, error)

	// Back navigates to the previous page in session history.
	Back(ctx context.Context) error

	// WaitVisible blocks until the locator matches a visible element or the
	// bounded timeout elapses, in which case it returns ErrTimeout.
	WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error

	// ContentHeight reports the current scroll height of the document body,
	// used to detect lazy-loaded content that is still growing.
	ContentHeight(ctx context.Context) (float64, error)

	// ScrollToBottom scrolls the viewport to the bottom of the document.
	ScrollToBottom(ctx context.Context) error

	// HTML returns the serialized DOM of the current page.
	HTML(ctx context.Context) (string, error)
}
