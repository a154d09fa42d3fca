// Package listing defines the core types shared across the crawl engine,
// the record stores, and the review surface.
package listing

import "time"

// FallbackMissing is the value a text field takes when its element cannot be
// located on the detail view. Salary is the deliberate exception: the source
// legitimately omits it, so an absent salary stays empty rather than becoming
// the sentinel.
const FallbackMissing = "N/A"

// Record is one scraped job posting. Title is the identity key for duplicate
// detection: exact, case-sensitive match. All fields are plain strings and
// never null; see FallbackMissing for the absence convention.
type Record struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Benefits    string `json:"benefits"`
	Description string `json:"description"`
}

// Stored is a Record as returned by a Store, with its storage identity and
// review state. Reviewed is mutated only through Store.SetReviewed; the crawl
// engine never touches it.
type Stored struct {
	ID       string    `json:"id"`
	Record   Record    `json:"record"`
	Reviewed bool      `json:"reviewed"`
	AddedAt  time.Time `json:"added_at"`
}

// Search holds the criteria submitted to the site's search form at the start
// of a crawl session.
type Search struct {
	Terms    string `json:"terms"`
	Location string `json:"location"`
}
