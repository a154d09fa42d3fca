// Package crawl implements the session state machine that walks a paginated
// job-listing result set through a live browser session, extracts each detail
// view, and persists records that have not been seen before.
//
// The machine is strictly sequential: one browser tab, one results page, one
// detail view at a time. Cards are processed in rendered order and pages in
// site order, and the yield order of persisted records equals processing
// order.
package crawl
