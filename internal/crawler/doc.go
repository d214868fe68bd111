// Package crawler implements the club directory crawl: listing and detail
// page extraction, per-club enrichment with failure isolation, and the engine
// that walks every letter partition through a single browsing session.
package crawler
