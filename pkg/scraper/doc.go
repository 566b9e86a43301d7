// Package scraper implements the incremental timeline harvesting core: a
// sequential pagination loop that fetches timeline pages, classifies each
// entry as text, image or video, deduplicates repeated boundary entries
// within the session, and stops once it digs past the stored watermark or
// hits the hard page cap.
//
// The package owns the control loop and classification only. Provider I/O,
// persistence and media storage are collaborator interfaces injected at
// construction, which keeps one Scraper instance safe to use across many
// accounts concurrently.
package scraper
