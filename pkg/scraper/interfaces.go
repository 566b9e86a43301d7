package scraper

import (
	"context"
	"time"

	"twscraper/pkg/models"
	"twscraper/pkg/twitter"
)

// FeedClient drives the provider API. Implementations own auth, timeouts and
// transient-failure retry; the core never retries.
type FeedClient interface {
	// FetchProfile returns a single point-in-time profile snapshot
	FetchProfile(ctx context.Context, handle string) (*twitter.ProfileSnapshot, error)

	// FetchPage returns one timeline page. cursorID is the last entry ID of
	// the previous page, empty for the first. An empty slice means exhausted.
	FetchPage(ctx context.Context, handle, cursorID string) ([]twitter.FeedEntry, error)

	// Throttle blocks as needed to respect provider rate limits
	Throttle()
}

// Gateway persists harvested statistics, metadata and social records.
// Idempotency across sessions is the gateway's responsibility, not the core's.
type Gateway interface {
	AddMetadata(accountCode, kind, value string) error
	AddStatistic(accountCode, statType, subtype string, value int64) error
	AddSocial(rec *models.SocialRecord) error

	// Cutoff supplies the watermark below which pagination stops. A deep
	// pass uses an older, wider cutoff than an incremental one.
	Cutoff(accountCode, platform, kind string, deep bool) (time.Time, error)
}

// MediaResolver fetches and stores a media rendition, returning a stable
// reference to the stored copy. Failures propagate as classification failures.
type MediaResolver interface {
	Resolve(ctx context.Context, platform, accountCode, sourceURL, mediaID string) (string, error)
}
