package models

import "time"

// Platform and record subtype tags persisted with every harvested record.
// The short codes match the keys used by the statistics store, so a cutoff
// lookup for ("tw", "T") finds the text records written under the same tags.
const (
	PlatformTwitter = "tw"

	SubtypeText  = "T"
	SubtypeImage = "I"
	SubtypeVideo = "V"
)

// Metadata kinds written by the stats extractor.
const (
	MetaTwitterInfo = "twitter_info"
)

// Statistic types and subtypes written by the stats extractor.
const (
	StatTypeTwitter = "twitter"

	StatSubtypeLikes     = "likes"
	StatSubtypeFollowers = "followers"
	StatSubtypeFollowing = "following"
	StatSubtypePosts     = "posts"
)

// SocialRecord is the normalized unit persisted for each text post or each
// media attachment. A tweet with N attachments produces N records (subtype
// image or video) and no text record; a tweet without attachments produces
// exactly one text record.
type SocialRecord struct {
	AccountCode string
	Platform    string
	Subtype     string

	// SourceID is the provider's identifier for the originating post.
	SourceID string

	// ExternalID is the unique identity of this record: the media ID for
	// image/video records, the post ID for text records. The store upserts
	// on it, which is what makes re-scraping the same window idempotent.
	ExternalID string

	PostedAt time.Time
	Text     *string

	// Image holds the resolved media reference (a stored file path) for
	// image and video records, nil for text records.
	Image *string

	Likes int64

	// Payload is the free-form bag persisted alongside the typed columns:
	// id, posted, text, url, likes, retweets, plus image and img_source
	// for media records.
	Payload map[string]any
}
