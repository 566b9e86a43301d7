package scraper

import (
	"context"
	"fmt"
	"time"

	"twscraper/pkg/models"
	"twscraper/pkg/twitter"
)

// mockFeed implements FeedClient with canned pages. Pages are served in
// order; fetches past the last page return an empty slice, mimicking an
// exhausted timeline.
type mockFeed struct {
	profile    *twitter.ProfileSnapshot
	profileErr error

	pages   [][]twitter.FeedEntry
	pageErr error

	// pageFn overrides pages when set; call is zero-based
	pageFn func(call int, cursorID string) ([]twitter.FeedEntry, error)

	fetchCalls    int
	throttleCalls int
	cursors       []string
}

func (m *mockFeed) FetchProfile(ctx context.Context, handle string) (*twitter.ProfileSnapshot, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func (m *mockFeed) FetchPage(ctx context.Context, handle, cursorID string) ([]twitter.FeedEntry, error) {
	call := m.fetchCalls
	m.fetchCalls++
	m.cursors = append(m.cursors, cursorID)

	if m.pageErr != nil {
		return nil, m.pageErr
	}
	if m.pageFn != nil {
		return m.pageFn(call, cursorID)
	}
	if call >= len(m.pages) {
		return nil, nil
	}
	return m.pages[call], nil
}

func (m *mockFeed) Throttle() {
	m.throttleCalls++
}

type statSample struct {
	accountCode string
	statType    string
	subtype     string
	value       int64
}

// mockGateway implements Gateway in memory and records every write.
type mockGateway struct {
	metadata map[string]string
	stats    []statSample
	social   []*models.SocialRecord

	cutoff    time.Time
	deepCalls int

	metadataErr  error
	statisticErr error
	socialErr    error
	cutoffErr    error
}

func newMockGateway() *mockGateway {
	return &mockGateway{metadata: make(map[string]string)}
}

func (m *mockGateway) AddMetadata(accountCode, kind, value string) error {
	if m.metadataErr != nil {
		return m.metadataErr
	}
	m.metadata[kind] = value
	return nil
}

func (m *mockGateway) AddStatistic(accountCode, statType, subtype string, value int64) error {
	if m.statisticErr != nil {
		return m.statisticErr
	}
	m.stats = append(m.stats, statSample{accountCode, statType, subtype, value})
	return nil
}

func (m *mockGateway) AddSocial(rec *models.SocialRecord) error {
	if m.socialErr != nil {
		return m.socialErr
	}
	m.social = append(m.social, rec)
	return nil
}

func (m *mockGateway) Cutoff(accountCode, platform, kind string, deep bool) (time.Time, error) {
	if deep {
		m.deepCalls++
	}
	if m.cutoffErr != nil {
		return time.Time{}, m.cutoffErr
	}
	if deep {
		return time.Time{}, nil
	}
	return m.cutoff, nil
}

func (m *mockGateway) statValue(subtype string) (int64, bool) {
	for _, s := range m.stats {
		if s.subtype == subtype {
			return s.value, true
		}
	}
	return 0, false
}

func (m *mockGateway) socialBySubtype(subtype string) []*models.SocialRecord {
	var out []*models.SocialRecord
	for _, rec := range m.social {
		if rec.Subtype == subtype {
			out = append(out, rec)
		}
	}
	return out
}

// mockResolver implements MediaResolver, returning a deterministic reference
// without any I/O.
type mockResolver struct {
	calls []string
	err   error
}

func (m *mockResolver) Resolve(ctx context.Context, platform, accountCode, sourceURL, mediaID string) (string, error) {
	m.calls = append(m.calls, sourceURL)
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("%s/%s/%s.jpg", platform, accountCode, mediaID), nil
}

// Test fixture helpers

func i64(v int64) *int64 { return &v }

func str(s string) *string { return &s }

func textEntry(id string, postedAt time.Time, text string) twitter.FeedEntry {
	return twitter.FeedEntry{
		ID:            id,
		CreatedAt:     postedAt.Format(twitter.CreatedAtLayout),
		FullText:      str(text),
		FavoriteCount: i64(5),
		RetweetCount:  i64(2),
	}
}

func mediaEntry(id string, postedAt time.Time, text string, items ...twitter.MediaItem) twitter.FeedEntry {
	e := textEntry(id, postedAt, text)
	e.Entities = &twitter.Entities{Media: items}
	return e
}

func fullSnapshot() *twitter.ProfileSnapshot {
	return &twitter.ProfileSnapshot{
		Description:     str("Tracked account"),
		FavouritesCount: i64(120),
		FollowersCount:  i64(4500),
		FriendsCount:    i64(310),
		StatusesCount:   i64(9876),
	}
}
