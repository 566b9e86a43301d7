package scraper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twscraper/pkg/errors"
	"twscraper/pkg/logger"
	"twscraper/pkg/models"
	"twscraper/pkg/twitter"
)

func newTestScraper(feed *mockFeed, gateway *mockGateway, resolver *mockResolver) (*Scraper, *logger.TestLogger) {
	log := logger.NewTestLogger()
	return New(feed, gateway, resolver, log), log
}

func TestRunFullHarvest(t *testing.T) {
	base := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	feed := &mockFeed{
		profile: fullSnapshot(),
		pages: [][]twitter.FeedEntry{
			{
				textEntry("103", base, "newest post"),
				mediaEntry("102", base.Add(-time.Hour), "photo post", twitter.MediaItem{
					ID: "m1", Type: "photo", MediaURL: "https://pbs.example.com/m1.jpg",
				}),
				textEntry("101", base.Add(-2*time.Hour), "older post"),
			},
		},
	}
	gateway := newMockGateway()
	resolver := &mockResolver{}
	s, _ := newTestScraper(feed, gateway, resolver)

	result, err := s.Run(context.Background(), Job{
		AccountCode: "acme",
		Handle:      "acmecorp",
		Mode:        ModeFull,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9876), result.TweetCount)
	assert.True(t, result.Description)
	assert.Equal(t, 2, result.Texts)
	assert.Equal(t, 1, result.Images)
	assert.Equal(t, 0, result.Videos)
	assert.Equal(t, base.Add(-2*time.Hour), result.TimeCheck)

	// Two text records plus one image record reached the gateway
	assert.Len(t, gateway.socialBySubtype(models.SubtypeText), 2)
	assert.Len(t, gateway.socialBySubtype(models.SubtypeImage), 1)

	// Second fetch used the last entry of the first page as cursor
	require.Len(t, feed.cursors, 2)
	assert.Equal(t, "", feed.cursors[0])
	assert.Equal(t, "101", feed.cursors[1])
}

func TestRunInfoModeSkipsTimeline(t *testing.T) {
	feed := &mockFeed{profile: fullSnapshot()}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	result, err := s.Run(context.Background(), Job{
		AccountCode: "acme",
		Handle:      "acmecorp",
		Mode:        ModeInfo,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9876), result.TweetCount)
	assert.Zero(t, result.Texts)
	assert.Equal(t, 0, feed.fetchCalls, "info mode must not fetch timeline pages")
	assert.Empty(t, gateway.social)
}

func TestRunProfileNotFound(t *testing.T) {
	feed := &mockFeed{
		profileErr: &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "user not found",
			Code:    404,
		},
	}
	gateway := newMockGateway()
	s, log := newTestScraper(feed, gateway, &mockResolver{})

	_, err := s.Run(context.Background(), Job{AccountCode: "ghost", Handle: "ghost", Mode: ModeFull})
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
	assert.True(t, log.HasMessage("twitter data not found"))
	assert.Empty(t, gateway.stats)
}

func TestRunSnapshotWithoutTweetCount(t *testing.T) {
	feed := &mockFeed{
		profile: &twitter.ProfileSnapshot{Description: str("suspended account")},
	}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	_, err := s.Run(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp", Mode: ModeFull})
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	// Nothing may be written when the tweet count is missing
	assert.Empty(t, gateway.metadata)
	assert.Empty(t, gateway.stats)
	assert.Equal(t, 0, feed.fetchCalls)
}

func TestRunEmptyTimelineYieldsStatsOnly(t *testing.T) {
	// Stats are valid but the first timeline page is empty: the stats stand
	// and the run succeeds with zero post counts.
	feed := &mockFeed{profile: fullSnapshot()}
	gateway := newMockGateway()
	s, log := newTestScraper(feed, gateway, &mockResolver{})

	result, err := s.Run(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp", Mode: ModeFull})
	require.NoError(t, err)

	assert.Equal(t, int64(9876), result.TweetCount)
	assert.Zero(t, result.Texts)
	assert.Zero(t, result.Images)
	assert.True(t, result.TimeCheck.IsZero())
	assert.True(t, log.HasMessage("tweet details not found"))

	posts, ok := gateway.statValue(models.StatSubtypePosts)
	require.True(t, ok)
	assert.Equal(t, int64(9876), posts)
}

func TestRunDeepPassUsesWidenedCutoff(t *testing.T) {
	base := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	feed := &mockFeed{
		profile: fullSnapshot(),
		pages: [][]twitter.FeedEntry{
			{textEntry("50", base, "recent")},
			{textEntry("40", base.Add(-24*time.Hour), "old")},
		},
	}
	gateway := newMockGateway()
	// An incremental run would stop immediately with this watermark
	gateway.cutoff = base.Add(time.Hour)
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	result, err := s.Run(context.Background(), Job{
		AccountCode: "acme",
		Handle:      "acmecorp",
		Mode:        ModeFull,
		Deep:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.deepCalls)
	assert.Equal(t, 2, result.Texts, "deep pass must dig past the incremental watermark")
}

func TestPaginateStopsAtCutoff(t *testing.T) {
	base := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	cutoff := base.Add(-3 * time.Hour)

	feed := &mockFeed{
		pages: [][]twitter.FeedEntry{
			{textEntry("30", base, "page one")},
			{textEntry("20", base.Add(-2*time.Hour), "page two")},
			// Last entry at the cutoff boundary terminates pagination; the
			// page containing it is still fully counted
			{textEntry("10", cutoff, "page three")},
			{textEntry("5", base.Add(-48*time.Hour), "never fetched")},
		},
	}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	totals, err := s.paginate(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp"}, cutoff)
	require.NoError(t, err)

	assert.Equal(t, 3, totals.Texts)
	assert.Equal(t, 3, feed.fetchCalls)
	assert.Equal(t, cutoff, totals.TimeCheck)
}

func TestPaginateSkipsBoundaryDuplicate(t *testing.T) {
	base := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	boundary := textEntry("100", base.Add(-time.Hour), "boundary post")
	feed := &mockFeed{
		pages: [][]twitter.FeedEntry{
			{textEntry("101", base, "first"), boundary},
			// The cursor is an inclusive bound, so the boundary entry leads
			// the next page
			{boundary, textEntry("99", base.Add(-2*time.Hour), "second")},
		},
	}
	gateway := newMockGateway()
	s, log := newTestScraper(feed, gateway, &mockResolver{})

	totals, err := s.paginate(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp"}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 3, totals.Texts, "duplicate must be counted once")
	assert.Len(t, gateway.social, 3)
	assert.True(t, log.HasMessage("timeline scraping looped on repeated entries"))
}

func TestPaginateHonorsPageCap(t *testing.T) {
	base := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	// Endless feed of distinct entries, all newer than the cutoff
	feed := &mockFeed{
		pageFn: func(call int, cursorID string) ([]twitter.FeedEntry, error) {
			id := fmt.Sprintf("%d", 1_000_000-call)
			return []twitter.FeedEntry{textEntry(id, base.Add(-time.Duration(call)*time.Minute), "post")}, nil
		},
	}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	totals, err := s.paginate(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp"}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, maxPages, feed.fetchCalls)
	assert.Equal(t, maxPages, totals.Texts)
}

func TestPaginateEmptyFirstPage(t *testing.T) {
	feed := &mockFeed{}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	_, err := s.paginate(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp"}, time.Time{})
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
	assert.Empty(t, gateway.social, "nothing may be classified for an empty timeline")
}

func TestPaginateMalformedTimestamp(t *testing.T) {
	entry := textEntry("77", time.Now(), "post")
	entry.CreatedAt = "not a timestamp"

	feed := &mockFeed{pages: [][]twitter.FeedEntry{{entry}}}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	_, err := s.paginate(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp"}, time.Time{})

	var malformed *errors.MalformedEntryError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "77", malformed.EntryID)
	assert.Equal(t, "created_at", malformed.Field)
}

func TestPaginateThrottlesBetweenPages(t *testing.T) {
	base := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	feed := &mockFeed{
		pages: [][]twitter.FeedEntry{
			{textEntry("2", base, "a")},
			{textEntry("1", base.Add(-time.Hour), "b")},
		},
	}
	gateway := newMockGateway()
	s, _ := newTestScraper(feed, gateway, &mockResolver{})

	_, err := s.paginate(context.Background(), Job{AccountCode: "acme", Handle: "acmecorp"}, time.Time{})
	require.NoError(t, err)

	// One throttle per non-empty page
	assert.Equal(t, 2, feed.throttleCalls)
}
