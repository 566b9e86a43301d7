package scraper

import (
	"context"
	"time"

	"twscraper/pkg/errors"
	"twscraper/pkg/twitter"
)

// maxPages bounds worst-case work regardless of cutoff staleness or provider
// anomalies. A safety valve, not a tunable.
const maxPages = 100

// Totals is the aggregate outcome of one paginator run. TimeCheck is the
// instant of the oldest entry processed, i.e. where the next incremental run
// will pick up from.
type Totals struct {
	Texts     int
	Images    int
	Videos    int
	TimeCheck time.Time
}

// paginate drives the fetch-classify-dedup loop across timeline pages until
// it digs past the cutoff, exhausts the feed, or hits the page cap. The
// cutoff comparison uses the last entry processed in each page, not every
// entry: a page straddling the cutoff is still fully processed and counted.
func (s *Scraper) paginate(ctx context.Context, job Job, cutoff time.Time) (Totals, error) {
	dedup := newSessionSet()

	var totals Totals
	var lastProcessed time.Time
	loopCount := 0
	cursor := ""

	for page := 0; page < maxPages; page++ {
		entries, err := s.client.FetchPage(ctx, job.Handle, cursor)
		if err != nil {
			return totals, err
		}

		if len(entries) == 0 {
			if page == 0 {
				// No tweets ever available for this account
				return totals, errors.ErrAccountNotFound
			}
			break
		}

		s.logger.DebugWithFields("processing timeline page", map[string]interface{}{
			"account": job.AccountCode,
			"page":    page,
			"entries": len(entries),
		})

		for i := range entries {
			entry := &entries[i]

			if dedup.Seen(entry.ID) {
				// Boundary entry repeated by the provider's cursor semantics
				loopCount++
				continue
			}
			dedup.Mark(entry.ID)

			postedAt, err := twitter.ParseCreatedAt(entry.CreatedAt)
			if err != nil {
				return totals, &errors.MalformedEntryError{EntryID: entry.ID, Field: "created_at"}
			}

			cls, err := s.classifier.Classify(ctx, job, entry, postedAt)
			if err != nil {
				return totals, err
			}

			totals.Texts += cls.Texts
			totals.Images += cls.Images
			totals.Videos += cls.Videos
			lastProcessed = postedAt
		}

		// The last entry of this page seeds the next fetch
		cursor = entries[len(entries)-1].ID

		s.client.Throttle()

		if !lastProcessed.After(cutoff) {
			break
		}
	}

	if loopCount > 0 {
		s.logger.WarnWithFields("timeline scraping looped on repeated entries", map[string]interface{}{
			"account":    job.AccountCode,
			"loop_count": loopCount,
		})
	}

	totals.TimeCheck = lastProcessed
	return totals, nil
}
