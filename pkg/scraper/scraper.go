package scraper

import (
	"context"
	goerrors "errors"

	"twscraper/pkg/errors"
	"twscraper/pkg/logger"
	"twscraper/pkg/models"
)

// Mode selects how much of an account gets harvested.
type Mode string

const (
	// ModeInfo harvests profile stats only; pagination never runs
	ModeInfo Mode = "info"
	// ModeFull harvests stats and the timeline up to the watermark
	ModeFull Mode = "full"
)

// Job is the per-invocation context threaded through every operation. The
// Scraper itself holds no per-account state, so one instance may serve many
// accounts concurrently.
type Job struct {
	AccountCode string
	Handle      string
	Mode        Mode

	// Deep widens the cutoff for a full historical pass (still bounded by
	// the page cap) instead of the incremental watermark.
	Deep bool
}

// Result is the aggregate outcome of one scrape invocation.
type Result struct {
	Stats
	Totals
}

// Scraper is the top-level orchestrator: profile snapshot, stats extraction,
// then timeline pagination. Collaborators are injected at construction.
type Scraper struct {
	client     FeedClient
	gateway    Gateway
	classifier *classifier
	logger     logger.Logger
}

// New creates a Scraper with explicit collaborator instances
func New(client FeedClient, gateway Gateway, resolver MediaResolver, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client:  client,
		gateway: gateway,
		classifier: &classifier{
			gateway:  gateway,
			resolver: resolver,
			logger:   log,
		},
		logger: log,
	}
}

// Run harvests one account. Returns ErrAccountNotFound when the profile
// snapshot carries no tweet count. A timeline that turns out to be empty
// after valid stats yields a stats-only result, not an error.
func (s *Scraper) Run(ctx context.Context, job Job) (*Result, error) {
	snapshot, err := s.client.FetchProfile(ctx, job.Handle)
	if err != nil {
		var apiErr *errors.Error
		if goerrors.As(err, &apiErr) && apiErr.Type == errors.ErrorTypeNotFound {
			s.logger.WarnWithFields("twitter data not found", map[string]interface{}{
				"account": job.AccountCode,
				"handle":  job.Handle,
			})
			return nil, errors.ErrAccountNotFound
		}
		return nil, err
	}

	stats, err := s.extractStats(job, snapshot)
	if err != nil {
		if goerrors.Is(err, errors.ErrAccountNotFound) {
			s.logger.WarnWithFields("twitter data not found", map[string]interface{}{
				"account": job.AccountCode,
				"handle":  job.Handle,
			})
		}
		return nil, err
	}

	s.logger.InfoWithFields("info and stats collected", map[string]interface{}{
		"account":      job.AccountCode,
		"total_tweets": stats.TweetCount,
	})

	result := &Result{Stats: stats}

	if job.Mode == ModeInfo {
		return result, nil
	}

	cutoff, err := s.gateway.Cutoff(job.AccountCode, models.PlatformTwitter, models.SubtypeText, job.Deep)
	if err != nil {
		return nil, err
	}

	totals, err := s.paginate(ctx, job, cutoff)
	if err != nil {
		if goerrors.Is(err, errors.ErrAccountNotFound) {
			// Stats were valid but the timeline has no entries; the stats
			// already written stand and the result reports zero posts
			s.logger.WarnWithFields("tweet details not found", map[string]interface{}{
				"account": job.AccountCode,
			})
			return result, nil
		}
		return nil, err
	}

	result.Totals = totals

	s.logger.InfoWithFields("timeline processed", map[string]interface{}{
		"account":    job.AccountCode,
		"text_posts": totals.Texts,
		"images":     totals.Images,
		"videos":     totals.Videos,
		"time_check": totals.TimeCheck,
	})

	return result, nil
}
