package scraper

import (
	"twscraper/pkg/errors"
	"twscraper/pkg/models"
	"twscraper/pkg/twitter"
)

// Stats reports which profile-level counters were present in the snapshot.
// TweetCount carries the actual total since it drives later reporting; the
// rest are presence flags, the values live in the store.
type Stats struct {
	Description bool
	Likes       bool
	Followers   bool
	Following   bool
	TweetCount  int64
}

// extractStats pulls profile-level counters from a snapshot and writes one
// metadata or statistic record per present field. A snapshot without a tweet
// count means the account does not exist or has no public timeline; nothing
// is written in that case.
func (s *Scraper) extractStats(job Job, snapshot *twitter.ProfileSnapshot) (Stats, error) {
	if snapshot.StatusesCount == nil {
		return Stats{}, errors.ErrAccountNotFound
	}

	var stats Stats

	if snapshot.Description != nil {
		if err := s.gateway.AddMetadata(job.AccountCode, models.MetaTwitterInfo, *snapshot.Description); err != nil {
			return stats, err
		}
		stats.Description = true
	}

	if snapshot.FavouritesCount != nil {
		if err := s.gateway.AddStatistic(job.AccountCode, models.StatTypeTwitter, models.StatSubtypeLikes, *snapshot.FavouritesCount); err != nil {
			return stats, err
		}
		stats.Likes = true
	}

	if snapshot.FollowersCount != nil {
		if err := s.gateway.AddStatistic(job.AccountCode, models.StatTypeTwitter, models.StatSubtypeFollowers, *snapshot.FollowersCount); err != nil {
			return stats, err
		}
		stats.Followers = true
	}

	if snapshot.FriendsCount != nil {
		if err := s.gateway.AddStatistic(job.AccountCode, models.StatTypeTwitter, models.StatSubtypeFollowing, *snapshot.FriendsCount); err != nil {
			return stats, err
		}
		stats.Following = true
	}

	if err := s.gateway.AddStatistic(job.AccountCode, models.StatTypeTwitter, models.StatSubtypePosts, *snapshot.StatusesCount); err != nil {
		return stats, err
	}
	stats.TweetCount = *snapshot.StatusesCount

	return stats, nil
}
