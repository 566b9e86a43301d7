package scraper

import (
	"context"
	"time"

	"twscraper/pkg/errors"
	"twscraper/pkg/logger"
	"twscraper/pkg/models"
	"twscraper/pkg/twitter"
)

// payloadTimeLayout is the textual form of the posted-at instant stored in
// record payloads.
const payloadTimeLayout = "2006-01-02 15:04:05"

// Classification is the per-entry outcome: exactly one of Texts set to 1, or
// Images+Videos summing to the entry's attachment count.
type Classification struct {
	Texts  int
	Images int
	Videos int
}

// classifier turns one raw feed entry into normalized records and hands each
// record to the gateway as it is produced. It retains nothing.
type classifier struct {
	gateway  Gateway
	resolver MediaResolver
	logger   logger.Logger
}

// Classify normalizes a single entry. Media-bearing entries yield one record
// per attachment and never a text record, even when the entry carries text;
// the text rides inside each media record's payload instead. Missing
// engagement counters are upstream data errors and abort the page.
func (c *classifier) Classify(ctx context.Context, job Job, entry *twitter.FeedEntry, postedAt time.Time) (Classification, error) {
	if entry.FavoriteCount == nil {
		return Classification{}, &errors.MalformedEntryError{EntryID: entry.ID, Field: "favorite_count"}
	}
	if entry.RetweetCount == nil {
		return Classification{}, &errors.MalformedEntryError{EntryID: entry.ID, Field: "retweet_count"}
	}

	body := entry.Body()
	media := entry.Media()

	if len(media) == 0 {
		return c.classifyText(job, entry, postedAt, body)
	}
	return c.classifyMedia(ctx, job, entry, postedAt, body, media)
}

func (c *classifier) classifyText(job Job, entry *twitter.FeedEntry, postedAt time.Time, body *string) (Classification, error) {
	payload := map[string]any{
		"id":       entry.ID,
		"posted":   postedAt.Format(payloadTimeLayout),
		"text":     textOrNil(body),
		"url":      twitter.PermalinkURL(entry.ID),
		"likes":    *entry.FavoriteCount,
		"retweets": *entry.RetweetCount,
	}

	rec := &models.SocialRecord{
		AccountCode: job.AccountCode,
		Platform:    models.PlatformTwitter,
		Subtype:     models.SubtypeText,
		SourceID:    entry.ID,
		ExternalID:  entry.ID,
		PostedAt:    postedAt,
		Text:        body,
		Likes:       *entry.FavoriteCount,
		Payload:     payload,
	}

	if err := c.gateway.AddSocial(rec); err != nil {
		return Classification{}, err
	}

	return Classification{Texts: 1}, nil
}

func (c *classifier) classifyMedia(ctx context.Context, job Job, entry *twitter.FeedEntry, postedAt time.Time, body *string, media []twitter.MediaItem) (Classification, error) {
	var cls Classification

	for _, item := range media {
		subtype := models.SubtypeImage
		if item.Type == "video" {
			cls.Videos++
			subtype = models.SubtypeVideo
		} else {
			// "photo" and "animated_gif" both count as images
			cls.Images++
		}

		src := twitter.SmallRendition(item.MediaURL)

		ref, err := c.resolver.Resolve(ctx, models.PlatformTwitter, job.AccountCode, src, item.ID)
		if err != nil {
			return Classification{}, err
		}

		payload := map[string]any{
			"id":         item.ID,
			"posted":     postedAt.Format(payloadTimeLayout),
			"text":       textOrNil(body),
			"image":      ref,
			"img_source": src,
			"url":        twitter.PermalinkURL(entry.ID),
			"likes":      *entry.FavoriteCount,
			"retweets":   *entry.RetweetCount,
		}

		rec := &models.SocialRecord{
			AccountCode: job.AccountCode,
			Platform:    models.PlatformTwitter,
			Subtype:     subtype,
			SourceID:    entry.ID,
			ExternalID:  item.ID,
			PostedAt:    postedAt,
			Text:        body,
			Image:       &ref,
			Likes:       *entry.FavoriteCount,
			Payload:     payload,
		}

		if err := c.gateway.AddSocial(rec); err != nil {
			return Classification{}, err
		}
	}

	return cls, nil
}

func textOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
