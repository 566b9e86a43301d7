package twitter

// ProfileSnapshot is a single point-in-time read of an account, decoded from
// the users/show payload. Provider fields are optional: a pointer is nil when
// the field was absent from the response. StatusesCount doubles as the
// account-exists indicator.
type ProfileSnapshot struct {
	Description     *string `json:"description"`
	FavouritesCount *int64  `json:"favourites_count"`
	FollowersCount  *int64  `json:"followers_count"`
	FriendsCount    *int64  `json:"friends_count"`
	StatusesCount   *int64  `json:"statuses_count"`
}

// FeedEntry is one raw item from a timeline page. CreatedAt carries the
// provider's native textual timestamp; ParseCreatedAt converts it.
type FeedEntry struct {
	ID            string     `json:"id_str"`
	CreatedAt     string     `json:"created_at"`
	FullText      *string    `json:"full_text"`
	Text          *string    `json:"text"`
	FavoriteCount *int64     `json:"favorite_count"`
	RetweetCount  *int64     `json:"retweet_count"`
	Entities      *Entities  `json:"extended_entities"`
}

// Entities wraps the media attachments of an entry.
type Entities struct {
	Media []MediaItem `json:"media"`
}

// MediaItem is one attachment of a FeedEntry. Type is "photo", "video" or
// "animated_gif".
type MediaItem struct {
	ID       string `json:"id_str"`
	Type     string `json:"type"`
	MediaURL string `json:"media_url_https"`
}

// Media returns the entry's attachments, or nil when it has none.
func (e *FeedEntry) Media() []MediaItem {
	if e.Entities == nil {
		return nil
	}
	return e.Entities.Media
}

// Body returns the entry's text: the full text if present and non-empty,
// else the truncated text, else nil for a media-only entry.
func (e *FeedEntry) Body() *string {
	if e.FullText != nil && *e.FullText != "" {
		return e.FullText
	}
	if e.Text != nil && *e.Text != "" {
		return e.Text
	}
	return nil
}
