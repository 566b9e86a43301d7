package twitter

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultBaseURL is the base URL for the Twitter REST API
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// ProfileEndpoint returns a single account's profile
	ProfileEndpoint = "/users/show.json"

	// TimelineEndpoint returns a page of an account's timeline
	TimelineEndpoint = "/statuses/user_timeline.json"

	// DefaultPageSize is the default number of entries per timeline page
	DefaultPageSize = 200

	// MaxPageSize is the provider's hard page-size limit
	MaxPageSize = 200
)

// ProfileURL constructs the URL for fetching an account's profile
func ProfileURL(baseURL, handle string) string {
	params := url.Values{}
	params.Set("screen_name", handle)

	return fmt.Sprintf("%s%s?%s", baseURL, ProfileEndpoint, params.Encode())
}

// TimelineURL constructs the URL for fetching a timeline page. cursorID is
// the identifier of the last entry of the previous page; the provider treats
// it as an inclusive upper bound, so the boundary entry reappears on the next
// page and must be deduplicated by the caller. Empty cursorID requests the
// newest page.
func TimelineURL(baseURL, handle, cursorID string, pageSize int) string {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	params := url.Values{}
	params.Set("screen_name", handle)
	params.Set("count", strconv.Itoa(pageSize))
	params.Set("tweet_mode", "extended")
	params.Set("include_rts", "true")
	if cursorID != "" {
		params.Set("max_id", cursorID)
	}

	return fmt.Sprintf("%s%s?%s", baseURL, TimelineEndpoint, params.Encode())
}

// PermalinkURL constructs the canonical permalink for an entry
func PermalinkURL(entryID string) string {
	return "https://twitter.com/statuses/" + entryID
}

// SmallRendition appends the provider's size suffix requesting a smaller
// rendition of a media source URL.
func SmallRendition(mediaURL string) string {
	return mediaURL + ":small"
}

// SanitizeHandle removes a leading @ and surrounding whitespace from a handle
func SanitizeHandle(handle string) string {
	for len(handle) > 0 && (handle[0] == '@' || handle[0] == ' ') {
		handle = handle[1:]
	}
	for len(handle) > 0 && (handle[len(handle)-1] == '/' || handle[len(handle)-1] == ' ') {
		handle = handle[:len(handle)-1]
	}
	return handle
}
