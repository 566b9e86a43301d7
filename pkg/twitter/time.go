package twitter

import (
	"fmt"
	"time"
)

// CreatedAtLayout is the provider's native timestamp layout,
// e.g. "Mon Sep 08 15:19:11 +0000 2014".
const CreatedAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// ParseCreatedAt converts a provider timestamp into an absolute instant,
// normalized to UTC so parsed values compare equal regardless of the
// process time zone.
func ParseCreatedAt(s string) (time.Time, error) {
	t, err := time.Parse(CreatedAtLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t.UTC(), nil
}
