// Package ratelimit provides the advisory throttle applied between timeline
// page fetches. The paginator calls the feed client's Throttle after every
// page; the client delegates here so provider quotas are respected without
// the core knowing about them.
package ratelimit
