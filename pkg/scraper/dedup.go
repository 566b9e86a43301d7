package scraper

// sessionSet tracks the entry identifiers already processed during one
// paginator run. It guards against providers that repeat the boundary entry
// when the pagination cursor is the last ID of the previous page. Never
// persisted; a new set is created per run.
type sessionSet struct {
	seen map[string]struct{}
}

func newSessionSet() *sessionSet {
	return &sessionSet{seen: make(map[string]struct{})}
}

// Seen reports whether the identifier was already marked this session
func (s *sessionSet) Seen(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Mark records the identifier as processed
func (s *sessionSet) Mark(id string) {
	s.seen[id] = struct{}{}
}
