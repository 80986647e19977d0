package service

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func validatePage(size, cursor int) error {
	if size <= 0 || size > MaxPageSize {
		return validationf("size must be between 1 and %d", MaxPageSize)
	}
	if cursor < 0 {
		return validationf("cursor must not be negative")
	}
	return nil
}

// nextCursor applies the full-page heuristic: a page holding exactly size
// items is assumed to have a successor, even when it happens to be the last.
func nextCursor(cursor, size, got int) (*int, bool) {
	if got != size {
		return nil, false
	}
	next := cursor + got
	return &next, true
}
