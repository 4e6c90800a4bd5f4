package pagination

import (
	"errors"

	"trip-booking/internal/models"
)

// ErrInvalidCursor is returned when the supplied cursor does not match any
// element of the result set. Callers may recover by retrying without a
// cursor, but never by silently serving a wrong-offset page.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

const (
	// DefaultPageSize applies when the caller omits pageSize or passes a
	// non-positive value.
	DefaultPageSize = 20
	// MaxPageSize bounds the response size.
	MaxPageSize = 100
)

// Paginate slices an already-ordered result set. The page starts at the
// element following the one whose cursor equals after, or at the beginning
// when after is empty.
//
// HasMore compares the page's last cursor against the last cursor of the
// full result set rather than checking for remaining elements, so repeated
// load-more calls converge even if the set is recomputed between calls.
func Paginate(results []models.Launch, after string, pageSize int) (models.LaunchConnection, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	start := 0
	if after != "" {
		found := false
		for i := range results {
			if results[i].Cursor == after {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return models.LaunchConnection{}, ErrInvalidCursor
		}
	}

	if start >= len(results) {
		return models.LaunchConnection{Launches: []models.Launch{}}, nil
	}

	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	page := results[start:end]

	last := page[len(page)-1].Cursor
	return models.LaunchConnection{
		Cursor:   last,
		HasMore:  last != results[len(results)-1].Cursor,
		Launches: page,
	}, nil
}
