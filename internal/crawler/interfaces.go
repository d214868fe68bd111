package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Session navigates to a page and returns its parsed DOM. A single Session is
// reused sequentially for every navigation of a run and is never shared
// between goroutines.
type Session interface {
	Navigate(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// AssetFetcher downloads a remote resource to a local path.
type AssetFetcher interface {
	Fetch(ctx context.Context, rawURL string, dest string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
