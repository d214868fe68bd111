package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/mock"
)

// MockSession is a mock implementation of the Session interface.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Navigate(ctx context.Context, rawURL string) (*goquery.Document, error) {
	args := m.Called(ctx, rawURL)
	doc, _ := args.Get(0).(*goquery.Document)
	return doc, args.Error(1)
}

// MockAssetFetcher is a mock implementation of the AssetFetcher interface.
type MockAssetFetcher struct {
	mock.Mock
}

func (m *MockAssetFetcher) Fetch(ctx context.Context, rawURL string, dest string) error {
	args := m.Called(ctx, rawURL, dest)
	return args.Error(0)
}

// siteSession serves canned HTML per URL, like a deterministic upstream.
type siteSession struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	visits []string
}

func newSiteSession() *siteSession {
	return &siteSession{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (s *siteSession) Navigate(_ context.Context, rawURL string) (*goquery.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, rawURL)
	if err, ok := s.errs[rawURL]; ok {
		return nil, err
	}
	html, ok := s.pages[rawURL]
	if !ok {
		return nil, &NavigationError{URL: rawURL, Err: errors.New("status 404")}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Url, _ = url.Parse(rawURL)
	return doc, nil
}

// stepClock advances by a fixed step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

type staticIDs string

func (s staticIDs) NewID() (string, error) {
	return string(s), nil
}

// recordingFetcher pretends every download succeeds unless told otherwise.
type recordingFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *recordingFetcher) Fetch(_ context.Context, rawURL string, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dest)
	if err, ok := f.fail[rawURL]; ok {
		return err
	}
	return nil
}

func listingPage(clubs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	b.WriteString(`<li><a href="/">Home</a></li>`)
	for _, c := range clubs {
		slug := strings.ToLower(strings.ReplaceAll(c, " ", "-"))
		fmt.Fprintf(&b,
			`<li><a href="/club/%[1]s/"><img src="/logos/small/%[1]s.png" alt="Clublogo voetbalvereniging %[2]s"></a><a href="/club/%[1]s/">%[2]s</a></li>`,
			slug, c)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func detailPage(slug string) string {
	return fmt.Sprintf(`<html><body>
<div class="media"><picture><img class="img-fluid" src="/logos/big/%[1]s.png?v=1"></picture></div>
<div class="card-body"><address><img src="/shirts/%[1]s.png"></address></div>
</body></html>`, slug)
}
