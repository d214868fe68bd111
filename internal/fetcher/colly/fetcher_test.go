package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/clubs/a/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><ul>
<li><a href="/club/ajax/"><img src="/img/ajax.png" alt="Clublogo voetbalvereniging Ajax"></a><a href="/club/ajax/">Ajax</a></li>
</ul></body></html>`)
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/slow/", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, "<html></html>")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionNavigateParsesDocument(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	session := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second})

	doc, err := session.Navigate(context.Background(), srv.URL+"/clubs/a/")
	require.NoError(t, err)
	require.NotNil(t, doc.Url)
	assert.Equal(t, srv.URL+"/clubs/a/", doc.Url.String())

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	stubs := crawler.ExtractListing(doc, base)
	require.Len(t, stubs, 1)
	assert.Equal(t, "Ajax", stubs[0].LogoLabel)
	assert.Equal(t, srv.URL+"/club/ajax/", stubs[0].DetailURL)
}

func TestSessionNavigateRevisitsSameURL(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	session := New(Config{UserAgent: "test-agent"})

	for i := 0; i < 2; i++ {
		_, err := session.Navigate(context.Background(), srv.URL+"/clubs/a/")
		require.NoError(t, err, "visit %d", i)
	}
}

func TestSessionNavigateErrorStatus(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	session := New(Config{})

	_, err := session.Navigate(context.Background(), srv.URL+"/missing/")
	require.Error(t, err)
	var navErr *crawler.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, srv.URL+"/missing/", navErr.URL)
	assert.Contains(t, err.Error(), "404")
}

func TestSessionNavigateCanceled(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	session := New(Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := session.Navigate(ctx, srv.URL+"/slow/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	var result page
	var fetchErr error

	hooks := &stubHooks{}
	s.configureCollectorHooks(hooks, &result, &fetchErr)
	if hooks.onResponse == nil || hooks.onError == nil {
		t.Fatal("expected hooks to be registered")
	}

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("body"),
		Request: &colly.Request{
			URL: mustParseURL(t, "https://example.com/final"),
		},
	})
	if string(result.body) != "body" || result.url.String() != "https://example.com/final" {
		t.Fatalf("unexpected result: %+v", result)
	}

	hooks.onError(&colly.Response{StatusCode: http.StatusBadGateway}, errors.New("boom"))
	if fetchErr == nil || fetchErr.Error() != "status 502: boom" {
		t.Fatalf("expected fetchErr set, got %v", fetchErr)
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url %q: %v", raw, err)
	}
	return u
}

type stubHooks struct {
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
