// Package collyfetcher implements crawler.Session using gocolly for sites that
// render their directory server-side.
package collyfetcher

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Session implements crawler.Session with a single Colly collector. Each
// navigation clones the base collector so callbacks never leak between pages.
type Session struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

type page struct {
	url  *url.URL
	body []byte
}

// New builds a Session.
func New(cfg Config) *Session {
	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c.SetRequestTimeout(cfg.Timeout)

	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Session{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Navigate executes a single GET and parses the response body.
func (s *Session) Navigate(ctx context.Context, rawURL string) (*goquery.Document, error) {
	var (
		result   page
		fetchErr error
	)
	collector := s.baseCollector.Clone()
	collector.WithTransport(s.transport)
	s.configureCollectorHooks(collector, &result, &fetchErr)

	if err := s.runCollector(ctx, collector, rawURL, &fetchErr); err != nil {
		return nil, &crawler.NavigationError{URL: rawURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.body))
	if err != nil {
		return nil, &crawler.NavigationError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}
	doc.Url = result.url
	if doc.Url == nil {
		doc.Url, _ = url.Parse(rawURL)
	}
	return doc, nil
}

func (s *Session) configureCollectorHooks(hooks collectorHooks, result *page, fetchErr *error) {
	hooks.OnResponse(func(r *colly.Response) {
		*result = page{
			url:  r.Request.URL,
			body: append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		*fetchErr = err
	})
}

func (s *Session) runCollector(ctx context.Context, collector *colly.Collector, rawURL string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
