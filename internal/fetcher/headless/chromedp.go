// Package headless implements crawler.Session on top of a headless Chrome tab
// driven by chromedp.
package headless

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

// Config controls the behavior of the headless session.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup.
	ExecPath string
	// Headful disables headless mode, useful when debugging selectors.
	Headful bool
}

// Session owns one browser and one tab. Every navigation of a run reuses the
// tab, so a Session must not be used from more than one goroutine.
type Session struct {
	cfg           Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	meta          *responseMeta
	logger        *zap.Logger
}

// New launches the browser and opens the tab. A failure here is fatal for
// the run.
func New(cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !cfg.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		meta:          newResponseMeta(),
		logger:        logger,
	}
	chromedp.ListenTarget(browserCtx, s.meta.captureEvent)

	if err := chromedp.Run(browserCtx, s.setupAction()); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	logger.Info("headless browser started")
	return s, nil
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.browserCancel()
	s.allocCancel()
}

// Navigate loads rawURL in the shared tab and returns the rendered DOM.
func (s *Session) Navigate(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := s.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", crawler.ErrSessionLost, err)
	}

	taskCtx, cancel := context.WithTimeout(s.browserCtx, s.navTimeout())
	defer cancel()
	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	s.meta.reset()
	html, finalURL, err := s.run(taskCtx, rawURL)
	if err != nil {
		if s.browserCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", crawler.ErrSessionLost, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return nil, &crawler.NavigationError{URL: rawURL, Err: err}
	}
	if status := s.meta.statusCode(); status >= 400 {
		return nil, &crawler.NavigationError{URL: rawURL, Err: fmt.Errorf("status %d", status)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &crawler.NavigationError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}
	doc.Url = resolveFinalURL(rawURL, finalURL, s.meta.url())
	return doc, nil
}

func (s *Session) run(ctx context.Context, rawURL string) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		navigateUntilDOMReady(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

// navigateUntilDOMReady issues Page.navigate and returns once the main frame
// fires DOMContentLoaded. Waiting for the load event would also block on
// third-party scripts and ads the extraction never reads.
func navigateUntilDOMReady(rawURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ready := make(chan struct{}, 1)
		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()
		chromedp.ListenTarget(listenCtx, func(ev any) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				select {
				case ready <- struct{}{}:
				default:
				}
			}
		})

		_, _, errorText, _, err := page.Navigate(rawURL).Do(ctx)
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if errorText != "" {
			return fmt.Errorf("page load error %s", errorText)
		}
		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *Session) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (s *Session) navTimeout() time.Duration {
	if s.cfg.NavigationTimeout > 0 {
		return s.cfg.NavigationTimeout
	}
	return 30 * time.Second
}

// forwardCancel cancels the navigation when the caller's context ends, since
// the navigation itself is derived from the long-lived browser context.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func resolveFinalURL(requestURL, location, responseURL string) *url.URL {
	for _, candidate := range []string{location, responseURL, requestURL} {
		if candidate == "" || candidate == "about:blank" {
			continue
		}
		if u, err := url.Parse(candidate); err == nil && u.IsAbs() {
			return u
		}
	}
	return nil
}

// responseMeta tracks the main document response of the current navigation.
type responseMeta struct {
	mu     sync.RWMutex
	status int
	docURL string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) reset() {
	m.mu.Lock()
	m.status = 0
	m.docURL = ""
	m.mu.Unlock()
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// the first document response is the main frame; later ones are iframes
	if m.status != 0 {
		return
	}
	m.status = int(event.Response.Status)
	m.docURL = event.Response.URL
}

func (m *responseMeta) captureEvent(ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok {
		m.capture(resp)
	}
}

func (m *responseMeta) statusCode() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *responseMeta) url() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docURL
}
