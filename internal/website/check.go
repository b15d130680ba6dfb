// Package website implements the headless-browser smoke check: it navigates
// a controlled Chrome instance to a locally running dev server and records
// runtime problems: console errors, uncaught exceptions, failed network
// requests, broken images, and missing alt text.
package website

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config tunes the smoke check.
type Config struct {
	// BrowserBin is the Chrome/Chromium binary to launch. Empty lets the
	// rod launcher resolve one.
	BrowserBin string
	// NavigationTimeout bounds navigation plus wait-for-idle.
	NavigationTimeout time.Duration
	// SettleDelay is the pause after each interaction click.
	SettleDelay time.Duration
	// MaxInteractions caps how many buttons/links get exercised.
	MaxInteractions int
}

// DefaultConfig returns the check defaults.
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 10 * time.Second,
		SettleDelay:       500 * time.Millisecond,
		MaxInteractions:   3,
	}
}

// Report is the outcome of one smoke check. Success means zero hard errors;
// warnings never fail the check.
type Report struct {
	URL          string   `json:"url"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	BrokenImages int      `json:"brokenImages"`
	MissingAlt   int      `json:"missingAlt"`
}

// Success reports whether the page produced no hard errors.
func (r *Report) Success() bool {
	return len(r.Errors) == 0
}

// Summary renders the report as human-readable output for the task runner.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Checked %s: %d errors, %d warnings\n", r.URL, len(r.Errors), len(r.Warnings))
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	if r.BrokenImages > 0 {
		fmt.Fprintf(&b, "  %d broken image(s)\n", r.BrokenImages)
	}
	if r.MissingAlt > 0 {
		fmt.Fprintf(&b, "  %d image(s) missing alt text\n", r.MissingAlt)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Checker owns exactly one browser instance per Check call and guarantees
// its closure on every exit path.
type Checker struct {
	cfg    Config
	logger *zap.Logger
}

// NewChecker creates a smoke checker.
func NewChecker(cfg Config, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 10 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	if cfg.MaxInteractions <= 0 {
		cfg.MaxInteractions = 3
	}
	return &Checker{cfg: cfg, logger: logger}
}

// Check runs the full smoke check against url. The returned error covers
// infrastructure failures only (browser could not start or attach); page
// problems, including navigation failure, land in the report.
func (c *Checker) Check(ctx context.Context, url string) (*Report, error) {
	launch := launcher.New().Headless(true).
		Set(flags.NoSandbox).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if c.cfg.BrowserBin != "" {
		launch = launch.Bin(c.cfg.BrowserBin)
	}
	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		launch.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
		launch.Cleanup()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	report := &Report{URL: url}
	collector := newCollector(report)

	eventCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()
	wait := page.Context(eventCtx).EachEvent(
		collector.onConsole,
		collector.onException,
		collector.onRequest,
		collector.onResponse,
		collector.onLoadingFailed,
	)
	go wait()

	// Check 1: navigation. A failure here is an error, not an abort; the
	// remaining checks still run against whatever state exists.
	nav := page.Timeout(c.cfg.NavigationTimeout)
	if err := nav.Navigate(url); err != nil {
		collector.addError(fmt.Sprintf("navigation failed: %v", err))
	} else if err := nav.WaitIdle(c.cfg.NavigationTimeout); err != nil {
		collector.addWarning(fmt.Sprintf("page did not reach network idle: %v", err))
	}

	// Check 2: image health.
	c.checkImages(page, collector)

	// Check 3: exercise the first few interactive elements.
	c.exercise(page, collector)

	c.logger.Info("website check finished",
		zap.String("url", url),
		zap.Int("errors", len(report.Errors)),
		zap.Int("warnings", len(report.Warnings)))
	return report, nil
}

// checkImages counts broken <img> elements and images without alt text.
func (c *Checker) checkImages(page *rod.Page, col *collector) {
	res, err := page.Eval(`() => {
		const imgs = Array.from(document.querySelectorAll('img'));
		let broken = 0, missingAlt = 0;
		for (const img of imgs) {
			if (!img.complete || img.naturalWidth === 0) broken++;
			if (!img.hasAttribute('alt') || img.getAttribute('alt').trim() === '') missingAlt++;
		}
		return { broken, missingAlt };
	}`)
	if err != nil {
		col.addWarning(fmt.Sprintf("image scan failed: %v", err))
		return
	}
	broken := res.Value.Get("broken").Int()
	missing := res.Value.Get("missingAlt").Int()
	col.setImageCounts(broken, missing)
	if broken > 0 {
		col.addError(fmt.Sprintf("%d broken image(s) on page", broken))
	}
	if missing > 0 {
		col.addWarning(fmt.Sprintf("%d image(s) missing alt text", missing))
	}
}

// exercise clicks up to MaxInteractions buttons/links with a settle delay
// after each. Interaction failures are warnings, never errors.
func (c *Checker) exercise(page *rod.Page, col *collector) {
	elements, err := page.Elements("button, a[href], [role='button']")
	if err != nil {
		col.addWarning(fmt.Sprintf("could not enumerate interactive elements: %v", err))
		return
	}
	count := len(elements)
	if count > c.cfg.MaxInteractions {
		count = c.cfg.MaxInteractions
	}
	for i := 0; i < count; i++ {
		el := elements[i]
		if _, err := el.Eval(`() => this.click()`); err != nil {
			col.addWarning(fmt.Sprintf("interaction %d failed: %v", i+1, err))
			continue
		}
		time.Sleep(c.cfg.SettleDelay)
	}
}

// collector funnels concurrent browser events into a Report.
type collector struct {
	mu     sync.Mutex
	report *Report
	// requestURLs maps request ids to their URLs so failures can name them.
	requestURLs map[proto.NetworkRequestID]string
}

func newCollector(report *Report) *collector {
	return &collector{report: report, requestURLs: make(map[proto.NetworkRequestID]string)}
}

func (c *collector) addError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Errors = append(c.report.Errors, msg)
}

func (c *collector) addWarning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Warnings = append(c.report.Warnings, msg)
}

func (c *collector) setImageCounts(broken, missingAlt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.BrokenImages = broken
	c.report.MissingAlt = missingAlt
}

func (c *collector) onConsole(ev *proto.RuntimeConsoleAPICalled) {
	if ev.Type != proto.RuntimeConsoleAPICalledTypeError {
		return
	}
	c.addError("console error: " + stringifyConsoleArgs(ev.Args))
}

func (c *collector) onException(ev *proto.RuntimeExceptionThrown) {
	detail := ev.ExceptionDetails.Text
	if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
		detail = ev.ExceptionDetails.Exception.Description
	}
	c.addError("uncaught exception: " + detail)
}

func (c *collector) onRequest(ev *proto.NetworkRequestWillBeSent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestURLs[ev.RequestID] = ev.Request.URL
}

func (c *collector) onResponse(ev *proto.NetworkResponseReceived) {
	if ev.Response == nil || ev.Response.Status < 400 {
		return
	}
	c.addError(fmt.Sprintf("request failed: %s -> HTTP %d", ev.Response.URL, ev.Response.Status))
}

func (c *collector) onLoadingFailed(ev *proto.NetworkLoadingFailed) {
	if ev.Canceled {
		return
	}
	c.mu.Lock()
	url := c.requestURLs[ev.RequestID]
	c.mu.Unlock()
	if url == "" {
		url = string(ev.RequestID)
	}
	c.addError(fmt.Sprintf("request failed: %s (%s)", url, ev.ErrorText))
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}
