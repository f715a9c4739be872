// Package browser captures screenshots of the web dashboard with headless Chrome.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jgoulah/campusenergy/internal/config"
	"github.com/jgoulah/campusenergy/internal/log"
)

const (
	defaultWaitSelector = "body"
	settleDelay         = 2 * time.Second
	screenshotQuality   = 100 // PNG
)

// Options controls a dashboard snapshot
type Options struct {
	URL          string
	WaitSelector string
	Width        int
	Height       int
	Cookies      []config.Cookie
	Visible      bool // run with a visible browser window
	Timeout      time.Duration
}

// FromConfig builds snapshot options from the dashboard config section
func FromConfig(cfg config.DashboardConfig) Options {
	w, h := cfg.GetViewport()
	return Options{
		URL:          cfg.URL,
		WaitSelector: cfg.WaitSelector,
		Width:        w,
		Height:       h,
		Cookies:      cfg.Cookies,
	}
}

func (o Options) validate() error {
	if o.URL == "" {
		return fmt.Errorf("dashboard URL is required")
	}
	u, err := url.Parse(o.URL)
	if err != nil {
		return fmt.Errorf("parsing dashboard URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		return fmt.Errorf("unsupported dashboard URL scheme %q", u.Scheme)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", o.Width, o.Height)
	}
	return nil
}

func (o Options) waitSelector() string {
	if o.WaitSelector == "" {
		return defaultWaitSelector
	}
	return o.WaitSelector
}

// Snapshot loads the dashboard and returns a full page PNG screenshot
func Snapshot(ctx context.Context, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Visible),
		chromedp.WindowSize(opts.Width, opts.Height),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if opts.Timeout > 0 {
		browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
		defer cancel()
	}

	if err := SetCookies(browserCtx, opts.Cookies); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info("loading dashboard", "url", opts.URL, "width", opts.Width, "height", opts.Height)

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.waitSelector(), chromedp.ByQuery),
		chromedp.Sleep(settleDelay), // charts animate in after the data loads
		chromedp.FullScreenshot(&buf, screenshotQuality),
	); err != nil {
		return nil, fmt.Errorf("capturing dashboard: %w", err)
	}

	return buf, nil
}

// SetCookies sets cookies in the browser context
func SetCookies(ctx context.Context, cookies []config.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}

	for _, c := range cookies {
		expr := network.SetCookie(c.Name, c.Value).
			WithDomain(c.Domain).
			WithPath(c.Path).
			WithHTTPOnly(c.HTTPOnly).
			WithSecure(c.Secure)
		if c.SameSite != "" {
			expr = expr.WithSameSite(network.CookieSameSite(c.SameSite))
		}

		if err := chromedp.Run(ctx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				return expr.Do(ctx)
			}),
		); err != nil {
			return fmt.Errorf("setting cookie %s: %w", c.Name, err)
		}
	}

	return nil
}
