package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Pages with less extracted text than this are treated as client-side
// rendered and handed to the browser.
const minStaticText = 500

// DefaultRenderTimeout bounds one headless page render.
const DefaultRenderTimeout = 30 * time.Second

// NeedsBrowser reports whether a plain HTTP fetch produced too little text
// to be the real page. Wellfound and Crunchbase profiles render
// client-side and trip this.
func NeedsBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < minStaticText
}

// Render loads url in headless Chrome and returns the DOM after scripts
// have run. Chrome or Chromium must be installed.
func Render(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error) {
	if verbose {
		log.Printf("[BROWSER] Rendering %s", url)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Grace period for the SPA to paint its listings
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Cookie banners cover the listings on some sources; a
			// missing banner is not an error
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	if verbose {
		log.Printf("[BROWSER] Rendered %s: %d bytes", url, len(html))
	}
	return html, nil
}
