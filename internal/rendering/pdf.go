package rendering

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultPDFTimeout bounds a print when the caller's context has no deadline.
const DefaultPDFTimeout = 60 * time.Second

// A4 in inches; Chrome swaps the sides for landscape.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.4
)

// PDFOptions configures the headless browser.
type PDFOptions struct {
	// ExecPath is the Chrome/Chromium binary; empty uses CHROME_PATH or the
	// chromedp lookup.
	ExecPath string
	Timeout  time.Duration
}

// RenderPDF prints a sanitized report document to an A4 landscape PDF with
// background graphics. Requires Chrome/Chromium on the host.
func RenderPDF(ctx context.Context, document string, opts PDFOptions) ([]byte, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPDFTimeout
	}
	if opts.ExecPath == "" {
		opts.ExecPath = os.Getenv("CHROME_PATH")
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithLandscape(true).
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				WithMarginRight(marginInches).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to print report to PDF", Cause: err}
	}
	return pdf, nil
}
