// Package rendering turns HTML documents into PDFs with headless Chrome.
package rendering

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
)

// Renderer prints an HTML document to PDF.
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// A4 with 20mm margins, in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
	margin      = 0.79
)

// ChromeRenderer launches one browser per render and tears it down after.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewChromeRenderer(cfg *config.Config, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChromeRenderer{
		execPath: cfg.ChromePath,
		timeout:  cfg.ReportRenderTimeout,
		logger:   logger,
	}
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.NoSandbox, chromedp.DisableGPU)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return opts
}

func pdfParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(paperWidth).
		WithPaperHeight(paperHeight).
		WithMarginTop(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithMarginRight(margin)
}

// RenderPDF loads html into a blank page and prints it.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := pdfParams().Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	r.logger.Debug("Rendered PDF", "htmlBytes", len(html), "pdfBytes", len(pdf))
	return pdf, nil
}
