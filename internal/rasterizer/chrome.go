package rasterizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"docextract/internal/config"
)

// Fixed logical viewport used for every PDF render.
const (
	ViewportWidth  = 1200
	ViewportHeight = 1600
)

const lifecycleNetworkIdle = "networkIdle"

// ChromeRenderer renders documents in a throwaway headless Chrome and screenshots them.
// Each Render launches its own browser with a fresh profile and tears it down on return.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
}

// NewChromeRenderer creates a ChromeRenderer from raster config.
func NewChromeRenderer(cfg *config.RasterConfig) *ChromeRenderer {
	return &ChromeRenderer{
		execPath: cfg.ChromePath,
		timeout:  time.Duration(cfg.TimeoutSecs) * time.Second,
	}
}

func (r *ChromeRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// The Chrome sandbox stays on; NoSandbox is never passed.
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	idle := newIdleWaiter()
	chromedp.ListenTarget(tabCtx, idle.observe)

	var buf []byte
	if err := chromedp.Run(tabCtx, captureTasks(url, idle, &buf)); err != nil {
		return nil, fmt.Errorf("chrome render %s: %w", url, err)
	}
	return buf, nil
}

// captureTasks is the per-render action sequence: enable lifecycle events, pin the
// viewport, navigate, wait for the navigation's network idle, then take a full-page PNG.
func captureTasks(url string, idle *idleWaiter, buf *[]byte) chromedp.Tasks {
	return chromedp.Tasks{
		page.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(ViewportWidth, ViewportHeight),
		navigate(url, idle),
		idle.wait(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			shot, err := screenshotParams().Do(ctx)
			if err != nil {
				return fmt.Errorf("capturing screenshot: %w", err)
			}
			*buf = shot
			return nil
		}),
	}
}

func screenshotParams() *page.CaptureScreenshotParams {
	return page.CaptureScreenshot().
		WithFormat(page.CaptureScreenshotFormatPng).
		WithCaptureBeyondViewport(true).
		WithFromSurface(true)
}

// navigate issues Page.navigate and hands the resulting frame and loader to idle.
func navigate(url string, idle *idleWaiter) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		frameID, loaderID, errorText, isDownload, err := page.Navigate(url).Do(ctx)
		switch {
		case err != nil:
			return fmt.Errorf("navigating: %w", err)
		case errorText != "":
			return fmt.Errorf("navigating: %s", errorText)
		case isDownload:
			return errors.New("navigating: document was handled as a download")
		}
		idle.expect(frameID, loaderID)
		return nil
	}
}

type loadKey struct {
	frame  cdp.FrameID
	loader cdp.LoaderID
}

// idleWaiter releases once networkIdle fires for one specific navigation.
// Events that arrive before the navigation is known are remembered, so a fast
// load cannot slip past, while events from other documents (the initial
// about:blank, subframes) never match.
type idleWaiter struct {
	mu     sync.Mutex
	target *loadKey
	seen   map[loadKey]struct{}
	done   chan struct{}
}

func newIdleWaiter() *idleWaiter {
	return &idleWaiter{
		seen: make(map[loadKey]struct{}),
		done: make(chan struct{}),
	}
}

func (w *idleWaiter) observe(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || e.Name != lifecycleNetworkIdle {
		return
	}
	key := loadKey{frame: e.FrameID, loader: e.LoaderID}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.target == nil {
		w.seen[key] = struct{}{}
		return
	}
	if key == *w.target {
		w.release()
	}
}

func (w *idleWaiter) expect(frame cdp.FrameID, loader cdp.LoaderID) {
	key := loadKey{frame: frame, loader: loader}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.target = &key
	if _, ok := w.seen[key]; ok {
		w.release()
	}
	w.seen = nil
}

// release must be called with mu held.
func (w *idleWaiter) release() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *idleWaiter) wait() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		select {
		case <-w.done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("waiting for network idle: %w", ctx.Err())
		}
	}
}
