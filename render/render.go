// CLAUDE:SUMMARY Headless Chrome rendering collaborator: loads a page per viewport and harvests geometry, styles and a screenshot.
// Package render drives headless Chrome through Rod to produce the
// layout.PageCapture inputs the evaluation engine consumes: the serialised
// DOM, per-element geometry and computed styles in document order, the page
// scroll extents, and a full-page PNG screenshot.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/domgrade/layout"
)

// Config configures the renderer.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Stealth applies anti-detection page setup. Needed for live sites that
	// gate headless browsers; local files render fine without it.
	Stealth bool

	// Height is the emulated viewport height in pixels. Default: 800.
	// Capture geometry covers the full document regardless.
	Height int

	// NavTimeout bounds navigation plus load wait. Default: 30s.
	NavTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Height <= 0 {
		c.Height = 800
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Renderer owns one Chrome instance and produces captures from it. Safe for
// concurrent Capture calls; each call uses its own tab.
type Renderer struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates a renderer. Call Start before capturing.
func New(cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{cfg: cfg, log: cfg.Logger}
}

// Start launches Chrome (or connects to a remote instance).
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return nil
	}

	wsURL := r.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("render: launch chrome: %w", err)
		}
		wsURL = u
		r.lnch = l
		r.log.Info("render: launched local chrome", "url", wsURL)
	} else {
		r.log.Info("render: connecting to remote chrome", "url", wsURL)
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("render: connect: %w", err)
	}
	r.browser = b
	return nil
}

// Close shuts down Chrome.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return nil
}

// Capture is one rendered page at one viewport.
type Capture struct {
	Page       *layout.PageCapture
	Screenshot []byte // full-page PNG
}

// harvested mirrors the JSON produced by the in-page harvest script. The
// element order is document order (querySelectorAll('*')), which is the
// alignment contract layout.Extract relies on.
type harvested struct {
	Elements     []layout.ElementInfo `json:"elements"`
	ScrollWidth  int                  `json:"scroll_width"`
	ScrollHeight int                  `json:"scroll_height"`
}

// Capture loads pageURL at the given viewport width, harvests per-element
// measurements and takes a full-page screenshot.
func (r *Renderer) Capture(ctx context.Context, pageURL string, vp layout.Viewport) (*Capture, error) {
	r.mu.Lock()
	b := r.browser
	r.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("render: not started")
	}

	var page *rod.Page
	var err error
	if r.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("render: create tab: %w", err)
	}
	defer page.Close()

	err = (proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            r.cfg.Height,
		DeviceScaleFactor: 1,
		Mobile:            vp.Width < 768,
	}).Call(page)
	if err != nil {
		return nil, fmt.Errorf("render: set viewport %s/%d: %w", vp.Name, vp.Width, err)
	}

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("render: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		r.log.Warn("render: wait load timeout", "url", pageURL, "error", err)
	}

	res, err := page.Context(ctx).Eval(harvestJS)
	if err != nil {
		return nil, fmt.Errorf("render: harvest %s: %w", pageURL, err)
	}
	var h harvested
	if err := json.Unmarshal([]byte(res.Value.Str()), &h); err != nil {
		return nil, fmt.Errorf("render: decode harvest: %w", err)
	}

	domRes, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("render: get DOM: %w", err)
	}

	shot, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("render: screenshot: %w", err)
	}

	r.log.Debug("render: captured page",
		"url", pageURL, "viewport", vp.Name,
		"elements", len(h.Elements), "scroll_width", h.ScrollWidth)

	return &Capture{
		Page: &layout.PageCapture{
			Viewport:     vp,
			HTML:         []byte(domRes.Value.Str()),
			Elements:     h.Elements,
			ScrollWidth:  h.ScrollWidth,
			ScrollHeight: h.ScrollHeight,
		},
		Screenshot: shot,
	}, nil
}

// CaptureAll captures the page once per viewport, sequentially; Chrome tabs
// share the process, so parallel device emulation buys nothing.
func (r *Renderer) CaptureAll(ctx context.Context, pageURL string, viewports []layout.Viewport) ([]*Capture, error) {
	captures := make([]*Capture, 0, len(viewports))
	for _, vp := range viewports {
		c, err := r.Capture(ctx, pageURL, vp)
		if err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}
	return captures, nil
}

// FileURL converts a local file path to a file:// URL Chrome can load.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("render: resolve %s: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// harvestJS walks every element in document order and measures it. The index
// of each entry matches the element's position in querySelectorAll('*'),
// which layout.Extract re-derives from the serialised DOM. Width/height/
// max-width report the author's declared sizing, not the computed pixels;
// the responsive rules need to see the unit choice.
const harvestJS = `() => {
	const out = [];
	// Bare numeric presentation attributes (<img width="600">) mean pixels.
	const declared = (v) => /^\d+(\.\d+)?$/.test(v) ? v + 'px' : v;
	document.querySelectorAll('*').forEach((el, i) => {
		const rect = el.getBoundingClientRect();
		const cs = window.getComputedStyle(el);
		let direct = false;
		for (const n of el.childNodes) {
			if (n.nodeType === Node.TEXT_NODE && n.textContent.trim() !== '') {
				direct = true;
				break;
			}
		}
		out.push({
			index: i,
			tag: el.tagName.toLowerCase(),
			id: el.id || '',
			classes: el.getAttribute('class') || '',
			role: el.getAttribute('role') || '',
			input_type: el.getAttribute('type') || '',
			box: {
				x: rect.left + window.scrollX,
				y: rect.top + window.scrollY,
				width: rect.width,
				height: rect.height
			},
			style: {
				display: cs.display,
				visibility: cs.visibility,
				opacity: cs.opacity,
				font_size: cs.fontSize,
				line_height: cs.lineHeight,
				width: declared(el.style.width || el.getAttribute('width') || ''),
				height: declared(el.style.height || el.getAttribute('height') || ''),
				max_width: el.style.maxWidth || ''
			},
			text: (el.innerText || '').trim().slice(0, 2000),
			has_direct_text: direct
		});
	});
	return JSON.stringify({
		elements: out,
		scroll_width: document.documentElement.scrollWidth,
		scroll_height: document.documentElement.scrollHeight
	});
}`
