// CLAUDE:SUMMARY CLI entry point for domgrade — evaluate pages, serve the HTTP API, or serve MCP over stdio.
// Command domgrade evaluates rendered HTML documents for layout similarity
// and responsive-design compliance.
//
// Usage:
//
//	domgrade -html page.html                          # evaluate a local file
//	domgrade -html page.html -reference ref.html      # plus layout similarity
//	domgrade -html page.html -gt-dir shots/           # plus pixel diff per viewport
//	domgrade -serve :8080 -db runs.db                 # HTTP API
//	domgrade -mcp -db runs.db                         # MCP over stdio
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domgrade/grade"
	"github.com/hazyhaar/domgrade/layout"
	"github.com/hazyhaar/domgrade/render"
)

func main() {
	configPath := flag.String("config", "", "path to domgrade.yaml config file")
	htmlPath := flag.String("html", "", "HTML file or URL to evaluate")
	refPath := flag.String("reference", "", "reference HTML file or URL for layout similarity")
	gtDir := flag.String("gt-dir", "", "directory of ground-truth screenshots named <viewport>.png")
	dbPath := flag.String("db", "", "SQLite run-history database (empty = no persistence)")
	serveAddr := flag.String("serve", "", "serve the HTTP API on this address")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio")
	remoteURL := flag.String("remote", "", "WebSocket URL of an external Chrome (empty = launch local)")
	stealth := flag.Bool("stealth", false, "apply anti-detection page setup")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := grade.Config{Logger: logger}
	if *configPath != "" {
		loaded, err := grade.LoadConfigFile(*configPath)
		if err != nil {
			logger.Error("domgrade: config", "error", err)
			os.Exit(1)
		}
		loaded.Logger = logger
		cfg = loaded
	}

	svc, err := grade.NewService(cfg, *dbPath)
	if err != nil {
		logger.Error("domgrade: init", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	switch {
	case *htmlPath != "":
		err = runEvaluate(ctx, logger, svc, cfg, *htmlPath, *refPath, *gtDir, *remoteURL, *stealth)
	case *serveAddr != "":
		err = runServe(ctx, logger, svc, *serveAddr)
	case *mcpMode:
		err = runMCP(ctx, svc)
	default:
		fmt.Fprintln(os.Stderr, "usage: domgrade -html <file|url> | -serve <addr> | -mcp")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("domgrade: fatal", "error", err)
		os.Exit(1)
	}
}

func runEvaluate(ctx context.Context, logger *slog.Logger, svc *grade.Service, cfg grade.Config,
	htmlPath, refPath, gtDir, remoteURL string, stealth bool) error {

	r := render.New(render.Config{RemoteURL: remoteURL, Stealth: stealth, Logger: logger})
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer r.Close()

	viewports := cfg.Viewports
	if len(viewports) == 0 {
		viewports = layout.DefaultViewports()
	}

	pageURL, err := resolveURL(htmlPath)
	if err != nil {
		return err
	}
	captures, err := r.CaptureAll(ctx, pageURL, viewports)
	if err != nil {
		return fmt.Errorf("capture %s: %w", htmlPath, err)
	}

	var refs []*layout.Snapshot
	if refPath != "" {
		refURL, err := resolveURL(refPath)
		if err != nil {
			return err
		}
		refCaptures, err := r.CaptureAll(ctx, refURL, viewports)
		if err != nil {
			return fmt.Errorf("capture reference %s: %w", refPath, err)
		}
		for _, rc := range refCaptures {
			snapshot, diags, err := layout.Extract(rc.Page)
			if err != nil {
				return fmt.Errorf("extract reference at %s: %w", rc.Page.Viewport.Name, err)
			}
			if len(diags) > 0 {
				logger.Warn("reference extraction diagnostics",
					"viewport", rc.Page.Viewport.Name, "count", len(diags))
			}
			refs = append(refs, snapshot)
		}
	}

	in := grade.Input{Source: htmlPath}
	for i, c := range captures {
		vi := grade.ViewportInput{Capture: c.Page}
		if refs != nil {
			vi.Reference = refs[i]
		}
		if gtDir != "" {
			gtPath := filepath.Join(gtDir, c.Page.Viewport.Name+".png")
			gt, err := loadImage(gtPath)
			if err != nil {
				logger.Warn("ground truth unavailable", "path", gtPath, "error", err)
			} else {
				shot, _, err := image.Decode(bytes.NewReader(c.Screenshot))
				if err != nil {
					return fmt.Errorf("decode screenshot at %s: %w", c.Page.Viewport.Name, err)
				}
				vi.Screenshot = shot
				vi.GroundTruth = gt
			}
		}
		in.Viewports = append(in.Viewports, vi)
	}

	report, err := svc.Evaluate(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runServe(ctx context.Context, logger *slog.Logger, svc *grade.Service, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context, svc *grade.Service) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "domgrade", Version: "0.1.0"}, nil)
	svc.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// resolveURL accepts http(s) URLs as-is and turns local paths into file:// URLs.
func resolveURL(s string) (string, error) {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "file://") {
		return s, nil
	}
	if _, err := os.Stat(s); err != nil {
		return "", fmt.Errorf("resolve %s: %w", s, err)
	}
	return render.FileURL(s)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
