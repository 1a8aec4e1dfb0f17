package grade

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domgrade/layout"
)

var testMCPImpl = &mcp.Implementation{Name: "domgrade-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	svc, err := NewService(Config{}, "")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	srv := mcp.NewServer(testMCPImpl, nil)
	svc.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_LayoutSimilarity(t *testing.T) {
	session := mcpSession(t)

	mobile := layout.Viewport{Name: "mobile", Width: 375}
	snapshot := &layout.Snapshot{
		Viewport: mobile,
		Components: []layout.VisualComponent{
			{Category: layout.CategoryImage, Box: layout.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}},
		},
	}

	text := mcpCallTool(t, session, "domgrade_layout_similarity", map[string]any{
		"predicted": snapshot,
		"reference": snapshot,
	})

	var sim layout.Similarity
	if err := json.Unmarshal([]byte(text), &sim); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sim.Score != 1.0 {
		t.Errorf("score = %f, want 1.0", sim.Score)
	}
}

func TestMCP_PixelDiff(t *testing.T) {
	session := mcpSession(t)

	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.png")
	pathB := filepath.Join(dir, "b.png")
	writePNG(t, pathA, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	writePNG(t, pathB, color.RGBA{R: 10, G: 10, B: 10, A: 255})

	text := mcpCallTool(t, session, "domgrade_pixel_diff", map[string]any{
		"path_a": pathA,
		"path_b": pathB,
	})

	var stats struct {
		MSE float64 `json:"mse"`
	}
	if err := json.Unmarshal([]byte(text), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.MSE != 0 {
		t.Errorf("mse = %f, want 0", stats.MSE)
	}
}

func TestMCP_Evaluate(t *testing.T) {
	session := mcpSession(t)

	mobile := layout.Viewport{Name: "mobile", Width: 375}
	text := mcpCallTool(t, session, "domgrade_evaluate", map[string]any{
		"source": "page.html",
		"viewports": []map[string]any{
			{"capture": compliantCapture(mobile)},
		},
	})

	var report Report
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !report.Passed {
		t.Errorf("report.Passed = false: %+v", report.Viewports)
	}
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}
