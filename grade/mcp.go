// CLAUDE:SUMMARY MCP tools: domgrade_evaluate, domgrade_layout_similarity, domgrade_pixel_diff.
package grade

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domgrade/kit"
	"github.com/hazyhaar/domgrade/layout"
	"github.com/hazyhaar/domgrade/pixdiff"
)

// RegisterMCP registers evaluation tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerEvaluateTool(srv)
	s.registerSimilarityTool(srv)
	s.registerPixelDiffTool(srv)
}

// instrument stamps the transport on the context and logs tool failures.
func (s *Service) instrument(tool string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			ctx = kit.WithTransport(ctx, "mcp")
			resp, err := next(ctx, req)
			if err != nil {
				s.log.Error("mcp tool failed", "tool", tool, "error", err)
			}
			return resp, err
		}
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- evaluate ---

func (s *Service) registerEvaluateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domgrade_evaluate",
		Description: "Evaluate page captures: responsive rules per viewport plus optional layout similarity against reference snapshots.",
		InputSchema: inputSchema(map[string]any{
			"source": map[string]any{"type": "string", "description": "Label for the evaluated document"},
			"viewports": map[string]any{
				"type":        "array",
				"description": "Per-viewport capture plus optional reference snapshot",
				"items":       map[string]any{"type": "object"},
			},
		}, []string{"viewports"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*evaluateRequest)
		in := Input{Source: r.Source}
		for _, v := range r.Viewports {
			in.Viewports = append(in.Viewports, ViewportInput{
				Capture:   v.Capture,
				Reference: v.Reference,
			})
		}
		return s.Evaluate(ctx, in)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r evaluateRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(s.instrument(tool.Name))(endpoint), decode)
}

// --- layout similarity ---

type similarityReq struct {
	Predicted *layout.Snapshot `json:"predicted"`
	Reference *layout.Snapshot `json:"reference"`
	Weights   layout.Weights   `json:"weights,omitempty"`
}

func (s *Service) registerSimilarityTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domgrade_layout_similarity",
		Description: "Score the weighted IoU layout similarity of two snapshots from the same viewport.",
		InputSchema: inputSchema(map[string]any{
			"predicted": map[string]any{"type": "object", "description": "Predicted layout snapshot"},
			"reference": map[string]any{"type": "object", "description": "Reference layout snapshot"},
			"weights":   map[string]any{"type": "object", "description": "Optional per-category weights"},
		}, []string{"predicted", "reference"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*similarityReq)
		weights := r.Weights
		if weights == nil {
			weights = s.Engine.cfg.Weights
		}
		return layout.Match(r.Predicted, r.Reference, weights)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r similarityReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(s.instrument(tool.Name))(endpoint), decode)
}

// --- pixel diff ---

type pixelDiffReq struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

func (s *Service) registerPixelDiffTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domgrade_pixel_diff",
		Description: "Compute MSE/RMSE/percentage pixel difference between two PNG or JPEG files of identical dimensions.",
		InputSchema: inputSchema(map[string]any{
			"path_a": map[string]any{"type": "string", "description": "First image file"},
			"path_b": map[string]any{"type": "string", "description": "Second image file"},
		}, []string{"path_a", "path_b"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*pixelDiffReq)
		return pixdiff.CompareFiles(r.PathA, r.PathB)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r pixelDiffReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(s.instrument(tool.Name))(endpoint), decode)
}
