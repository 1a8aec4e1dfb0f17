// CLAUDE:SUMMARY Extracts a classified component Snapshot from a PageCapture: parse, classify, filter, merge.
package layout

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
)

// Extract parses the captured document, classifies its elements and returns
// the Snapshot of visible, classifiable components with their rendered
// boxes. Per-element problems (missing geometry for a classifiable element)
// are recovered locally: the element is skipped and a Diagnostic recorded.
// Only an unparseable document fails the extraction as a whole.
func Extract(capture *PageCapture) (*Snapshot, []Diagnostic, error) {
	root, err := html.Parse(bytes.NewReader(capture.HTML))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse document: %v", ErrExtraction, err)
	}

	categories := classify(root)
	byIndex := make(map[int]*ElementInfo, len(capture.Elements))
	for i := range capture.Elements {
		byIndex[capture.Elements[i].Index] = &capture.Elements[i]
	}

	var (
		components  []VisualComponent
		textBlocks  []VisualComponent
		diagnostics []Diagnostic
	)

	idx := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			i := idx
			idx++

			if cat, ok := categories[n]; ok {
				comp, diag := buildComponent(n, cat, byIndex[i])
				if diag != nil {
					diagnostics = append(diagnostics, *diag)
				} else if comp != nil {
					if cat == CategoryTextBlock {
						textBlocks = append(textBlocks, *comp)
					} else {
						components = append(components, *comp)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	components = append(components, mergeTextBlocks(textBlocks)...)

	return &Snapshot{Viewport: capture.Viewport, Components: components}, diagnostics, nil
}

// buildComponent turns one classified element into a component. A nil, nil
// return means the element is excluded without being an extraction issue
// (hidden, zero-area, or an empty text block).
func buildComponent(n *html.Node, cat Category, info *ElementInfo) (*VisualComponent, *Diagnostic) {
	if info == nil || info.Box == nil {
		return nil, &Diagnostic{
			Element: nodeIdentifier(n),
			Reason:  "missing geometry for classifiable element",
		}
	}
	if info.Style != nil && info.Style.Hidden() {
		return nil, nil
	}
	if info.Box.Empty() {
		return nil, nil
	}

	text := ""
	if cat == CategoryTextBlock {
		// Container divs with no direct text are wrappers, not text blocks.
		if info.Tag == "div" && !info.HasDirectText {
			return nil, nil
		}
		if info.Text == "" {
			return nil, nil
		}
		text = info.Text
	}

	return &VisualComponent{
		Category: cat,
		Box:      *info.Box,
		Element:  info.Identifier(),
		Text:     text,
	}, nil
}

// nodeIdentifier builds an identifier from the DOM node itself, for
// diagnostics about elements whose measurement never arrived.
func nodeIdentifier(n *html.Node) string {
	info := ElementInfo{Tag: n.Data}
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			info.ID = a.Val
		case "class":
			info.Classes = a.Val
		}
	}
	return info.Identifier()
}
