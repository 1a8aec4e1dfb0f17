// CLAUDE:SUMMARY Ordered CSS-selector rules assigning DOM elements to visual component categories.
package layout

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// classifyRule maps one CSS selector to a category. Rules are evaluated in
// priority order: tag-name signals first, then role/class heuristics, with
// the broad text-block net last. An element keeps the first category that
// matches; elements matching no rule stay unclassified and are excluded
// from snapshots rather than defaulted.
type classifyRule struct {
	category Category
	selector string
}

var classifyRules = []classifyRule{
	{CategoryVideo, `video`},
	{CategoryImage, `img`},
	{CategoryButton, `button, input[type="button"], input[type="submit"], [role="button"]`},
	{CategoryNavBar, `nav, [role="navigation"], [class~="nav"], [class~="navigation"], [class~="menu"], [class~="navbar"], #nav, #menu, #navigation, #navbar`},
	{CategoryDivider, `hr, [role="separator"], [class*="separator"], [class*="divider"], #separator, #divider`},
	{CategoryFormTable, `form, table, div.form`},
	{CategoryTextBlock, `p, span, a, strong, h1, h2, h3, h4, h5, h6, li, th, td, label, code, pre, div`},
}

// classify resolves every element of the document to a category using the
// priority-ordered rule list. Unmatched elements are absent from the result.
func classify(root *html.Node) map[*html.Node]Category {
	doc := goquery.NewDocumentFromNode(root)
	assigned := make(map[*html.Node]Category)

	for _, rule := range classifyRules {
		doc.Find(rule.selector).Each(func(_ int, sel *goquery.Selection) {
			for _, n := range sel.Nodes {
				if _, ok := assigned[n]; !ok {
					assigned[n] = rule.category
				}
			}
		})
	}
	return assigned
}
