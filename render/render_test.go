package render

import (
	"strings"
	"testing"
)

func TestFileURL(t *testing.T) {
	// WHAT: Relative paths become absolute file:// URLs.
	u, err := FileURL("testdata/page.html")
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	if !strings.HasPrefix(u, "file:///") {
		t.Errorf("url = %q, want file:/// prefix", u)
	}
	if !strings.HasSuffix(u, "/testdata/page.html") {
		t.Errorf("url = %q, want path suffix preserved", u)
	}
}
