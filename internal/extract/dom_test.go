package extract

import (
	"reflect"
	"testing"
)

func TestDOMLinks_DocumentOrder(t *testing.T) {
	content := `<html><body>
<img src="logo.png">
<a href="page.html">one</a>
<script src="app.js"></script>
</body></html>`

	got := DOMLinks(content)
	want := []string{"logo.png", "page.html", "app.js"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("DOMLinks() = %v, want %v", got, want)
	}
}

func TestDOMLinks_Dedup(t *testing.T) {
	content := `<a href="a.html">1</a><a href="a.html">2</a>`

	got := DOMLinks(content)
	if len(got) != 1 || got[0] != "a.html" {
		t.Errorf("DOMLinks() = %v, want [a.html]", got)
	}
}

func TestDOMLinks_Truncated(t *testing.T) {
	// A truncated document yields whatever was collected before the cut
	content := `<a href="a.html">ok</a><a href="b.htm`

	got := DOMLinks(content)
	if len(got) == 0 || got[0] != "a.html" {
		t.Errorf("DOMLinks() = %v, want a.html first", got)
	}
}
