package dom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yourorg/hbnb-web/hbnb"
)

func newPage(t *testing.T) *Page {
	t.Helper()
	p, err := DefaultPage()
	if err != nil {
		t.Fatalf("DefaultPage: %v", err)
	}
	return p
}

func TestStatusIndicatorToggle(t *testing.T) {
	t.Parallel()

	p := newPage(t)
	if p.APIAvailable() {
		t.Fatal("fresh page reports available")
	}
	p.SetAPIAvailable(true)
	if !p.APIAvailable() {
		t.Fatal("APIAvailable() = false after SetAPIAvailable(true)")
	}
	p.SetAPIAvailable(false)
	if p.APIAvailable() {
		t.Fatal("APIAvailable() = true after SetAPIAvailable(false)")
	}
}

func TestAppendPlaceKeepsOrder(t *testing.T) {
	t.Parallel()

	p := newPage(t)
	for _, title := range []string{"One", "Two", "Three"} {
		if err := p.AppendPlace(Append(Element("article"), Append(Element("h2"), Text(title)))); err != nil {
			t.Fatalf("AppendPlace: %v", err)
		}
	}
	if got := p.PlaceCount(); got != 3 {
		t.Fatalf("PlaceCount = %d, want 3", got)
	}
	got := strings.Join(p.PlaceTitles(), ",")
	if got != "One,Two,Three" {
		t.Fatalf("titles = %q, want %q", got, "One,Two,Three")
	}
}

func TestAppendPlaceWithoutContainer(t *testing.T) {
	t.Parallel()

	p, err := NewPage(strings.NewReader(`<html><body><div id="api_status"></div></body></html>`))
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if err := p.AppendPlace(Element("article")); err != ErrMissingNode {
		t.Fatalf("err = %v, want ErrMissingNode", err)
	}
}

func TestTextNodesAreEscaped(t *testing.T) {
	t.Parallel()

	p := newPage(t)
	_ = p.AppendPlace(Append(Element("article"), Append(Element("h2"), Text(`<script>alert(1)</script>`))))
	var buf bytes.Buffer
	if err := p.RenderPlaces(&buf); err != nil {
		t.Fatalf("RenderPlaces: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("rendered raw markup: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("missing escaped text: %s", out)
	}
}

func TestAmenityOptionsAndChecked(t *testing.T) {
	t.Parallel()

	p := newPage(t)
	err := p.SetAmenityOptions([]hbnb.Amenity{{ID: "a1", Name: "WiFi"}, {ID: "a2", Name: `Pool "deluxe"`}}, "/filters/toggle")
	if err != nil {
		t.Fatalf("SetAmenityOptions: %v", err)
	}
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `hx-post="/filters/toggle"`) {
		t.Fatalf("checkbox does not post to the given URL: %s", buf.String())
	}
	p.SetChecked("a2", true)
	boxes := p.Checkboxes()
	if len(boxes) != 2 {
		t.Fatalf("checkboxes = %d, want 2", len(boxes))
	}
	if boxes[0].ID != "a1" || boxes[0].Name != "WiFi" || boxes[0].Checked {
		t.Fatalf("first = %+v", boxes[0])
	}
	if boxes[1].Name != `Pool "deluxe"` || !boxes[1].Checked {
		t.Fatalf("second = %+v", boxes[1])
	}
	p.SetChecked("a2", false)
	if p.Checkboxes()[1].Checked {
		t.Fatal("a2 still checked")
	}
}

func TestSummaryNode(t *testing.T) {
	t.Parallel()

	p := newPage(t)
	p.SetAmenitySummary("WiFi, Pool")
	if got := p.AmenitySummary(); got != "WiFi, Pool" {
		t.Fatalf("summary = %q", got)
	}
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "<h4>WiFi, Pool</h4>") {
		t.Fatalf("document missing summary: %s", buf.String())
	}

	buf.Reset()
	if err := SummaryFragment(&buf, "\u00a0"); err != nil {
		t.Fatalf("SummaryFragment: %v", err)
	}
	if got := buf.String(); got != "<h4>\u00a0</h4>" {
		t.Fatalf("fragment = %q", got)
	}
}
