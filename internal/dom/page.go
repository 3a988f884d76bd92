// Package dom holds the page document that the pipeline and the amenity
// tracker write into.
package dom

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/yourorg/hbnb-web/hbnb"
)

const (
	statusSelector    = "div#api_status"
	summarySelector   = ".amenities h4"
	optionsSelector   = ".amenities .popover ul"
	checkboxSelector  = `.amenities input[type="checkbox"]`
	resultsSelector   = "section.places"
	fragmentSelector  = "section.places > article"
	availableClass    = "available"
	summaryHTMXTarget = ".amenities h4"
)

var ErrMissingNode = errors.New("page node not found")

//go:embed page.html
var skeleton []byte

// Page is one document tree. All methods are safe for concurrent use.
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document
}

func NewPage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Page{doc: doc}, nil
}

// DefaultPage parses a fresh copy of the built-in skeleton.
func DefaultPage() (*Page, error) {
	return NewPage(bytes.NewReader(skeleton))
}

func (p *Page) SetAmenitySummary(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find(summarySelector).SetText(text)
}

func (p *Page) AmenitySummary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(summarySelector).First().Text()
}

func (p *Page) SetAPIAvailable(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := p.doc.Find(statusSelector)
	if ok {
		sel.AddClass(availableClass)
	} else {
		sel.RemoveClass(availableClass)
	}
}

func (p *Page) APIAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(statusSelector).HasClass(availableClass)
}

// AppendPlace adds a rendered fragment to the end of the results container.
func (p *Page) AppendPlace(n *html.Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := p.doc.Find(resultsSelector).First()
	if sel.Length() == 0 {
		return ErrMissingNode
	}
	sel.AppendNodes(n)
	return nil
}

func (p *Page) PlaceCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(fragmentSelector).Length()
}

// PlaceTitles returns the fragment headings in container order.
func (p *Page) PlaceTitles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	p.doc.Find(fragmentSelector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Find("h2").First().Text()))
	})
	return out
}

// Checkbox is one amenity option in the filters popover.
type Checkbox struct {
	ID      string
	Name    string
	Checked bool
}

// SetAmenityOptions replaces the popover list with one checkbox per amenity.
// Each checkbox posts its change to toggleURL.
func (p *Page) SetAmenityOptions(amenities []hbnb.Amenity, toggleURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ul := p.doc.Find(optionsSelector).First()
	if ul.Length() == 0 {
		return ErrMissingNode
	}
	ul.Empty()
	for _, a := range amenities {
		ul.AppendNodes(checkboxItem(a, toggleURL))
	}
	return nil
}

func checkboxItem(a hbnb.Amenity, toggleURL string) *html.Node {
	vals, _ := json.Marshal(map[string]string{"id": a.ID, "name": a.Name})
	input := Element("input",
		"type", "checkbox",
		"name", "checked",
		"value", "true",
		"data-id", a.ID,
		"data-name", a.Name,
		"hx-post", toggleURL,
		"hx-vals", string(vals),
		"hx-target", summaryHTMXTarget,
		"hx-swap", "outerHTML",
	)
	return Append(Element("li"), input, Text(" "+a.Name))
}

func (p *Page) Checkboxes() []Checkbox {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Checkbox
	p.doc.Find(checkboxSelector).Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		name, _ := s.Attr("data-name")
		_, checked := s.Attr("checked")
		out = append(out, Checkbox{ID: id, Name: name, Checked: checked})
	})
	return out
}

// SetChecked marks the checkbox carrying data-id == id.
func (p *Page) SetChecked(id string, checked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find(checkboxSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("data-id")
		return v == id
	}).Each(func(_ int, s *goquery.Selection) {
		if checked {
			s.SetAttr("checked", "checked")
		} else {
			s.RemoveAttr("checked")
		}
	})
}

// Render writes the whole document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return goquery.Render(w, p.doc.Selection)
}

// RenderPlaces writes only the fragments in the results container.
func (p *Page) RenderPlaces(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.doc.Find(fragmentSelector).Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// SummaryFragment renders the amenities heading on its own, for partial
// updates of the summary node.
func SummaryFragment(w io.Writer, summary string) error {
	return html.Render(w, Append(Element("h4"), Text(summary)))
}
