// Package render turns place records into article fragments.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/dom"
)

const (
	// OwnerLoading is shown when the place carries no owner reference.
	OwnerLoading = "Loading"
	// OwnerUnknown is shown when the owner reference does not resolve.
	OwnerUnknown = "Unknown owner"

	untitled           = "Untitled place"
	unavailableDetails = "Listing details are unavailable."
)

// Layout selects the markup shape of a fragment.
type Layout int

const (
	// LayoutClassic places the title and price as direct children of the article.
	LayoutClassic Layout = iota
	// LayoutTitleBox wraps the title and price in div.title_box.
	LayoutTitleBox
)

func (l Layout) String() string {
	switch l {
	case LayoutTitleBox:
		return "title_box"
	default:
		return "classic"
	}
}

// ParseLayout maps a config value to a Layout. Unknown values are classic.
func ParseLayout(s string) Layout {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title_box", "titlebox", "title-box":
		return LayoutTitleBox
	default:
		return LayoutClassic
	}
}

// Target receives fragments as soon as they are built.
type Target interface {
	AppendPlace(n *html.Node) error
}

type Renderer struct {
	Layout Layout
	Target Target
}

// Render builds the fragment for place and appends it to the target.
func (r Renderer) Render(place hbnb.Place, owner *hbnb.User) (*html.Node, error) {
	n := r.Fragment(place, owner)
	return n, r.appendFragment(n)
}

// RenderInvalid appends the degraded fragment for a record that failed
// decoding or validation.
func (r Renderer) RenderInvalid(res hbnb.PlaceResult) (*html.Node, error) {
	n := r.Invalid(res)
	return n, r.appendFragment(n)
}

func (r Renderer) appendFragment(n *html.Node) error {
	if r.Target == nil {
		return errors.New("render: no target")
	}
	if err := r.Target.AppendPlace(n); err != nil {
		return fmt.Errorf("append fragment: %w", err)
	}
	return nil
}

// Fragment builds the article for place. owner may be nil.
func (r Renderer) Fragment(place hbnb.Place, owner *hbnb.User) *html.Node {
	article := dom.Element("article", "data-place-id", place.ID)
	title := dom.Append(dom.Element("h2"), dom.Text(place.Name))
	price := dom.Append(dom.Element("div", "class", "price_by_night"),
		dom.Append(dom.Element("p"), dom.Text(Price(place.PriceByNight))))

	if r.Layout == LayoutTitleBox {
		dom.Append(article, dom.Append(dom.Element("div", "class", "title_box"), title, price))
	} else {
		dom.Append(article, title, price)
	}

	info := dom.Append(dom.Element("div", "class", "information"),
		infoRow("max_guest", "guest_image", place.MaxGuest, "Guest"),
		infoRow("number_rooms", "bed_image", place.NumberRooms, "Bedroom"),
		infoRow("number_bathrooms", "bath_image", place.NumberBathrooms, "Bathroom"),
	)
	user := dom.Append(dom.Element("div", "class", "user"),
		dom.Append(dom.Element("p"),
			dom.Append(dom.Element("b"), dom.Text("Owner:")),
			dom.Text(" "+OwnerLine(place, owner)),
		))
	desc := dom.Append(dom.Element("div", "class", "description"), dom.Text(place.Description))

	return dom.Append(article, info, user, desc)
}

// Invalid builds a fragment that names the record and explains nothing else
// could be shown.
func (r Renderer) Invalid(res hbnb.PlaceResult) *html.Node {
	name := strings.TrimSpace(res.Place.Name)
	if name == "" {
		name = untitled
	}
	article := dom.Element("article", "class", "invalid", "data-place-id", res.Place.ID)
	title := dom.Append(dom.Element("h2"), dom.Text(name))
	if r.Layout == LayoutTitleBox {
		dom.Append(article, dom.Append(dom.Element("div", "class", "title_box"), title))
	} else {
		dom.Append(article, title)
	}
	return dom.Append(article, dom.Append(dom.Element("div", "class", "description"), dom.Text(unavailableDetails)))
}

func infoRow(class, imageClass string, count int, noun string) *html.Node {
	return dom.Append(dom.Element("div", "class", class),
		dom.Element("div", "class", imageClass),
		dom.Text(Count(count, noun)),
	)
}

// OwnerLine is the owner text for place given the resolved owner.
func OwnerLine(place hbnb.Place, owner *hbnb.User) string {
	if place.UserID == "" {
		return OwnerLoading
	}
	if owner == nil {
		return OwnerUnknown
	}
	name := owner.FullName()
	if name == "" {
		return OwnerUnknown
	}
	return name
}

// Price formats a nightly price as "$<n>".
func Price(n int) string { return "$" + strconv.Itoa(n) }

// Count formats n with noun, pluralized unless n is exactly 1.
func Count(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return strconv.Itoa(n) + " " + noun
}
