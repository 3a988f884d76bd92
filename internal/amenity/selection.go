package amenity

import (
	"encoding/json"
	"strings"
)

// Blank is shown instead of an empty summary so the heading keeps its height.
const Blank = "\u00a0"

// Entry is one checked amenity.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selection is the set of checked amenities, kept in insertion order.
// The zero value is ready to use.
type Selection struct {
	order []string
	names map[string]string
}

// Toggle inserts id when checked and removes it otherwise. Checking an id
// that is already present only refreshes its name.
func (s *Selection) Toggle(id, name string, checked bool) {
	if checked {
		s.add(id, name)
		return
	}
	s.remove(id)
}

func (s *Selection) add(id, name string) {
	if s.names == nil {
		s.names = make(map[string]string)
	}
	if _, ok := s.names[id]; !ok {
		s.order = append(s.order, id)
	}
	s.names[id] = name
}

func (s *Selection) remove(id string) {
	if _, ok := s.names[id]; !ok {
		return
	}
	delete(s.names, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Selection) Has(id string) bool {
	_, ok := s.names[id]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

func (s *Selection) IDs() []string { return append([]string(nil), s.order...) }

func (s *Selection) Names() []string {
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.names[id])
	}
	return out
}

func (s *Selection) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{ID: id, Name: s.names[id]})
	}
	return out
}

// Summary joins the checked names with ", ", or returns Blank when nothing
// is checked.
func (s *Selection) Summary() string {
	joined := strings.Join(s.Names(), ", ")
	if joined == "" {
		return Blank
	}
	return joined
}

func (s *Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	*s = Selection{}
	for _, e := range entries {
		s.add(e.ID, e.Name)
	}
	return nil
}

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection {
	out := &Selection{}
	for _, e := range s.Entries() {
		out.add(e.ID, e.Name)
	}
	return out
}
