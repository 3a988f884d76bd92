package hbnb

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexString accepts a JSON string or number and keeps its text. null is "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// flexInt accepts an integral JSON number or a numeric string. null is 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	text := strings.TrimSpace(string(s))
	if text == "" {
		*n = 0
		return nil
	}
	if i, err := strconv.Atoi(text); err == nil {
		*n = flexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("not an integer: %q", text)
	}
	*n = flexInt(f)
	return nil
}

// flexFloat accepts a JSON number or a numeric string. null and "" are 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	text := strings.TrimSpace(string(s))
	if text == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", text)
	}
	*f = flexFloat(v)
	return nil
}

type wirePlace struct {
	ID              flexString `json:"id"`
	UserID          flexString `json:"user_id"`
	CityID          flexString `json:"city_id"`
	Name            flexString `json:"name"`
	Description     flexString `json:"description"`
	PriceByNight    flexInt    `json:"price_by_night"`
	MaxGuest        flexInt    `json:"max_guest"`
	NumberRooms     flexInt    `json:"number_rooms"`
	NumberBathrooms flexInt    `json:"number_bathrooms"`
	Latitude        flexFloat  `json:"latitude"`
	Longitude       flexFloat  `json:"longitude"`
	CreatedAt       flexString `json:"created_at"`
	UpdatedAt       flexString `json:"updated_at"`
}

func (w wirePlace) place() Place {
	p := Place{
		ID:              strings.TrimSpace(string(w.ID)),
		UserID:          strings.TrimSpace(string(w.UserID)),
		CityID:          string(w.CityID),
		Name:            string(w.Name),
		Description:     string(w.Description),
		PriceByNight:    int(w.PriceByNight),
		MaxGuest:        int(w.MaxGuest),
		NumberRooms:     int(w.NumberRooms),
		NumberBathrooms: int(w.NumberBathrooms),
		Latitude:        float64(w.Latitude),
		Longitude:       float64(w.Longitude),
		CreatedAt:       string(w.CreatedAt),
		UpdatedAt:       string(w.UpdatedAt),
	}
	return p
}

type wireUser struct {
	ID        flexString `json:"id"`
	Email     flexString `json:"email"`
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	CreatedAt flexString `json:"created_at"`
	UpdatedAt flexString `json:"updated_at"`
}

// DecodeUsers maps a users payload element by element. Records that cannot
// be decoded or carry no id are left out and reported in skipped; their
// places then render as join misses.
func DecodeUsers(raw []byte) (users []User, skipped []error, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, fmt.Errorf("decode users: %w", err)
	}
	users = make([]User, 0, len(items))
	for i, item := range items {
		var w wireUser
		if err := json.Unmarshal(item, &w); err != nil {
			skipped = append(skipped, fmt.Errorf("user element %d: %w", i, err))
			continue
		}
		id := strings.TrimSpace(string(w.ID))
		if id == "" {
			skipped = append(skipped, fmt.Errorf("user element %d: missing id", i))
			continue
		}
		users = append(users, User{
			ID:        id,
			Email:     string(w.Email),
			FirstName: string(w.FirstName),
			LastName:  string(w.LastName),
			CreatedAt: string(w.CreatedAt),
			UpdatedAt: string(w.UpdatedAt),
		})
	}
	return users, skipped, nil
}

// DecodePlaces maps a places_search payload. Only a payload that is not a JSON
// array fails as a whole; each element is decoded and validated on its own.
func DecodePlaces(raw []byte) ([]PlaceResult, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	out := make([]PlaceResult, 0, len(items))
	for i, item := range items {
		out = append(out, decodePlace(i, item))
	}
	return out, nil
}

func decodePlace(idx int, item json.RawMessage) PlaceResult {
	var w wirePlace
	if err := json.Unmarshal(item, &w); err != nil {
		// salvage what identifies the record so the degraded fragment can name it
		var ident struct {
			ID   flexString `json:"id"`
			Name flexString `json:"name"`
		}
		_ = json.Unmarshal(item, &ident)
		return PlaceResult{
			Place: Place{ID: string(ident.ID), Name: string(ident.Name)},
			Err:   fmt.Errorf("%w: element %d: %v", ErrMalformedPlace, idx, err),
		}
	}
	p := w.place()
	if err := ValidatePlace(p); err != nil {
		return PlaceResult{Place: p, Err: fmt.Errorf("element %d: %w", idx, err)}
	}
	return PlaceResult{Place: p}
}

// ValidatePlace checks the fields the renderer formats.
func ValidatePlace(p Place) error {
	var problems []string
	if p.ID == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "missing name")
	}
	if p.PriceByNight < 0 {
		problems = append(problems, "negative price_by_night")
	}
	if p.MaxGuest < 0 || p.NumberRooms < 0 || p.NumberBathrooms < 0 {
		problems = append(problems, "negative count")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMalformedPlace, strings.Join(problems, ", "))
}

// IsMalformed reports whether err marks a single bad place record.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformedPlace) }
