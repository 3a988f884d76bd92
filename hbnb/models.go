package hbnb

import "strings"

// StatusOK is the payload value the API reports when it is up.
const StatusOK = "OK"

type Status struct {
	Status string `json:"status"`
}

// Available reports whether the status payload marks the API as up.
func (s Status) Available() bool { return s.Status == StatusOK }

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// FullName joins first and last name, dropping whichever is missing.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

type Amenity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Place struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	CityID          string  `json:"city_id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PriceByNight    int     `json:"price_by_night"`
	MaxGuest        int     `json:"max_guest"`
	NumberRooms     int     `json:"number_rooms"`
	NumberBathrooms int     `json:"number_bathrooms"`
	Latitude        float64 `json:"latitude,omitempty"`
	Longitude       float64 `json:"longitude,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// PlaceResult is one element of a places_search response. Err is set when the
// element could not be decoded or failed validation; Place then holds whatever
// fields were recoverable.
type PlaceResult struct {
	Place Place
	Err   error
}

// SearchFilter is the places_search request body.
type SearchFilter struct {
	States    []string `json:"states"`
	Cities    []string `json:"cities"`
	Amenities []string `json:"amenities"`
}

// EmptyFilter returns the filter with all three lists present and empty.
func EmptyFilter() *SearchFilter {
	return &SearchFilter{States: []string{}, Cities: []string{}, Amenities: []string{}}
}
