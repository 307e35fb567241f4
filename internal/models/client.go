package models

import "time"

// Client is one physical person known to the organization. Duplicate rows
// for the same person can be created through the API or bulk imports; the
// dedupe engine reconciles them asynchronously.
type Client struct {
	ID               int        `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	CehupoID         *int       `json:"cehupo_id"`
	Email            *string    `json:"email"`
	Phone            string     `json:"phone"`
	Street           string     `json:"street"`
	City             string     `json:"city"`
	Zip              string     `json:"zip"`
	VisaType         *string    `json:"visa_type"`
	ArrivalDate      *time.Time `json:"arrival_date"`
	RegistrationDate *time.Time `json:"registration_date"`
	// Latitude/Longitude are nil while unresolved; the pair (0,0) marks a
	// record whose address could not be geocoded by any variant.
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCoordinates reports whether the client has a real resolved position
// (set and not the failed-resolution sentinel).
func (c *Client) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil &&
		!(*c.Latitude == 0 && *c.Longitude == 0)
}

// CreateClientRequest represents the request body for creating a client
type CreateClientRequest struct {
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	CehupoID         *int    `json:"cehupo_id"`
	Email            *string `json:"email"`
	Phone            string  `json:"phone"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	Zip              string  `json:"zip"`
	VisaType         *string `json:"visa_type"`
	ArrivalDate      *string `json:"arrival_date"`
	RegistrationDate *string `json:"registration_date"`
}

// UpdateClientRequest represents the request body for updating a client
type UpdateClientRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	CehupoID  *int    `json:"cehupo_id"`
	Email     *string `json:"email"`
	Phone     string  `json:"phone"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	Zip       string  `json:"zip"`
	VisaType  *string `json:"visa_type"`
}
