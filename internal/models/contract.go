package models

import "time"

// Contract is a service agreement between the organization and a client.
type Contract struct {
	ID         int        `json:"id"`
	ClientID   int        `json:"client_id"`
	WorkerID   *int       `json:"worker_id"`
	Title      string     `json:"title"`
	SignedDate time.Time  `json:"signed_date"`
	ValidUntil *time.Time `json:"valid_until"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreateContractRequest represents the request body for creating a contract
type CreateContractRequest struct {
	ClientID   int    `json:"client_id"`
	Title      string `json:"title"`
	SignedDate string `json:"signed_date"`
	ValidUntil string `json:"valid_until,omitempty"`
	Notes      string `json:"notes"`
}
