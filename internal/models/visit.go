package models

import "time"

// Visit is one unit of service ("výkon") delivered to a client.
type Visit struct {
	ID              int       `json:"id"`
	ClientID        int       `json:"client_id"`
	VisitDate       time.Time `json:"visit_date"`
	Subject         string    `json:"subject"`
	VisitType       string    `json:"visit_type"`
	Location        string    `json:"location"`
	Topic           string    `json:"topic"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
	WorkerID        *int      `json:"worker_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateVisitRequest represents the request body for logging a visit
type CreateVisitRequest struct {
	ClientID        int    `json:"client_id"`
	VisitDate       string `json:"visit_date"`
	Subject         string `json:"subject"`
	VisitType       string `json:"visit_type"`
	Location        string `json:"location"`
	Topic           string `json:"topic"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
}

// UpdateVisitRequest represents the request body for updating a visit
type UpdateVisitRequest struct {
	VisitDate       string `json:"visit_date"`
	Subject         string `json:"subject"`
	VisitType       string `json:"visit_type"`
	Location        string `json:"location"`
	Topic           string `json:"topic"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
}
