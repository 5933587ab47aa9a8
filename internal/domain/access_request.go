package domain

import "time"

// AccessRequest records a visitor asking for an extended-access passcode.
type AccessRequest struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	VisitorID  string    `json:"visitor_id"`
	SessionKey string    `json:"session_key"`
	PersonaID  string    `json:"persona_id"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"created_at"`
}

// FetchFailurePrefix marks a job-posting fetch that failed. Text carrying
// this prefix is a diagnostic, never job content.
const FetchFailurePrefix = "[Could not fetch URL:"
