package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Profile represents a user profile for data transfer between layers.
// ParsedData and Skills are written by the parsing pipeline; the rest of the
// application reads them.
type Profile struct {
	ID           uuid.UUID       `json:"id"`
	FullName     string          `json:"full_name"`
	ResumePath   *string         `json:"resume_path,omitempty"`
	ParsedData   json.RawMessage `json:"parsed_data,omitempty"`
	Skills       []string        `json:"skills,omitempty"`
	ParsedAt     *time.Time      `json:"parsed_at,omitempty"`
	ParsingError *string         `json:"parsing_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
