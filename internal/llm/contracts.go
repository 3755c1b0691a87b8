package llm

import (
	"context"

	"github.com/google/uuid"
)

// ExperienceEntry is one position in the work history.
type ExperienceEntry struct {
	Title     string `json:"title"`
	Company   string `json:"company,omitempty"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM
	EndDate   string `json:"end_date,omitempty"`   // YYYY-MM or "present"
	Summary   string `json:"summary,omitempty"`
}

// EducationEntry is one school/degree in the education history.
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	EndYear     string `json:"end_year,omitempty"` // YYYY
}

// ResumeFields is the normalized shape we want from the model.
type ResumeFields struct {
	FullName        string            `json:"full_name,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Location        string            `json:"location,omitempty"`
	Headline        string            `json:"headline,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	Skills          []string          `json:"skills"`
	Experience      []ExperienceEntry `json:"experience,omitempty"`
	Education       []EducationEntry  `json:"education,omitempty"`
	Languages       []string          `json:"languages,omitempty"`
	ModelConfidence float32           `json:"confidence,omitempty"` // optional (0..1)
}

type ParseRequest struct {
	Text         string
	OwnerID      uuid.UUID
	FilenameHint string
}

// ResumeParser is the interface the pipeline depends on.
type ResumeParser interface {
	ParseResume(ctx context.Context, req ParseRequest) (ResumeFields, []byte /*rawJSON*/, error)
}
