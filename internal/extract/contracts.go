package extract

import (
	"context"
	"time"

	"github.com/applytrack/resume-parser/constants"
)

// TextExtractor turns résumé file bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, format constants.DocumentFormat) (TextResult, error)
}

type TextResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "docx-xml"
	Duration time.Duration
	Warnings []string
}
