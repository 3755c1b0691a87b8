package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/applytrack/resume-parser/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	TempDir   string // scratch dir for spooled PDF bytes; "" -> system default
}

// Extractor implements TextExtractor for the two supported résumé formats.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on the inferred document format.
func (e *Extractor) Extract(ctx context.Context, data []byte, format constants.DocumentFormat) (TextResult, error) {
	start := time.Now()
	e.logger.Debug("starting text extraction", "format", format, "bytes", len(data))

	switch format {
	case constants.PDF:
		res, err := e.extractPDF(ctx, data)
		res.Duration = time.Since(start)
		return res, err
	case constants.DOCX:
		res, err := extractDOCX(data)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("unsupported document format", "format", format)
		return TextResult{}, fmt.Errorf("unsupported document format: %q", format)
	}
}
