package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// extractPDF spools the bytes to a temp file and runs pdftotext over it.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (TextResult, error) {
	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "rp-pdf-*")
	if err != nil {
		return TextResult{}, err
	}
	defer func(dir string) {
		if rerr := os.RemoveAll(dir); rerr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", rerr)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "resume.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return TextResult{}, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", in, "-")
	if err != nil {
		return TextResult{Warnings: []string{string(errb)}}, fmt.Errorf("pdftotext: %w", err)
	}

	text := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(text, "\f")
	return TextResult{Text: text, Pages: pages, Method: "pdf-text"}, nil
}
