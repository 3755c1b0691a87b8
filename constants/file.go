package constants

import "strings"

// DocumentFormat holds the allowed document types for résumé files.
type DocumentFormat string

const (
	PDF  DocumentFormat = "PDF"
	DOCX DocumentFormat = "DOCX"
)

// AllowedExtensions holds the file extensions accepted for résumé uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the document format for a (normalized or raw)
// extension, or "" when the extension is not supported.
func MapExtToFormat(ext string) DocumentFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	}
	return ""
}
