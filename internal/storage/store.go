package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ObjectStore downloads uploaded résumé files by their storage reference.
type ObjectStore interface {
	Download(ctx context.Context, ref string) ([]byte, error)
}

// ResolveRef validates and normalizes a stored source reference into an
// object path. References are either bare bucket paths ("<owner>/cv.pdf")
// or full URLs whose path is taken verbatim. Anything empty, absolute, or
// escaping the bucket root is rejected.
func ResolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty source reference")
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse reference URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported reference scheme %q", u.Scheme)
		}
		ref = strings.TrimPrefix(u.Path, "/")
		if ref == "" {
			return "", fmt.Errorf("reference URL has no object path")
		}
	}

	clean := path.Clean(ref)
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("reference %q escapes the bucket root", ref)
	}
	return clean, nil
}
