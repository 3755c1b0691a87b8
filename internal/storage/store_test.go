package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRef(t *testing.T) {
	valid := map[string]string{
		"owner-1/cv.pdf":                                   "owner-1/cv.pdf",
		"  owner-1/cv.pdf ":                                "owner-1/cv.pdf",
		"a/b/../cv.docx":                                   "a/cv.docx",
		"https://store.example.com/resumes/owner-1/cv.pdf": "resumes/owner-1/cv.pdf",
	}
	for in, want := range valid {
		got, err := ResolveRef(in)
		if err != nil {
			t.Errorf("ResolveRef(%q): unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ResolveRef(%q) = %q, want %q", in, got, want)
		}
	}

	invalid := []string{
		"",
		"   ",
		"../etc/passwd",
		"a/../../etc/passwd",
		"ftp://host/cv.pdf",
		"https://store.example.com/",
	}
	for _, in := range invalid {
		if _, err := ResolveRef(in); err == nil {
			t.Errorf("ResolveRef(%q): expected error", in)
		}
	}
}

func TestBucketStoreDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/object/resumes/owner-1/cv.pdf":
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte("%PDF-1.4 fake"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewBucketStore(BucketConfig{BaseURL: srv.URL, APIKey: "secret", Bucket: "resumes"}, nil)

	data, err := store.Download(context.Background(), "owner-1/cv.pdf")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("unexpected body %q", data)
	}

	if _, err := store.Download(context.Background(), "owner-1/missing.pdf"); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestFSStoreDownload(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "owner-1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "owner-1", "cv.pdf"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFSStore(dir)
	data, err := store.Download(context.Background(), "owner-1/cv.pdf")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected body %q", data)
	}

	if _, err := store.Download(context.Background(), "owner-1/other.pdf"); err == nil {
		t.Error("expected error for missing file")
	}
}
