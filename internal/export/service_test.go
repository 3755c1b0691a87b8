package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/entity"
)

type listStub struct {
	jobs    []*entity.ParsingJob
	err     error
	gotFrom *time.Time
	gotTo   *time.Time
}

func (s *listStub) ListByOwner(_ context.Context, _ uuid.UUID, from, to *time.Time) ([]*entity.ParsingJob, error) {
	s.gotFrom, s.gotTo = from, to
	return s.jobs, s.err
}

func (s *listStub) CreateIfIdle(context.Context, uuid.UUID, string) (*entity.ParsingJob, error) {
	return nil, errors.New("not used")
}
func (s *listStub) GetByID(context.Context, uuid.UUID) (*entity.ParsingJob, error) {
	return nil, errors.New("not used")
}
func (s *listStub) MarkProcessing(context.Context, uuid.UUID) (*entity.ParsingJob, error) {
	return nil, errors.New("not used")
}
func (s *listStub) MarkCompleted(context.Context, uuid.UUID) error      { return errors.New("not used") }
func (s *listStub) MarkFailed(context.Context, uuid.UUID, string) error { return errors.New("not used") }
func (s *listStub) ListResumable(context.Context, time.Duration) ([]*entity.ParsingJob, error) {
	return nil, nil
}

func TestExportJobsXLSX(t *testing.T) {
	now := time.Now().UTC()
	msg := "failed to download resume file: bucket unreachable"
	stub := &listStub{jobs: []*entity.ParsingJob{
		{
			ID:        uuid.New(),
			OwnerID:   uuid.New(),
			SourceRef: "uploads/resume.pdf",
			Status:    constants.JobStatusCompleted,
			CreatedAt: now.Add(-time.Hour),
			StartedAt: &now,
		},
		{
			ID:           uuid.New(),
			OwnerID:      uuid.New(),
			SourceRef:    "uploads/old.docx",
			Status:       constants.JobStatusFailed,
			ErrorMessage: &msg,
			CreatedAt:    now.Add(-2 * time.Hour),
		},
	}}
	svc := NewService(stub, nil)

	data, err := svc.ExportJobsXLSX(context.Background(), uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows("Parsing Jobs")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Job ID" || rows[0][6] != "Error" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][1] != "completed" || rows[1][2] != "uploads/resume.pdf" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][1] != "failed" || rows[2][6] != msg {
		t.Errorf("second data row = %v", rows[2])
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := truncate(long, 140)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 140 {
		t.Errorf("rune count = %d, want 140", n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated string must end with ellipsis: %q", got)
	}
	if short := truncate("plain ascii", 140); short != "plain ascii" {
		t.Errorf("short string changed: %q", short)
	}
}

func TestExportNormalizesOpenEndedWindow(t *testing.T) {
	stub := &listStub{}
	svc := NewService(stub, nil)
	from := time.Date(2026, 3, 10, 15, 30, 0, 0, time.Local)

	if _, err := svc.ExportJobsXLSX(context.Background(), uuid.New(), &from, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	if stub.gotFrom == nil || !stub.gotFrom.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, want date-only UTC", stub.gotFrom)
	}
	if stub.gotTo == nil {
		t.Error("open-ended from must fill to with today")
	}
}
