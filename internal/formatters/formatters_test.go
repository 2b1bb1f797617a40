package formatters

import (
	"strings"
	"testing"

	"talentlens/internal/types"
)

func sampleRecords() []*types.CandidateRecord {
	score := 82
	flagged := true
	return []*types.CandidateRecord{
		{
			ID:       "rec-1",
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Role:     "Backend Engineer at Initech",
			FitScore: &score,
		},
		{
			ID:      "rec-2",
			Name:    "John Smith",
			Email:   "john@example.com",
			Flagged: &flagged,
		},
	}
}

func TestRecordListFormatsInEveryOutputFormat(t *testing.T) {
	records := sampleRecords()

	for _, format := range []string{"json", "text", "markdown"} {
		t.Run(format, func(t *testing.T) {
			output, err := GlobalRegistry.Format(records, format)
			if err != nil {
				t.Fatalf("Format(%s) error = %v", format, err)
			}
			if !strings.Contains(output, "Jane Doe") || !strings.Contains(output, "John Smith") {
				t.Errorf("Format(%s) output missing record names:\n%s", format, output)
			}
		})
	}
}

func TestRecordListTextFormatter(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleRecords(), "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(output, "CANDIDATE RECORDS (2)") {
		t.Errorf("expected record count header, got:\n%s", output)
	}
	if !strings.Contains(output, "fit 82/100") {
		t.Errorf("expected fit score in listing, got:\n%s", output)
	}
	if !strings.Contains(output, "FLAGGED") {
		t.Errorf("expected flagged marker in listing, got:\n%s", output)
	}
}

func TestRecordListMarkdownFormatter(t *testing.T) {
	output, err := GlobalRegistry.Format(sampleRecords(), "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(output, "| ID | Name | Email |") {
		t.Errorf("expected table header, got:\n%s", output)
	}
	if !strings.Contains(output, "| rec-1 | Jane Doe |") {
		t.Errorf("expected record row, got:\n%s", output)
	}
}

func TestSingleRecordFormatsAsTextAndMarkdown(t *testing.T) {
	record := sampleRecords()[0]
	record.ResumeTextContent = "Name: Jane Doe"

	for _, format := range []string{"text", "markdown"} {
		output, err := GlobalRegistry.Format(record, format)
		if err != nil {
			t.Fatalf("Format(%s) error = %v", format, err)
		}
		if !strings.Contains(output, "Jane Doe") {
			t.Errorf("Format(%s) output missing record name:\n%s", format, output)
		}
	}
}
