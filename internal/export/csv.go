package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// CSVRenderer renders tickets into RFC 4180 CSV with a fixed header row.
type CSVRenderer struct{}

// NewCSVRenderer constructs the renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Format names the rendered format for provenance logs.
func (r *CSVRenderer) Format() string { return "csv" }

// FileName builds a timestamped export file name.
func (r *CSVRenderer) FileName(now time.Time) string {
	return "tickets-" + now.UTC().Format("20060102-150405") + ".csv"
}

// Render produces the CSV document for the given tickets.
func (r *CSVRenderer) Render(tickets []domain.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "title", "category_id", "priority", "status",
		"submitted_by", "assigned_to", "tags",
		"created_at", "updated_at", "resolved_at", "closed_at",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range tickets {
		t := &tickets[i]
		row := []string{
			t.ID,
			t.Title,
			t.CategoryID,
			string(t.Priority),
			string(t.Status),
			t.SubmittedBy,
			stringOrEmpty(t.AssignedTo),
			strings.Join(t.Tags, ","),
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
			timeOrEmpty(t.ResolvedAt),
			timeOrEmpty(t.ClosedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
