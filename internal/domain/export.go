package domain

import "time"

// ExportStatus tracks the lifecycle of one export run.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportLog is the provenance record for a rendered export. It lives
// outside the ticket audit trail.
type ExportLog struct {
	ID          string
	RequestedBy string
	Format      string
	Status      ExportStatus
	FileName    string
	SizeBytes   int64
	TicketCount int
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
