package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/export"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

type exportFixture struct {
	svc     *ExportService
	tickets *fakeTicketRepo
	logs    *fakeExportLogRepo
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		tickets: newFakeTicketRepo(),
		logs:    &fakeExportLogRepo{},
	}
	f.svc = NewExportService(f.tickets, f.logs, export.NewCSVRenderer(), zap.NewNop())
	return f
}

func (f *exportFixture) seed(t *testing.T, n int, status domain.TicketStatus) {
	t.Helper()
	for i := 0; i < n; i++ {
		ticket := &domain.Ticket{
			Title:       fmt.Sprintf("Ticket %d", i),
			Description: "seeded",
			CategoryID:  "category-1",
			Priority:    domain.TicketPriorityMedium,
			Status:      status,
			SubmittedBy: "client-1",
		}
		require.NoError(t, f.tickets.Create(context.Background(), ticket))
	}
}

func TestExportCoversFullFilteredSet(t *testing.T) {
	f := newExportFixture()
	ctx := context.Background()

	// Well past any page-size default.
	f.seed(t, 45, domain.TicketStatusNew)

	result, err := f.svc.Export(ctx, supportActor, repository.TicketFilter{})
	require.NoError(t, err)

	assert.Equal(t, 45, result.Log.TicketCount)
	assert.Equal(t, domain.ExportStatusCompleted, result.Log.Status)
	// Header row plus one row per ticket.
	assert.Equal(t, 46, bytes.Count(result.Content, []byte("\n")))
}

func TestExportAppliesFilter(t *testing.T) {
	f := newExportFixture()
	ctx := context.Background()

	f.seed(t, 30, domain.TicketStatusNew)
	f.seed(t, 25, domain.TicketStatusResolved)

	result, err := f.svc.Export(ctx, supportActor, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusResolved},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, result.Log.TicketCount)
}

func TestExportIsStaffOnly(t *testing.T) {
	f := newExportFixture()

	_, err := f.svc.Export(context.Background(), clientActor, repository.TicketFilter{})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Empty(t, f.logs.logs, "rejected exports leave no provenance row")

	_, err = f.svc.History(context.Background(), clientActor, 10)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestExportHistoryListsOwnRuns(t *testing.T) {
	f := newExportFixture()
	ctx := context.Background()
	f.seed(t, 3, domain.TicketStatusNew)

	_, err := f.svc.Export(ctx, supportActor, repository.TicketFilter{})
	require.NoError(t, err)
	_, err = f.svc.Export(ctx, adminActor, repository.TicketFilter{})
	require.NoError(t, err)

	logs, err := f.svc.History(ctx, supportActor, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, supportActor.ID, logs[0].RequestedBy)
}
