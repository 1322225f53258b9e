package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tempo/internal/absence"
	"tempo/internal/aggregate"
	"tempo/internal/approval"
	"tempo/internal/eventlog"
	"tempo/internal/worklog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/requestcontext"
	"tempo/pkg/testutil"
)

// TestMonthLifecycle walks one member-month through its whole approval cycle:
// submit, reject, fix, resubmit, approve, frozen forever.
func TestMonthLifecycle(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	events := eventlog.NewInMemory()
	engine := aggregate.NewEngine(events, nil)
	entries := worklog.NewService(engine)
	absences := absence.NewService(engine)
	workflow := approval.NewWorkflow(engine)

	tenantID := id.TenantID(uuid.New())
	memberID := id.MemberID(uuid.New())
	reviewerID := id.MemberID(uuid.New())
	month, err := id.ParseMonth("2026-03")
	require.NoError(t, err)
	approvalID := approval.ApprovalIDFor(memberID, month)

	var entryA, entryB id.EntryID
	var dayOff id.AbsenceID

	entryStatus := func(t *testing.T, entryID id.EntryID) aggregate.Status {
		entry, _, err := entries.Get(ctx, entryID)
		require.NoError(t, err)
		return entry.Status()
	}

	testutil.Given(t, "a member with two draft entries and a draft absence", func(t *testing.T) {
		entryA, _, err = entries.Create(ctx, worklog.CreateEntryInput{
			TenantID: tenantID, MemberID: memberID, Project: "atlas", Date: "2026-03-02", Hours: 8,
		})
		require.NoError(t, err)
		entryB, _, err = entries.Create(ctx, worklog.CreateEntryInput{
			TenantID: tenantID, MemberID: memberID, Project: "atlas", Date: "2026-03-03", Hours: 6,
		})
		require.NoError(t, err)
		dayOff, _, err = absences.Create(ctx, absence.CreateAbsenceInput{
			TenantID: tenantID, MemberID: memberID, Type: absence.TypeDayOff,
			StartDate: "2026-03-09", EndDate: "2026-03-09",
		})
		require.NoError(t, err)
	})

	submit := func() (int64, error) {
		return workflow.Submit(ctx, approval.SubmitMonthInput{
			TenantID:   tenantID,
			MemberID:   memberID,
			Month:      month,
			EntryIDs:   []id.EntryID{entryA, entryB},
			AbsenceIDs: []id.AbsenceID{dayOff},
		})
	}

	testutil.When(t, "the member submits the month", func(t *testing.T) {
		version, err := submit()
		require.NoError(t, err)
		require.Equal(t, int64(1), version)
	})

	testutil.Then(t, "every participant is submitted and read-only", func(t *testing.T) {
		require.Equal(t, aggregate.StatusSubmitted, entryStatus(t, entryA))
		require.Equal(t, aggregate.StatusSubmitted, entryStatus(t, entryB))

		_, err := entries.Edit(ctx, entryA, worklog.EditEntryInput{Project: "atlas", Date: "2026-03-02", Hours: 1})
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotEditable))
		_, err = absences.Delete(ctx, dayOff)
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotEditable))
	})

	testutil.When(t, "the manager rejects the month", func(t *testing.T) {
		version, err := workflow.Reject(ctx, approvalID, reviewerID)
		require.NoError(t, err)
		require.Equal(t, int64(2), version)
	})

	testutil.Then(t, "the children are editable drafts again", func(t *testing.T) {
		require.Equal(t, aggregate.StatusDraft, entryStatus(t, entryA))

		_, err := entries.Edit(ctx, entryA, worklog.EditEntryInput{Project: "atlas", Date: "2026-03-02", Hours: 7})
		require.NoError(t, err)

		parent, _, err := workflow.Get(ctx, approvalID)
		require.NoError(t, err)
		require.Equal(t, aggregate.StatusRejected, parent.Status())
		require.Equal(t, reviewerID, parent.ReviewedBy)
	})

	testutil.When(t, "the member resubmits and the manager approves", func(t *testing.T) {
		_, err := submit()
		require.NoError(t, err)

		version, err := workflow.Approve(ctx, approvalID, reviewerID)
		require.NoError(t, err)
		require.Equal(t, int64(4), version)
	})

	testutil.Then(t, "the month is terminally locked", func(t *testing.T) {
		require.Equal(t, aggregate.StatusApproved, entryStatus(t, entryA))
		require.Equal(t, aggregate.StatusApproved, entryStatus(t, entryB))

		_, err := entries.Edit(ctx, entryA, worklog.EditEntryInput{Project: "atlas", Date: "2026-03-02", Hours: 2})
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotEditable))
		_, err = entries.Delete(ctx, entryB)
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotEditable))

		_, err = workflow.Reject(ctx, approvalID, reviewerID)
		require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		_, err = submit()
		require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}
