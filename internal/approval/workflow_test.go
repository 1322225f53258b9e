package approval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tempo/internal/absence"
	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	"tempo/internal/worklog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/sentinel"
	"tempo/pkg/requestcontext"
)

// parentFailStore fails appends to the monthly approval stream a configured
// number of times, to force the cascade into its compensation path.
type parentFailStore struct {
	*eventlog.InMemory
	failures int
	conflict bool
}

func (s *parentFailStore) Append(ctx context.Context, aggregateID string, aggregateType eventlog.AggregateType, expectedVersion int64, events []eventlog.Event) (int64, error) {
	if aggregateType == eventlog.AggregateMonthlyApproval && s.failures > 0 {
		s.failures--
		if s.conflict {
			return 0, sentinel.ErrVersionConflict
		}
		return 0, fmt.Errorf("disk on fire")
	}
	return s.InMemory.Append(ctx, aggregateID, aggregateType, expectedVersion, events)
}

type WorkflowSuite struct {
	suite.Suite
	events   *eventlog.InMemory
	engine   *aggregate.Engine
	worklog  *worklog.Service
	absences *absence.Service
	workflow *Workflow
	ctx      context.Context

	tenantID id.TenantID
	memberID id.MemberID
	month    id.Month
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.events = eventlog.NewInMemory()
	s.engine = aggregate.NewEngine(s.events, nil)
	s.worklog = worklog.NewService(s.engine)
	s.absences = absence.NewService(s.engine)
	s.workflow = NewWorkflow(s.engine)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))

	s.tenantID = id.TenantID(uuid.New())
	s.memberID = id.MemberID(uuid.New())
	var err error
	s.month, err = id.ParseMonth("2026-03")
	s.Require().NoError(err)
}

// freshMember isolates a subtest: the approval id derives from the member,
// so a new member means a pristine monthly approval stream.
func (s *WorkflowSuite) freshMember() {
	s.memberID = id.MemberID(uuid.New())
}

func (s *WorkflowSuite) createEntry(date string) id.EntryID {
	entryID, _, err := s.worklog.Create(s.ctx, worklog.CreateEntryInput{
		TenantID: s.tenantID,
		MemberID: s.memberID,
		Project:  "atlas",
		Date:     date,
		Hours:    8,
	})
	s.Require().NoError(err)
	return entryID
}

func (s *WorkflowSuite) createAbsence(start, end string) id.AbsenceID {
	absenceID, _, err := s.absences.Create(s.ctx, absence.CreateAbsenceInput{
		TenantID:  s.tenantID,
		MemberID:  s.memberID,
		Type:      absence.TypeVacation,
		StartDate: start,
		EndDate:   end,
	})
	s.Require().NoError(err)
	return absenceID
}

func (s *WorkflowSuite) submitInput(entryIDs []id.EntryID, absenceIDs []id.AbsenceID) SubmitMonthInput {
	return SubmitMonthInput{
		TenantID:   s.tenantID,
		MemberID:   s.memberID,
		Month:      s.month,
		EntryIDs:   entryIDs,
		AbsenceIDs: absenceIDs,
	}
}

func (s *WorkflowSuite) entryStatus(entryID id.EntryID) aggregate.Status {
	entry := &worklog.Entry{}
	_, err := s.engine.Rehydrate(s.ctx, entryID.String(), entry)
	s.Require().NoError(err)
	return entry.Status()
}

func (s *WorkflowSuite) absenceStatus(absenceID id.AbsenceID) aggregate.Status {
	item := &absence.Absence{}
	_, err := s.engine.Rehydrate(s.ctx, absenceID.String(), item)
	s.Require().NoError(err)
	return item.Status()
}

func (s *WorkflowSuite) TestSubmit() {
	s.Run("moves every child and the parent to submitted", func() {
		entryA := s.createEntry("2026-03-02")
		entryB := s.createEntry("2026-03-03")
		absenceID := s.createAbsence("2026-03-09", "2026-03-10")

		version, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryA, entryB}, []id.AbsenceID{absenceID}))
		s.Require().NoError(err)
		s.Equal(int64(1), version)

		s.Equal(aggregate.StatusSubmitted, s.entryStatus(entryA))
		s.Equal(aggregate.StatusSubmitted, s.entryStatus(entryB))
		s.Equal(aggregate.StatusSubmitted, s.absenceStatus(absenceID))

		parent, _, err := s.workflow.Get(s.ctx, ApprovalIDFor(s.memberID, s.month))
		s.Require().NoError(err)
		s.Equal(aggregate.StatusSubmitted, parent.Status())
		s.Equal([]id.EntryID{entryA, entryB}, parent.EntryIDs)
		s.Equal([]id.AbsenceID{absenceID}, parent.AbsenceIDs)
		s.Equal(s.memberID, parent.SubmittedBy)
	})

	s.Run("deduplicates the membership", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")

		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID, entryID}, nil))
		s.Require().NoError(err)

		parent, _, err := s.workflow.Get(s.ctx, ApprovalIDFor(s.memberID, s.month))
		s.Require().NoError(err)
		s.Equal([]id.EntryID{entryID}, parent.EntryIDs)

		head, err := s.events.StreamVersion(s.ctx, entryID.String())
		s.Require().NoError(err)
		s.Equal(int64(2), head) // created + submitted, not submitted twice
	})

	s.Run("requires at least one child", func() {
		_, err := s.workflow.Submit(s.ctx, s.submitInput(nil, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects a foreign member's entry without touching any stream", func() {
		s.freshMember()
		mine := s.createEntry("2026-03-02")

		owner := s.memberID
		s.freshMember()
		foreign := s.createEntry("2026-03-02")
		s.memberID = owner

		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{mine, foreign}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		s.Equal(aggregate.StatusDraft, s.entryStatus(mine))
		head, err := s.events.StreamVersion(s.ctx, ApprovalIDFor(s.memberID, s.month).String())
		s.Require().NoError(err)
		s.Equal(int64(0), head)
	})

	s.Run("rejects an entry outside the submitted month", func() {
		s.freshMember()
		inMonth := s.createEntry("2026-03-02")
		outside := s.createEntry("2026-04-02")

		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{inMonth, outside}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal(aggregate.StatusDraft, s.entryStatus(inMonth))
	})

	s.Run("a non-draft child blocks the whole submission", func() {
		s.freshMember()
		clean := s.createEntry("2026-03-02")
		tainted := s.createEntry("2026-03-03")

		event, err := eventlog.NewEvent(tainted.String(), eventlog.AggregateWorkLogEntry,
			worklog.EventEntrySubmitted, requestcontext.Now(s.ctx),
			worklog.TransitionPayload{Actor: s.memberID})
		s.Require().NoError(err)
		_, err = s.events.Append(s.ctx, tainted.String(), eventlog.AggregateWorkLogEntry, 1, []eventlog.Event{event})
		s.Require().NoError(err)

		_, err = s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{clean, tainted}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal(aggregate.StatusDraft, s.entryStatus(clean))
	})

	s.Run("missing child is not found", func() {
		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{id.EntryID(uuid.New())}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deleted child is not found", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")
		_, err := s.worklog.Delete(s.ctx, entryID)
		s.Require().NoError(err)

		_, err = s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *WorkflowSuite) TestApprove() {
	s.Run("cascades over the recorded membership", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")
		absenceID := s.createAbsence("2026-03-09", "2026-03-10")
		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, []id.AbsenceID{absenceID}))
		s.Require().NoError(err)

		reviewer := id.MemberID(uuid.New())
		approvalID := ApprovalIDFor(s.memberID, s.month)
		version, err := s.workflow.Approve(s.ctx, approvalID, reviewer)
		s.Require().NoError(err)
		s.Equal(int64(2), version)

		s.Equal(aggregate.StatusApproved, s.entryStatus(entryID))
		s.Equal(aggregate.StatusApproved, s.absenceStatus(absenceID))

		parent, _, err := s.workflow.Get(s.ctx, approvalID)
		s.Require().NoError(err)
		s.Equal(aggregate.StatusApproved, parent.Status())
		s.Equal(reviewer, parent.ReviewedBy)
	})

	s.Run("approved months are terminal", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")
		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().NoError(err)

		approvalID := ApprovalIDFor(s.memberID, s.month)
		_, err = s.workflow.Approve(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().NoError(err)

		_, err = s.workflow.Approve(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		_, err = s.workflow.Reject(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		// approved children are frozen too
		_, err = s.worklog.Edit(s.ctx, entryID, worklog.EditEntryInput{Project: "atlas", Date: "2026-03-02", Hours: 1})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEditable))
	})

	s.Run("unknown approval is not found", func() {
		_, err := s.workflow.Approve(s.ctx, id.ApprovalID(uuid.New()), id.MemberID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("approving an unsubmitted month is an invalid transition", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")
		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().NoError(err)

		approvalID := ApprovalIDFor(s.memberID, s.month)
		_, err = s.workflow.Reject(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().NoError(err)

		// REJECTED allows resubmission but not direct approval
		_, err = s.workflow.Approve(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *WorkflowSuite) TestReject() {
	s.Run("returns children to editable draft", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")
		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().NoError(err)

		approvalID := ApprovalIDFor(s.memberID, s.month)
		_, err = s.workflow.Reject(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().NoError(err)

		s.Equal(aggregate.StatusDraft, s.entryStatus(entryID))
		parent, _, err := s.workflow.Get(s.ctx, approvalID)
		s.Require().NoError(err)
		s.Equal(aggregate.StatusRejected, parent.Status())

		_, err = s.worklog.Edit(s.ctx, entryID, worklog.EditEntryInput{Project: "atlas", Date: "2026-03-02", Hours: 6})
		s.Require().NoError(err)
	})

	s.Run("a rejected month can be resubmitted", func() {
		s.freshMember()
		entryID := s.createEntry("2026-03-02")
		approvalID := ApprovalIDFor(s.memberID, s.month)

		_, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().NoError(err)
		_, err = s.workflow.Reject(s.ctx, approvalID, id.MemberID(uuid.New()))
		s.Require().NoError(err)

		version, err := s.workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().NoError(err)
		s.Equal(int64(3), version)

		parent, _, err := s.workflow.Get(s.ctx, approvalID)
		s.Require().NoError(err)
		s.Equal(aggregate.StatusSubmitted, parent.Status())
		s.True(parent.ReviewedAt.IsZero()) // resubmission opens a fresh review
	})
}

func (s *WorkflowSuite) TestCompensation() {
	s.Run("mid-cascade failure reverts already-written children", func() {
		s.freshMember()
		store := &parentFailStore{InMemory: s.events, failures: 10}
		engine := aggregate.NewEngine(store, nil)
		workflow := NewWorkflow(engine)

		entryID := s.createEntry("2026-03-02")
		absenceID := s.createAbsence("2026-03-09", "2026-03-10")

		_, err := workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, []id.AbsenceID{absenceID}))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWorkflowFailed))

		// children carry submit + revert facts and are back in draft
		s.Equal(aggregate.StatusDraft, s.entryStatus(entryID))
		s.Equal(aggregate.StatusDraft, s.absenceStatus(absenceID))

		events, err := s.events.ReadStream(s.ctx, entryID.String(), 0)
		s.Require().NoError(err)
		s.Require().Len(events, 3)
		s.Equal(worklog.EventEntrySubmitted, events[1].Type)
		s.Equal(worklog.EventEntryCascadeReverted, events[2].Type)

		// the parent stream never came to exist
		head, err := s.events.StreamVersion(s.ctx, ApprovalIDFor(s.memberID, s.month).String())
		s.Require().NoError(err)
		s.Equal(int64(0), head)

		// children are editable again after compensation
		_, err = s.worklog.Edit(s.ctx, entryID, worklog.EditEntryInput{Project: "atlas", Date: "2026-03-02", Hours: 2})
		s.Require().NoError(err)
	})

	s.Run("whole cascade retries after a participant conflict", func() {
		s.freshMember()
		store := &parentFailStore{InMemory: s.events, failures: 1, conflict: true}
		engine := aggregate.NewEngine(store, nil)
		workflow := NewWorkflow(engine, WithRetries(2))

		entryID := s.createEntry("2026-03-02")

		version, err := workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().NoError(err)
		s.Equal(int64(1), version)
		s.Equal(aggregate.StatusSubmitted, s.entryStatus(entryID))

		// first attempt left a revert pair behind before the retry succeeded
		events, err := s.events.ReadStream(s.ctx, entryID.String(), 0)
		s.Require().NoError(err)
		s.Len(events, 4) // created, submitted, reverted, submitted
	})

	s.Run("conflict retries are bounded", func() {
		s.freshMember()
		store := &parentFailStore{InMemory: s.events, failures: 10, conflict: true}
		engine := aggregate.NewEngine(store, nil)
		workflow := NewWorkflow(engine, WithRetries(1))

		entryID := s.createEntry("2026-03-02")

		_, err := workflow.Submit(s.ctx, s.submitInput([]id.EntryID{entryID}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(aggregate.StatusDraft, s.entryStatus(entryID))
	})
}

// closingDayResolver maps dates after the closing day into the next month,
// the way a tenant-defined monthly period pattern does.
type closingDayResolver struct{ closingDay int }

func (r closingDayResolver) ResolvePeriod(_ context.Context, _ id.TenantID, date time.Time) (id.Month, error) {
	month := id.MonthOf(date)
	if date.Day() > r.closingDay {
		month = month.Next()
	}
	return month, nil
}

func (s *WorkflowSuite) TestSubmitWithPeriodResolver() {
	workflow := NewWorkflow(s.engine, WithPeriodResolver(closingDayResolver{closingDay: 25}))
	entryID := s.createEntry("2026-03-28")

	s.Run("the resolved period accepts the entry", func() {
		in := s.submitInput([]id.EntryID{entryID}, nil)
		in.Month = s.month.Next() // 2026-04
		_, err := workflow.Submit(s.ctx, in)
		s.Require().NoError(err)
	})

	s.Run("the calendar month no longer does", func() {
		other := s.createEntry("2026-03-27")
		_, err := workflow.Submit(s.ctx, s.submitInput([]id.EntryID{other}, nil))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestApprovalIDFor(t *testing.T) {
	memberID := id.MemberID(uuid.New())
	month, err := id.ParseMonth("2026-03")
	if err != nil {
		t.Fatal(err)
	}

	first := ApprovalIDFor(memberID, month)
	second := ApprovalIDFor(memberID, month)
	if first != second {
		t.Fatalf("expected deterministic approval id, got %s and %s", first, second)
	}

	if first == ApprovalIDFor(memberID, month.Next()) {
		t.Fatal("different months must not collide")
	}
	if first == ApprovalIDFor(id.MemberID(uuid.New()), month) {
		t.Fatal("different members must not collide")
	}
}
