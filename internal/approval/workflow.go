package approval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"tempo/internal/absence"
	"tempo/internal/aggregate"
	approvalmetrics "tempo/internal/approval/metrics"
	"tempo/internal/eventlog"
	"tempo/internal/worklog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/sentinel"
	"tempo/pkg/requestcontext"
)

// PeriodResolver maps a work date onto the month it is approved under.
// Tenants with a monthly-period pattern close their months mid-calendar;
// without a resolver the calendar month of the date is used.
type PeriodResolver interface {
	ResolvePeriod(ctx context.Context, tenantID id.TenantID, date time.Time) (id.Month, error)
}

// Workflow orchestrates the three month-level commands. Each invocation
// spans the MonthlyApproval stream and every child stream it references, and
// is all-or-nothing from an external reader's perspective: the log only ever
// shows a complete cascade or a cascade fully undone by compensating events.
type Workflow struct {
	engine   *aggregate.Engine
	events   eventlog.Store
	resolver PeriodResolver
	log      *log.Logger
	metrics  *approvalmetrics.Metrics
	retries  int
}

type workflowConfig struct {
	resolver PeriodResolver
	log      *log.Logger
	metrics  *approvalmetrics.Metrics
	retries  int
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*workflowConfig)

// WithPeriodResolver installs the tenant period pattern resolver.
func WithPeriodResolver(r PeriodResolver) WorkflowOption {
	return func(cfg *workflowConfig) { cfg.resolver = r }
}

// WithLogger sets the logger for compensation reporting.
func WithLogger(l *log.Logger) WorkflowOption {
	return func(cfg *workflowConfig) { cfg.log = l }
}

// WithMetrics attaches workflow metrics.
func WithMetrics(m *approvalmetrics.Metrics) WorkflowOption {
	return func(cfg *workflowConfig) { cfg.metrics = m }
}

// WithRetries caps whole-workflow retries after participant conflicts.
func WithRetries(n int) WorkflowOption {
	return func(cfg *workflowConfig) { cfg.retries = n }
}

func NewWorkflow(engine *aggregate.Engine, opts ...WorkflowOption) *Workflow {
	cfg := &workflowConfig{retries: aggregate.DefaultRetries}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.log == nil {
		cfg.log = log.Default()
	}
	return &Workflow{
		engine:   engine,
		events:   engine.EventStore(),
		resolver: cfg.resolver,
		log:      cfg.log,
		metrics:  cfg.metrics,
		retries:  cfg.retries,
	}
}

// participant is one child stream of a cascade with its expected version and
// pre-cascade status captured before any append.
type participant struct {
	aggregateID   string
	aggregateType eventlog.AggregateType
	version       int64
	status        aggregate.Status
}

// SubmitMonthInput carries a member's submission of one month's work.
type SubmitMonthInput struct {
	TenantID   id.TenantID
	MemberID   id.MemberID
	Month      id.Month
	EntryIDs   []id.EntryID
	AbsenceIDs []id.AbsenceID
}

func (in SubmitMonthInput) validate() error {
	if in.TenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if in.MemberID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "member id is required")
	}
	if in.Month.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "month is required")
	}
	if len(in.EntryIDs) == 0 && len(in.AbsenceIDs) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "a submission needs at least one entry or absence")
	}
	return nil
}

// Submit runs the member-initiated submission cascade: the approval stream
// gains a MonthSubmittedForApproval event carrying the membership snapshot,
// and every child moves to SUBMITTED. Preconditions are validated across all
// participants before any event is appended.
func (w *Workflow) Submit(ctx context.Context, in SubmitMonthInput) (int64, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		return 0, err
	}
	in.EntryIDs = dedupeEntryIDs(in.EntryIDs)
	in.AbsenceIDs = dedupeAbsenceIDs(in.AbsenceIDs)

	approvalID := ApprovalIDFor(in.MemberID, in.Month)
	now := requestcontext.Now(ctx)

	version, err := w.retryCascade(ctx, func(ctx context.Context) (int64, error) {
		parent := &Approval{}
		parentVersion, err := w.engine.Rehydrate(ctx, approvalID.String(), parent)
		if err != nil {
			return 0, err
		}
		// Version 0 is the implicit creation on first submission; an existing
		// stream must be in a re-submittable status.
		if parentVersion > 0 {
			if err := aggregate.Transition(parent.AggregateType(), parent.Status(), aggregate.StatusSubmitted); err != nil {
				return 0, err
			}
		}

		children, err := w.gatherChildren(ctx, in.EntryIDs, in.AbsenceIDs, aggregate.StatusSubmitted, &in)
		if err != nil {
			return 0, err
		}

		payload := MonthSubmittedPayload{
			TenantID:    in.TenantID,
			MemberID:    in.MemberID,
			Month:       in.Month,
			EntryIDs:    in.EntryIDs,
			AbsenceIDs:  in.AbsenceIDs,
			SubmittedBy: in.MemberID,
			SubmittedAt: now,
		}
		parentEvent, err := eventlog.NewEvent(approvalID.String(), eventlog.AggregateMonthlyApproval,
			EventMonthSubmitted, now, payload)
		if err != nil {
			return 0, err
		}

		return w.commit(ctx, "submit", approvalID, in.MemberID, now,
			children, aggregate.StatusSubmitted, parentVersion, parentEvent)
	})

	w.observe("submit", err, len(in.EntryIDs)+len(in.AbsenceIDs), start)
	return version, err
}

// Approve runs the manager-initiated approval cascade over the membership
// recorded at submission. APPROVED is terminal for the parent and every
// child: no edit, deletion or transition is ever permitted afterwards.
func (w *Workflow) Approve(ctx context.Context, approvalID id.ApprovalID, reviewerID id.MemberID) (int64, error) {
	return w.review(ctx, "approve", approvalID, reviewerID,
		aggregate.StatusApproved, EventMonthApproved)
}

// Reject runs the manager-initiated rejection cascade. The parent moves to
// REJECTED; children return to DRAFT, editable again. (The transition table
// would also allow SUBMITTED→REJECTED for children; this workflow
// consistently targets DRAFT so a child's REJECTED status always means a
// direct per-item rejection.)
func (w *Workflow) Reject(ctx context.Context, approvalID id.ApprovalID, reviewerID id.MemberID) (int64, error) {
	return w.review(ctx, "reject", approvalID, reviewerID,
		aggregate.StatusDraft, EventMonthRejected)
}

func (w *Workflow) review(ctx context.Context, command string, approvalID id.ApprovalID, reviewerID id.MemberID, childTarget aggregate.Status, parentEventType eventlog.EventType) (int64, error) {
	start := time.Now()
	if approvalID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "approval id is required")
	}
	if reviewerID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "reviewer id is required")
	}

	parentTarget := aggregate.StatusApproved
	if parentEventType == EventMonthRejected {
		parentTarget = aggregate.StatusRejected
	}
	now := requestcontext.Now(ctx)

	children := 0
	version, err := w.retryCascade(ctx, func(ctx context.Context) (int64, error) {
		parent := &Approval{}
		parentVersion, err := w.engine.Rehydrate(ctx, approvalID.String(), parent)
		if err != nil {
			return 0, err
		}
		if parentVersion == 0 {
			return 0, dErrors.Newf(dErrors.CodeNotFound, "monthly approval %s not found", approvalID)
		}
		if err := aggregate.Transition(parent.AggregateType(), parent.Status(), parentTarget); err != nil {
			return 0, err
		}

		participants, err := w.gatherChildren(ctx, parent.EntryIDs, parent.AbsenceIDs, childTarget, nil)
		if err != nil {
			return 0, err
		}
		children = len(participants)

		parentEvent, err := eventlog.NewEvent(approvalID.String(), eventlog.AggregateMonthlyApproval,
			parentEventType, now, ReviewPayload{ReviewedBy: reviewerID, ReviewedAt: now})
		if err != nil {
			return 0, err
		}

		return w.commit(ctx, command, approvalID, reviewerID, now,
			participants, childTarget, parentVersion, parentEvent)
	})

	w.observe(command, err, children, start)
	return version, err
}

// retryCascade re-runs the whole cascade, including rehydration of every
// participant, after an optimistic-concurrency conflict. A conflict on any
// participant is a conflict for the whole operation.
func (w *Workflow) retryCascade(ctx context.Context, attempt func(ctx context.Context) (int64, error)) (int64, error) {
	for tries := 0; ; tries++ {
		version, err := attempt(ctx)
		if err == nil {
			return version, nil
		}
		if !errors.Is(err, sentinel.ErrVersionConflict) {
			return 0, err
		}
		if tries >= w.retries {
			return 0, dErrors.Wrap(err, dErrors.CodeConflict,
				"monthly approval cascade conflicted, retries exhausted")
		}
	}
}

// gatherChildren rehydrates every child concurrently, validating existence
// and the requested transition before any write happens. submitInput is
// non-nil only for submissions, which additionally check ownership and that
// the work falls inside the submitted month.
func (w *Workflow) gatherChildren(ctx context.Context, entryIDs []id.EntryID, absenceIDs []id.AbsenceID, target aggregate.Status, submitInput *SubmitMonthInput) ([]participant, error) {
	participants := make([]participant, len(entryIDs)+len(absenceIDs))
	g, ctx := errgroup.WithContext(ctx)

	for i, entryID := range entryIDs {
		g.Go(func() error {
			entry := &worklog.Entry{}
			version, err := w.engine.Rehydrate(ctx, entryID.String(), entry)
			if err != nil {
				return err
			}
			if version == 0 || entry.Deleted {
				return dErrors.Newf(dErrors.CodeNotFound, "work log entry %s not found", entryID)
			}
			if submitInput != nil {
				if err := w.checkSubmittedEntry(ctx, entry, *submitInput); err != nil {
					return err
				}
			}
			if err := aggregate.Transition(entry.AggregateType(), entry.Status(), target); err != nil {
				return err
			}
			participants[i] = participant{
				aggregateID:   entryID.String(),
				aggregateType: eventlog.AggregateWorkLogEntry,
				version:       version,
				status:        entry.Status(),
			}
			return nil
		})
	}

	offset := len(entryIDs)
	for i, absenceID := range absenceIDs {
		g.Go(func() error {
			item := &absence.Absence{}
			version, err := w.engine.Rehydrate(ctx, absenceID.String(), item)
			if err != nil {
				return err
			}
			if version == 0 || item.Deleted {
				return dErrors.Newf(dErrors.CodeNotFound, "absence %s not found", absenceID)
			}
			if submitInput != nil && item.MemberID != submitInput.MemberID {
				return dErrors.Newf(dErrors.CodeBadRequest,
					"absence %s belongs to another member", absenceID)
			}
			if err := aggregate.Transition(item.AggregateType(), item.Status(), target); err != nil {
				return err
			}
			participants[offset+i] = participant{
				aggregateID:   absenceID.String(),
				aggregateType: eventlog.AggregateAbsence,
				version:       version,
				status:        item.Status(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (w *Workflow) checkSubmittedEntry(ctx context.Context, entry *worklog.Entry, in SubmitMonthInput) error {
	if entry.MemberID != in.MemberID {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"work log entry %s belongs to another member", entry.ID)
	}
	date, err := id.ParseDate(entry.Date)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "entry carries an unparseable date")
	}
	month := id.MonthOf(date)
	if w.resolver != nil {
		resolved, err := w.resolver.ResolvePeriod(ctx, in.TenantID, date)
		if err != nil {
			return err
		}
		month = resolved
	}
	if month != in.Month {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"work log entry %s falls into period %s, not %s", entry.ID, month, in.Month)
	}
	return nil
}

// commit appends the cascade: every child first, the parent last. On any
// failure it appends compensating events restoring each already-written
// child to its pre-cascade status before returning, so a partial cascade is
// never left visible.
func (w *Workflow) commit(ctx context.Context, command string, approvalID id.ApprovalID, actor id.MemberID, now time.Time, children []participant, childTarget aggregate.Status, parentVersion int64, parentEvent eventlog.Event) (int64, error) {
	var appended []participant

	for _, child := range children {
		event, err := childTransitionEvent(child, childTarget, actor, approvalID, now)
		if err != nil {
			w.compensate(ctx, appended, command, now)
			return 0, dErrors.Wrap(err, dErrors.CodeWorkflowFailed, "build cascade event")
		}
		if _, err := w.events.Append(ctx, child.aggregateID, child.aggregateType, child.version, []eventlog.Event{event}); err != nil {
			w.compensate(ctx, appended, command, now)
			if errors.Is(err, sentinel.ErrVersionConflict) {
				return 0, err
			}
			return 0, dErrors.Wrap(err, dErrors.CodeWorkflowFailed,
				fmt.Sprintf("%s cascade failed on %s %s", command, child.aggregateType, child.aggregateID))
		}
		appended = append(appended, child)
	}

	newVersion, err := w.events.Append(ctx, approvalID.String(), eventlog.AggregateMonthlyApproval,
		parentVersion, []eventlog.Event{parentEvent})
	if err != nil {
		w.compensate(ctx, appended, command, now)
		if errors.Is(err, sentinel.ErrVersionConflict) {
			return 0, err
		}
		return 0, dErrors.Wrap(err, dErrors.CodeWorkflowFailed,
			fmt.Sprintf("%s cascade failed on monthly approval %s", command, approvalID))
	}
	return newVersion, nil
}

// compensate restores already-transitioned children to their pre-cascade
// status. Best effort: a failed compensation is logged loudly, and the
// workflow error still reaches the caller.
func (w *Workflow) compensate(ctx context.Context, appended []participant, command string, now time.Time) {
	if len(appended) == 0 {
		return
	}
	reason := command + " cascade aborted"
	for _, child := range appended {
		event, err := childRevertEvent(child, reason, now)
		if err == nil {
			_, err = w.events.Append(ctx, child.aggregateID, child.aggregateType,
				child.version+1, []eventlog.Event{event})
		}
		if err != nil {
			w.log.Printf("COMPENSATION FAILED for %s %s (restore %s): %v",
				child.aggregateType, child.aggregateID, child.status, err)
		}
	}
	if w.metrics != nil {
		w.metrics.IncrementCompensations(len(appended))
	}
}

func childTransitionEvent(child participant, target aggregate.Status, actor id.MemberID, approvalID id.ApprovalID, now time.Time) (eventlog.Event, error) {
	switch child.aggregateType {
	case eventlog.AggregateWorkLogEntry:
		return eventlog.NewEvent(child.aggregateID, child.aggregateType,
			entryEventFor(target), now, worklog.TransitionPayload{Actor: actor, ApprovalID: approvalID})
	case eventlog.AggregateAbsence:
		return eventlog.NewEvent(child.aggregateID, child.aggregateType,
			absenceEventFor(target), now, absence.TransitionPayload{Actor: actor, ApprovalID: approvalID})
	}
	return eventlog.Event{}, fmt.Errorf("unknown cascade child type %s", child.aggregateType)
}

func childRevertEvent(child participant, reason string, now time.Time) (eventlog.Event, error) {
	switch child.aggregateType {
	case eventlog.AggregateWorkLogEntry:
		return eventlog.NewEvent(child.aggregateID, child.aggregateType,
			worklog.EventEntryCascadeReverted, now,
			worklog.CascadeRevertedPayload{RestoredStatus: child.status, Reason: reason})
	case eventlog.AggregateAbsence:
		return eventlog.NewEvent(child.aggregateID, child.aggregateType,
			absence.EventAbsenceCascadeReverted, now,
			absence.CascadeRevertedPayload{RestoredStatus: child.status, Reason: reason})
	}
	return eventlog.Event{}, fmt.Errorf("unknown cascade child type %s", child.aggregateType)
}

func entryEventFor(target aggregate.Status) eventlog.EventType {
	switch target {
	case aggregate.StatusSubmitted:
		return worklog.EventEntrySubmitted
	case aggregate.StatusApproved:
		return worklog.EventEntryApproved
	case aggregate.StatusDraft:
		return worklog.EventEntryReturnedToDraft
	default:
		return worklog.EventEntryRejected
	}
}

func absenceEventFor(target aggregate.Status) eventlog.EventType {
	switch target {
	case aggregate.StatusSubmitted:
		return absence.EventAbsenceSubmitted
	case aggregate.StatusApproved:
		return absence.EventAbsenceApproved
	case aggregate.StatusDraft:
		return absence.EventAbsenceReturnedToDraft
	default:
		return absence.EventAbsenceRejected
	}
}

func (w *Workflow) observe(command string, err error, children int, start time.Time) {
	if w.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	w.metrics.ObserveOutcome(command, outcome, children, start)
}

// Get rehydrates and returns a member-month's approval state.
func (w *Workflow) Get(ctx context.Context, approvalID id.ApprovalID) (*Approval, int64, error) {
	if approvalID.IsNil() {
		return nil, 0, dErrors.New(dErrors.CodeBadRequest, "approval id is required")
	}
	parent := &Approval{}
	version, err := w.engine.Rehydrate(ctx, approvalID.String(), parent)
	if err != nil {
		return nil, 0, err
	}
	if version == 0 {
		return nil, 0, dErrors.Newf(dErrors.CodeNotFound, "monthly approval %s not found", approvalID)
	}
	return parent, version, nil
}

func dedupeEntryIDs(ids []id.EntryID) []id.EntryID {
	seen := make(map[id.EntryID]struct{}, len(ids))
	out := make([]id.EntryID, 0, len(ids))
	for _, entryID := range ids {
		if _, ok := seen[entryID]; ok {
			continue
		}
		seen[entryID] = struct{}{}
		out = append(out, entryID)
	}
	return out
}

func dedupeAbsenceIDs(ids []id.AbsenceID) []id.AbsenceID {
	seen := make(map[id.AbsenceID]struct{}, len(ids))
	out := make([]id.AbsenceID, 0, len(ids))
	for _, absenceID := range ids {
		if _, ok := seen[absenceID]; ok {
			continue
		}
		seen[absenceID] = struct{}{}
		out = append(out, absenceID)
	}
	return out
}
