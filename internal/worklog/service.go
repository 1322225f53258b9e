package worklog

import (
	"context"

	"github.com/google/uuid"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/requestcontext"
)

// Service handles the single-aggregate work-log entry commands. Each command
// returns the new aggregate version or a coded failure.
type Service struct {
	engine *aggregate.Engine
}

func NewService(engine *aggregate.Engine) *Service {
	return &Service{engine: engine}
}

func newEntryState() aggregate.State { return &Entry{} }

// CreateEntryInput carries the fields of a new entry.
type CreateEntryInput struct {
	TenantID id.TenantID
	MemberID id.MemberID
	Project  string
	Date     string // YYYY-MM-DD
	Hours    float64
	Note     string
}

func (in CreateEntryInput) validate() error {
	if in.TenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if in.MemberID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "member id is required")
	}
	return validateEntryFields(in.Project, in.Date, in.Hours)
}

func validateEntryFields(project, date string, hours float64) error {
	if project == "" {
		return dErrors.New(dErrors.CodeBadRequest, "project is required")
	}
	if _, err := id.ParseDate(date); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid entry date")
	}
	if hours <= 0 || hours > 24 {
		return dErrors.New(dErrors.CodeBadRequest, "hours must be in (0, 24]")
	}
	return nil
}

// Create starts a fresh entry stream in DRAFT at version 1.
func (s *Service) Create(ctx context.Context, in CreateEntryInput) (id.EntryID, int64, error) {
	if err := in.validate(); err != nil {
		return id.EntryID{}, 0, err
	}

	entryID := id.EntryID(uuid.New())
	now := requestcontext.Now(ctx)

	version, err := s.engine.Execute(ctx, entryID.String(), newEntryState, false,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if version != 0 {
				return nil, dErrors.Newf(dErrors.CodeConflict, "entry %s already exists", entryID)
			}
			event, err := eventlog.NewEvent(entryID.String(), eventlog.AggregateWorkLogEntry,
				EventEntryCreated, now, EntryCreatedPayload{
					TenantID: in.TenantID,
					MemberID: in.MemberID,
					Project:  in.Project,
					Date:     in.Date,
					Hours:    in.Hours,
					Note:     in.Note,
				})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
	if err != nil {
		return id.EntryID{}, 0, err
	}
	return entryID, version, nil
}

// EditEntryInput replaces the mutable fields of an entry.
type EditEntryInput struct {
	Project string
	Date    string
	Hours   float64
	Note    string
}

// Edit replaces the entry's mutable fields. Only DRAFT and REJECTED entries
// are editable.
func (s *Service) Edit(ctx context.Context, entryID id.EntryID, in EditEntryInput) (int64, error) {
	if entryID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "entry id is required")
	}
	if err := validateEntryFields(in.Project, in.Date, in.Hours); err != nil {
		return 0, err
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, entryID.String(), newEntryState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			entry := state.(*Entry)
			if entry.Deleted {
				return nil, dErrors.Newf(dErrors.CodeNotFound, "entry %s is deleted", entryID)
			}
			if err := aggregate.RequireEditable(entry.AggregateType(), entry.Status()); err != nil {
				return nil, err
			}
			event, err := eventlog.NewEvent(entryID.String(), eventlog.AggregateWorkLogEntry,
				EventEntryEdited, now, EntryEditedPayload{
					Project: in.Project,
					Date:    in.Date,
					Hours:   in.Hours,
					Note:    in.Note,
				})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// Delete tombstones an entry. History stays in the log; only DRAFT and
// REJECTED entries are deletable.
func (s *Service) Delete(ctx context.Context, entryID id.EntryID) (int64, error) {
	if entryID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "entry id is required")
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, entryID.String(), newEntryState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			entry := state.(*Entry)
			if entry.Deleted {
				return nil, nil // idempotent
			}
			if !entry.Status().IsDeletable() {
				return nil, dErrors.Newf(dErrors.CodeNotEditable,
					"entry %s in status %s cannot be deleted", entryID, entry.Status())
			}
			event, err := eventlog.NewEvent(entryID.String(), eventlog.AggregateWorkLogEntry,
				EventEntryDeleted, now, nil)
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// Get rehydrates and returns the current entry state.
func (s *Service) Get(ctx context.Context, entryID id.EntryID) (*Entry, int64, error) {
	if entryID.IsNil() {
		return nil, 0, dErrors.New(dErrors.CodeBadRequest, "entry id is required")
	}
	entry := &Entry{}
	version, err := s.engine.Rehydrate(ctx, entryID.String(), entry)
	if err != nil {
		return nil, 0, err
	}
	if version == 0 || entry.Deleted {
		return nil, 0, dErrors.Newf(dErrors.CodeNotFound, "entry %s not found", entryID)
	}
	return entry, version, nil
}
