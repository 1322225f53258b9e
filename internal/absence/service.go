package absence

import (
	"context"

	"github.com/google/uuid"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/requestcontext"
)

// Service handles the single-aggregate absence commands.
type Service struct {
	engine *aggregate.Engine
}

func NewService(engine *aggregate.Engine) *Service {
	return &Service{engine: engine}
}

func newAbsenceState() aggregate.State { return &Absence{} }

// CreateAbsenceInput carries the fields of a new absence.
type CreateAbsenceInput struct {
	TenantID  id.TenantID
	MemberID  id.MemberID
	Type      Type
	StartDate string
	EndDate   string
	Note      string
}

func (in CreateAbsenceInput) validate() error {
	if in.TenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if in.MemberID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "member id is required")
	}
	return validateAbsenceFields(in.Type, in.StartDate, in.EndDate)
}

func validateAbsenceFields(absenceType Type, startDate, endDate string) error {
	if !absenceType.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "invalid absence type %q", absenceType)
	}
	start, err := id.ParseDate(startDate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid start date")
	}
	end, err := id.ParseDate(endDate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid end date")
	}
	if end.Before(start) {
		return dErrors.New(dErrors.CodeBadRequest, "end date must not precede start date")
	}
	return nil
}

// Create starts a fresh absence stream in DRAFT at version 1.
func (s *Service) Create(ctx context.Context, in CreateAbsenceInput) (id.AbsenceID, int64, error) {
	if err := in.validate(); err != nil {
		return id.AbsenceID{}, 0, err
	}

	absenceID := id.AbsenceID(uuid.New())
	now := requestcontext.Now(ctx)

	version, err := s.engine.Execute(ctx, absenceID.String(), newAbsenceState, false,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if version != 0 {
				return nil, dErrors.Newf(dErrors.CodeConflict, "absence %s already exists", absenceID)
			}
			event, err := eventlog.NewEvent(absenceID.String(), eventlog.AggregateAbsence,
				EventAbsenceCreated, now, AbsenceCreatedPayload{
					TenantID:  in.TenantID,
					MemberID:  in.MemberID,
					Type:      in.Type,
					StartDate: in.StartDate,
					EndDate:   in.EndDate,
					Note:      in.Note,
				})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
	if err != nil {
		return id.AbsenceID{}, 0, err
	}
	return absenceID, version, nil
}

// EditAbsenceInput replaces the mutable fields of an absence.
type EditAbsenceInput struct {
	Type      Type
	StartDate string
	EndDate   string
	Note      string
}

// Edit replaces the absence's mutable fields. Only DRAFT and REJECTED
// absences are editable.
func (s *Service) Edit(ctx context.Context, absenceID id.AbsenceID, in EditAbsenceInput) (int64, error) {
	if absenceID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "absence id is required")
	}
	if err := validateAbsenceFields(in.Type, in.StartDate, in.EndDate); err != nil {
		return 0, err
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, absenceID.String(), newAbsenceState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			absence := state.(*Absence)
			if absence.Deleted {
				return nil, dErrors.Newf(dErrors.CodeNotFound, "absence %s is deleted", absenceID)
			}
			if err := aggregate.RequireEditable(absence.AggregateType(), absence.Status()); err != nil {
				return nil, err
			}
			event, err := eventlog.NewEvent(absenceID.String(), eventlog.AggregateAbsence,
				EventAbsenceEdited, now, AbsenceEditedPayload{
					Type:      in.Type,
					StartDate: in.StartDate,
					EndDate:   in.EndDate,
					Note:      in.Note,
				})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// Delete tombstones an absence; only DRAFT and REJECTED absences are
// deletable.
func (s *Service) Delete(ctx context.Context, absenceID id.AbsenceID) (int64, error) {
	if absenceID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "absence id is required")
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, absenceID.String(), newAbsenceState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			absence := state.(*Absence)
			if absence.Deleted {
				return nil, nil // idempotent
			}
			if !absence.Status().IsDeletable() {
				return nil, dErrors.Newf(dErrors.CodeNotEditable,
					"absence %s in status %s cannot be deleted", absenceID, absence.Status())
			}
			event, err := eventlog.NewEvent(absenceID.String(), eventlog.AggregateAbsence,
				EventAbsenceDeleted, now, nil)
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// Get rehydrates and returns the current absence state.
func (s *Service) Get(ctx context.Context, absenceID id.AbsenceID) (*Absence, int64, error) {
	if absenceID.IsNil() {
		return nil, 0, dErrors.New(dErrors.CodeBadRequest, "absence id is required")
	}
	absence := &Absence{}
	version, err := s.engine.Rehydrate(ctx, absenceID.String(), absence)
	if err != nil {
		return nil, 0, err
	}
	if version == 0 || absence.Deleted {
		return nil, 0, dErrors.Newf(dErrors.CodeNotFound, "absence %s not found", absenceID)
	}
	return absence, version, nil
}
