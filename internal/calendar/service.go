package calendar

import (
	"context"
	"time"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/requestcontext"
)

// Service manages the per-tenant calendar patterns and resolves work dates
// onto approval periods. It implements the approval workflow's
// PeriodResolver.
type Service struct {
	engine *aggregate.Engine
}

func NewService(engine *aggregate.Engine) *Service {
	return &Service{engine: engine}
}

func newFiscalState() aggregate.State { return &FiscalYearPattern{} }
func newPeriodState() aggregate.State { return &MonthlyPeriodPattern{} }

// DefineFiscalYear sets (or redefines) the tenant's fiscal-year start
// month. Redefinition appends a new defined event over the same stream.
func (s *Service) DefineFiscalYear(ctx context.Context, tenantID id.TenantID, startMonth int) (int64, error) {
	if tenantID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if startMonth < 1 || startMonth > 12 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "start month must be 1-12")
	}

	patternID := FiscalPatternIDFor(tenantID)
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, patternID.String(), newFiscalState, false,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			pattern := state.(*FiscalYearPattern)
			if version > 0 && pattern.StartMonth == startMonth && pattern.Stat == aggregate.StatusActive {
				return nil, nil
			}
			event, err := eventlog.NewEvent(patternID.String(), eventlog.AggregateFiscalYearPattern,
				EventFiscalYearDefined, now, FiscalYearDefinedPayload{TenantID: tenantID, StartMonth: startMonth})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// DefineMonthlyPeriod sets (or redefines) the tenant's period closing day.
func (s *Service) DefineMonthlyPeriod(ctx context.Context, tenantID id.TenantID, closingDay int) (int64, error) {
	if tenantID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if (closingDay < 1 || closingDay > 28) && closingDay != 31 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "closing day must be 1-28, or 31 for calendar months")
	}

	patternID := PeriodPatternIDFor(tenantID)
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, patternID.String(), newPeriodState, false,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			pattern := state.(*MonthlyPeriodPattern)
			if version > 0 && pattern.ClosingDay == closingDay && pattern.Stat == aggregate.StatusActive {
				return nil, nil
			}
			event, err := eventlog.NewEvent(patternID.String(), eventlog.AggregateMonthlyPeriodPattern,
				EventPeriodPatternDefined, now, PeriodDefinedPayload{TenantID: tenantID, ClosingDay: closingDay})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// DeactivateMonthlyPeriod suspends the pattern; resolution falls back to
// calendar months while inactive.
func (s *Service) DeactivateMonthlyPeriod(ctx context.Context, tenantID id.TenantID) (int64, error) {
	return s.setPeriodStatus(ctx, tenantID, aggregate.StatusInactive, EventPeriodPatternDeactivate)
}

// ReactivateMonthlyPeriod restores a suspended pattern.
func (s *Service) ReactivateMonthlyPeriod(ctx context.Context, tenantID id.TenantID) (int64, error) {
	return s.setPeriodStatus(ctx, tenantID, aggregate.StatusActive, EventPeriodPatternReactivate)
}

func (s *Service) setPeriodStatus(ctx context.Context, tenantID id.TenantID, target aggregate.Status, eventType eventlog.EventType) (int64, error) {
	if tenantID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	patternID := PeriodPatternIDFor(tenantID)
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, patternID.String(), newPeriodState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if err := aggregate.Transition(state.AggregateType(), state.Status(), target); err != nil {
				return nil, err
			}
			event, err := eventlog.NewEvent(patternID.String(), eventlog.AggregateMonthlyPeriodPattern,
				eventType, now, nil)
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// ResolvePeriod maps a work date onto the month it is approved under. A
// tenant without an active period pattern uses calendar months.
func (s *Service) ResolvePeriod(ctx context.Context, tenantID id.TenantID, date time.Time) (id.Month, error) {
	if tenantID.IsNil() {
		return id.Month{}, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}

	pattern := &MonthlyPeriodPattern{}
	patternID := PeriodPatternIDFor(tenantID)
	version, err := s.engine.Rehydrate(ctx, patternID.String(), pattern)
	if err != nil {
		return id.Month{}, err
	}
	if version == 0 || pattern.Stat != aggregate.StatusActive {
		return id.MonthOf(date), nil
	}
	return pattern.PeriodOf(date), nil
}

// FiscalYearOf returns the fiscal year a month belongs to for a tenant.
// Tenants without an active pattern use January as the fiscal start.
func (s *Service) FiscalYearOf(ctx context.Context, tenantID id.TenantID, month id.Month) (int, error) {
	if tenantID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}

	pattern := &FiscalYearPattern{}
	patternID := FiscalPatternIDFor(tenantID)
	version, err := s.engine.Rehydrate(ctx, patternID.String(), pattern)
	if err != nil {
		return 0, err
	}
	if version == 0 || pattern.Stat != aggregate.StatusActive {
		return month.Year, nil
	}
	return pattern.FiscalYearOf(month), nil
}
