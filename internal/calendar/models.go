// Package calendar owns the FiscalYearPattern and MonthlyPeriodPattern
// aggregates: per-tenant rules for which fiscal year a month belongs to and
// where the monthly approval period closes. One pattern of each kind exists
// per tenant, addressed deterministically so resolution needs no lookup
// table.
package calendar

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
)

const (
	EventFiscalYearDefined       eventlog.EventType = "fiscal_year_pattern_defined"
	EventFiscalYearDeactivated   eventlog.EventType = "fiscal_year_pattern_deactivated"
	EventFiscalYearReactivated   eventlog.EventType = "fiscal_year_pattern_reactivated"
	EventPeriodPatternDefined    eventlog.EventType = "monthly_period_pattern_defined"
	EventPeriodPatternDeactivate eventlog.EventType = "monthly_period_pattern_deactivated"
	EventPeriodPatternReactivate eventlog.EventType = "monthly_period_pattern_reactivated"
)

var (
	fiscalNamespace = uuid.MustParse("c7de91f4-a4ac-43a6-9c6d-24da38fd0a02")
	periodNamespace = uuid.MustParse("3e3db0e2-61a8-49cf-9e26-3cf261f9d5a3")
)

// FiscalPatternIDFor returns the deterministic fiscal-year pattern ID of a
// tenant.
func FiscalPatternIDFor(tenantID id.TenantID) id.PatternID {
	return id.PatternID(uuid.NewSHA1(fiscalNamespace, []byte(tenantID.String())))
}

// PeriodPatternIDFor returns the deterministic monthly-period pattern ID of
// a tenant.
func PeriodPatternIDFor(tenantID id.TenantID) id.PatternID {
	return id.PatternID(uuid.NewSHA1(periodNamespace, []byte(tenantID.String())))
}

// FiscalYearDefinedPayload sets the first month of the fiscal year.
type FiscalYearDefinedPayload struct {
	TenantID   id.TenantID `json:"tenant_id"`
	StartMonth int         `json:"start_month"` // 1-12
}

// PeriodDefinedPayload sets the day the monthly period closes. Work dated
// after the closing day is approved under the following month.
type PeriodDefinedPayload struct {
	TenantID   id.TenantID `json:"tenant_id"`
	ClosingDay int         `json:"closing_day"` // 1-28, 31 = calendar month
}

// FiscalYearPattern is the folded state of a tenant's fiscal-year rule.
type FiscalYearPattern struct {
	ID         id.PatternID     `json:"id"`
	TenantID   id.TenantID      `json:"tenant_id"`
	StartMonth int              `json:"start_month"`
	Stat       aggregate.Status `json:"status"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *FiscalYearPattern) AggregateType() eventlog.AggregateType {
	return eventlog.AggregateFiscalYearPattern
}

func (p *FiscalYearPattern) Status() aggregate.Status { return p.Stat }

func (p *FiscalYearPattern) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventFiscalYearDefined:
		var payload FiscalYearDefinedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		patternID, err := id.ParsePatternID(event.AggregateID)
		if err != nil {
			return err
		}
		p.ID = patternID
		p.TenantID = payload.TenantID
		p.StartMonth = payload.StartMonth
		p.Stat = aggregate.StatusActive
	case EventFiscalYearDeactivated:
		p.Stat = aggregate.StatusInactive
	case EventFiscalYearReactivated:
		p.Stat = aggregate.StatusActive
	}
	p.UpdatedAt = event.OccurredAt
	return nil
}

// FiscalYearOf returns the fiscal year label of a month: the calendar year
// in which the fiscal year containing that month began.
func (p *FiscalYearPattern) FiscalYearOf(month id.Month) int {
	if int(month.Month) >= p.StartMonth {
		return month.Year
	}
	return month.Year - 1
}

// MonthlyPeriodPattern is the folded state of a tenant's period-closing
// rule.
type MonthlyPeriodPattern struct {
	ID         id.PatternID     `json:"id"`
	TenantID   id.TenantID      `json:"tenant_id"`
	ClosingDay int              `json:"closing_day"`
	Stat       aggregate.Status `json:"status"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *MonthlyPeriodPattern) AggregateType() eventlog.AggregateType {
	return eventlog.AggregateMonthlyPeriodPattern
}

func (p *MonthlyPeriodPattern) Status() aggregate.Status { return p.Stat }

func (p *MonthlyPeriodPattern) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventPeriodPatternDefined:
		var payload PeriodDefinedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		patternID, err := id.ParsePatternID(event.AggregateID)
		if err != nil {
			return err
		}
		p.ID = patternID
		p.TenantID = payload.TenantID
		p.ClosingDay = payload.ClosingDay
		p.Stat = aggregate.StatusActive
	case EventPeriodPatternDeactivate:
		p.Stat = aggregate.StatusInactive
	case EventPeriodPatternReactivate:
		p.Stat = aggregate.StatusActive
	}
	p.UpdatedAt = event.OccurredAt
	return nil
}

// PeriodOf returns the approval month a work date falls into under this
// pattern: dates past the closing day roll into the next month.
func (p *MonthlyPeriodPattern) PeriodOf(date time.Time) id.Month {
	month := id.MonthOf(date)
	if p.ClosingDay >= 1 && p.ClosingDay < 31 && date.Day() > p.ClosingDay {
		return month.Next()
	}
	return month
}
