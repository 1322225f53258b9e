package projection

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"tempo/internal/absence"
	"tempo/internal/approval"
	"tempo/internal/eventlog"
	"tempo/internal/worklog"
	id "tempo/pkg/domain"
)

// MonthSummary is the read model backing the month overview screen: per
// member and month, the hours logged, absence days taken, and the approval
// status. It is rebuilt purely from events and holds no authority.
type MonthSummary struct {
	TenantID       id.TenantID `json:"tenant_id"`
	MemberID       id.MemberID `json:"member_id"`
	Month          id.Month    `json:"month"`
	LoggedHours    float64     `json:"logged_hours"`
	EntryCount     int         `json:"entry_count"`
	AbsenceCount   int         `json:"absence_count"`
	ApprovalStatus string      `json:"approval_status"`
}

type summaryKey struct {
	member id.MemberID
	month  id.Month
}

// SummaryView accumulates MonthSummary rows from the event feed. Only Apply
// mutates it, and Apply is driven solely by the Projector, so a plain mutex
// suffices.
type SummaryView struct {
	mu        sync.RWMutex
	summaries map[summaryKey]*MonthSummary

	// entries remembers each entry's last-applied date and hours so edits
	// and deletes can adjust the right month's totals.
	entries  map[id.EntryID]entryFacts
	absences map[id.AbsenceID]absenceFacts
}

type entryFacts struct {
	tenant id.TenantID
	member id.MemberID
	month  id.Month
	hours  float64
}

type absenceFacts struct {
	tenant id.TenantID
	member id.MemberID
	month  id.Month
}

func NewSummaryView() *SummaryView {
	return &SummaryView{
		summaries: make(map[summaryKey]*MonthSummary),
		entries:   make(map[id.EntryID]entryFacts),
		absences:  make(map[id.AbsenceID]absenceFacts),
	}
}

// Summary returns the row for a member and month, zero-valued when no events
// have contributed to it yet.
func (v *SummaryView) Summary(memberID id.MemberID, month id.Month) MonthSummary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if s, ok := v.summaries[summaryKey{member: memberID, month: month}]; ok {
		return *s
	}
	return MonthSummary{MemberID: memberID, Month: month}
}

// Summaries returns all rows for a member sorted by month.
func (v *SummaryView) Summaries(memberID id.MemberID) []MonthSummary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []MonthSummary
	for key, s := range v.summaries {
		if key.member == memberID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Start().Before(out[j].Month.Start())
	})
	return out
}

// Apply folds one event into the view. Unknown event types are skipped so the
// projection tolerates feed entries owned by other read models.
func (v *SummaryView) Apply(event eventlog.Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch event.Type {
	case worklog.EventEntryCreated:
		var p worklog.EntryCreatedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		return v.applyEntryCreated(event, p)
	case worklog.EventEntryEdited:
		var p worklog.EntryEditedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		return v.applyEntryEdited(event, p)
	case worklog.EventEntryDeleted:
		return v.applyEntryDeleted(event)
	case absence.EventAbsenceCreated:
		var p absence.AbsenceCreatedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		return v.applyAbsenceCreated(event, p)
	case absence.EventAbsenceDeleted:
		return v.applyAbsenceDeleted(event)
	case approval.EventMonthSubmitted:
		var p approval.MonthSubmittedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		v.summaryFor(p.TenantID, p.MemberID, p.Month).ApprovalStatus = "SUBMITTED"
	case approval.EventMonthApproved, approval.EventMonthRejected:
		return v.applyReview(event)
	}
	return nil
}

func (v *SummaryView) applyEntryCreated(event eventlog.Event, p worklog.EntryCreatedPayload) error {
	entryID, err := id.ParseEntryID(event.AggregateID)
	if err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	month, err := monthOfDate(p.Date)
	if err != nil {
		return err
	}
	v.entries[entryID] = entryFacts{tenant: p.TenantID, member: p.MemberID, month: month, hours: p.Hours}
	s := v.summaryFor(p.TenantID, p.MemberID, month)
	s.LoggedHours += p.Hours
	s.EntryCount++
	return nil
}

func (v *SummaryView) applyEntryEdited(event eventlog.Event, p worklog.EntryEditedPayload) error {
	entryID, err := id.ParseEntryID(event.AggregateID)
	if err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	facts, ok := v.entries[entryID]
	if !ok {
		// Creation event missing from the feed slice; nothing to adjust.
		return nil
	}
	month, err := monthOfDate(p.Date)
	if err != nil {
		return err
	}
	old := v.summaryFor(facts.tenant, facts.member, facts.month)
	old.LoggedHours -= facts.hours
	old.EntryCount--

	facts.month = month
	facts.hours = p.Hours
	v.entries[entryID] = facts

	s := v.summaryFor(facts.tenant, facts.member, month)
	s.LoggedHours += p.Hours
	s.EntryCount++
	return nil
}

func (v *SummaryView) applyEntryDeleted(event eventlog.Event) error {
	entryID, err := id.ParseEntryID(event.AggregateID)
	if err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	facts, ok := v.entries[entryID]
	if !ok {
		return nil
	}
	delete(v.entries, entryID)
	s := v.summaryFor(facts.tenant, facts.member, facts.month)
	s.LoggedHours -= facts.hours
	s.EntryCount--
	return nil
}

func (v *SummaryView) applyAbsenceCreated(event eventlog.Event, p absence.AbsenceCreatedPayload) error {
	absenceID, err := id.ParseAbsenceID(event.AggregateID)
	if err != nil {
		return fmt.Errorf("absence id: %w", err)
	}
	month, err := monthOfDate(p.StartDate)
	if err != nil {
		return err
	}
	v.absences[absenceID] = absenceFacts{tenant: p.TenantID, member: p.MemberID, month: month}
	v.summaryFor(p.TenantID, p.MemberID, month).AbsenceCount++
	return nil
}

func (v *SummaryView) applyAbsenceDeleted(event eventlog.Event) error {
	absenceID, err := id.ParseAbsenceID(event.AggregateID)
	if err != nil {
		return fmt.Errorf("absence id: %w", err)
	}
	facts, ok := v.absences[absenceID]
	if !ok {
		return nil
	}
	delete(v.absences, absenceID)
	v.summaryFor(facts.tenant, facts.member, facts.month).AbsenceCount--
	return nil
}

func (v *SummaryView) applyReview(event eventlog.Event) error {
	var p approval.ReviewPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}
	status := "APPROVED"
	if event.Type == approval.EventMonthRejected {
		status = "REJECTED"
	}
	// Review payloads do not repeat member and month, so locate the row by
	// the deterministic approval aggregate id.
	for key, s := range v.summaries {
		if approval.ApprovalIDFor(key.member, key.month).String() == event.AggregateID {
			s.ApprovalStatus = status
			return nil
		}
	}
	return nil
}

func (v *SummaryView) summaryFor(tenantID id.TenantID, memberID id.MemberID, month id.Month) *MonthSummary {
	key := summaryKey{member: memberID, month: month}
	s, ok := v.summaries[key]
	if !ok {
		s = &MonthSummary{TenantID: tenantID, MemberID: memberID, Month: month}
		v.summaries[key] = s
	}
	return s
}

func monthOfDate(date string) (id.Month, error) {
	day, err := id.ParseDate(date)
	if err != nil {
		return id.Month{}, fmt.Errorf("summary date: %w", err)
	}
	return id.MonthOf(day), nil
}
