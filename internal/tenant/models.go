// Package tenant owns the Tenant and Organization aggregates. Both follow
// the administrative active↔inactive machine; deactivating a tenant is an
// immediate boundary enforcement for everything under it, checked at the
// service layer rather than by cascading status changes into every child.
package tenant

import (
	"encoding/json"
	"fmt"
	"time"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
)

const (
	EventTenantCreated     eventlog.EventType = "tenant_created"
	EventTenantRenamed     eventlog.EventType = "tenant_renamed"
	EventTenantDeactivated eventlog.EventType = "tenant_deactivated"
	EventTenantReactivated eventlog.EventType = "tenant_reactivated"

	EventOrganizationCreated     eventlog.EventType = "organization_created"
	EventOrganizationRenamed     eventlog.EventType = "organization_renamed"
	EventOrganizationDeactivated eventlog.EventType = "organization_deactivated"
	EventOrganizationReactivated eventlog.EventType = "organization_reactivated"
)

// NamePayload carries creation and rename facts.
type NamePayload struct {
	Name string `json:"name"`
}

// OrganizationCreatedPayload ties an organization to its tenant.
type OrganizationCreatedPayload struct {
	TenantID id.TenantID `json:"tenant_id"`
	Name     string      `json:"name"`
}

// Tenant is the folded state of one tenant stream.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status transitions: active ↔ inactive only
type Tenant struct {
	ID        id.TenantID      `json:"id"`
	Name      string           `json:"name"`
	Stat      aggregate.Status `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (t *Tenant) AggregateType() eventlog.AggregateType { return eventlog.AggregateTenant }

func (t *Tenant) Status() aggregate.Status { return t.Stat }

func (t *Tenant) IsActive() bool { return t.Stat == aggregate.StatusActive }

func (t *Tenant) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventTenantCreated:
		var payload NamePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		tenantID, err := id.ParseTenantID(event.AggregateID)
		if err != nil {
			return err
		}
		t.ID = tenantID
		t.Name = payload.Name
		t.Stat = aggregate.StatusActive
		t.CreatedAt = event.OccurredAt
	case EventTenantRenamed:
		var payload NamePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		t.Name = payload.Name
	case EventTenantDeactivated:
		t.Stat = aggregate.StatusInactive
	case EventTenantReactivated:
		t.Stat = aggregate.StatusActive
	}
	t.UpdatedAt = event.OccurredAt
	return nil
}

// Organization is the folded state of one organization stream.
type Organization struct {
	ID        id.OrganizationID `json:"id"`
	TenantID  id.TenantID       `json:"tenant_id"`
	Name      string            `json:"name"`
	Stat      aggregate.Status  `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (o *Organization) AggregateType() eventlog.AggregateType { return eventlog.AggregateOrganization }

func (o *Organization) Status() aggregate.Status { return o.Stat }

func (o *Organization) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventOrganizationCreated:
		var payload OrganizationCreatedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		orgID, err := id.ParseOrganizationID(event.AggregateID)
		if err != nil {
			return err
		}
		o.ID = orgID
		o.TenantID = payload.TenantID
		o.Name = payload.Name
		o.Stat = aggregate.StatusActive
		o.CreatedAt = event.OccurredAt
	case EventOrganizationRenamed:
		var payload NamePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		o.Name = payload.Name
	case EventOrganizationDeactivated:
		o.Stat = aggregate.StatusInactive
	case EventOrganizationReactivated:
		o.Stat = aggregate.StatusActive
	}
	o.UpdatedAt = event.OccurredAt
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("name must be 128 characters or less")
	}
	return nil
}
