package tenant

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/requestcontext"
)

// Service orchestrates tenant and organization lifecycle commands.
type Service struct {
	engine *aggregate.Engine
}

func NewService(engine *aggregate.Engine) *Service {
	return &Service{engine: engine}
}

func newTenantState() aggregate.State       { return &Tenant{} }
func newOrganizationState() aggregate.State { return &Organization{} }

// CreateTenant starts a new active tenant stream.
func (s *Service) CreateTenant(ctx context.Context, name string) (id.TenantID, int64, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return id.TenantID{}, 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid tenant name")
	}

	tenantID := id.TenantID(uuid.New())
	now := requestcontext.Now(ctx)

	version, err := s.engine.Execute(ctx, tenantID.String(), newTenantState, false,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if version != 0 {
				return nil, dErrors.Newf(dErrors.CodeConflict, "tenant %s already exists", tenantID)
			}
			event, err := eventlog.NewEvent(tenantID.String(), eventlog.AggregateTenant,
				EventTenantCreated, now, NamePayload{Name: name})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
	if err != nil {
		return id.TenantID{}, 0, err
	}
	return tenantID, version, nil
}

// RenameTenant replaces the tenant name.
func (s *Service) RenameTenant(ctx context.Context, tenantID id.TenantID, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid tenant name")
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, tenantID.String(), newTenantState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			tenant := state.(*Tenant)
			if tenant.Name == name {
				return nil, nil
			}
			event, err := eventlog.NewEvent(tenantID.String(), eventlog.AggregateTenant,
				EventTenantRenamed, now, NamePayload{Name: name})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// DeactivateTenant transitions a tenant to inactive.
func (s *Service) DeactivateTenant(ctx context.Context, tenantID id.TenantID) (int64, error) {
	return s.setTenantStatus(ctx, tenantID, aggregate.StatusInactive, EventTenantDeactivated)
}

// ReactivateTenant transitions a tenant back to active.
func (s *Service) ReactivateTenant(ctx context.Context, tenantID id.TenantID) (int64, error) {
	return s.setTenantStatus(ctx, tenantID, aggregate.StatusActive, EventTenantReactivated)
}

func (s *Service) setTenantStatus(ctx context.Context, tenantID id.TenantID, target aggregate.Status, eventType eventlog.EventType) (int64, error) {
	if tenantID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, tenantID.String(), newTenantState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if err := aggregate.Transition(state.AggregateType(), state.Status(), target); err != nil {
				return nil, err
			}
			event, err := eventlog.NewEvent(tenantID.String(), eventlog.AggregateTenant,
				eventType, now, nil)
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}

// GetTenant rehydrates and returns the current tenant state.
func (s *Service) GetTenant(ctx context.Context, tenantID id.TenantID) (*Tenant, int64, error) {
	if tenantID.IsNil() {
		return nil, 0, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	tenant := &Tenant{}
	version, err := s.engine.Rehydrate(ctx, tenantID.String(), tenant)
	if err != nil {
		return nil, 0, err
	}
	if version == 0 {
		return nil, 0, dErrors.Newf(dErrors.CodeNotFound, "tenant %s not found", tenantID)
	}
	return tenant, version, nil
}

// CreateOrganization starts a new active organization under a tenant. The
// tenant must exist and be active.
func (s *Service) CreateOrganization(ctx context.Context, tenantID id.TenantID, name string) (id.OrganizationID, int64, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return id.OrganizationID{}, 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid organization name")
	}

	tenant, _, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return id.OrganizationID{}, 0, err
	}
	if !tenant.IsActive() {
		return id.OrganizationID{}, 0, dErrors.Newf(dErrors.CodeInvariantViolation,
			"tenant %s is inactive", tenantID)
	}

	orgID := id.OrganizationID(uuid.New())
	now := requestcontext.Now(ctx)

	version, err := s.engine.Execute(ctx, orgID.String(), newOrganizationState, false,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if version != 0 {
				return nil, dErrors.Newf(dErrors.CodeConflict, "organization %s already exists", orgID)
			}
			event, err := eventlog.NewEvent(orgID.String(), eventlog.AggregateOrganization,
				EventOrganizationCreated, now, OrganizationCreatedPayload{TenantID: tenantID, Name: name})
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
	if err != nil {
		return id.OrganizationID{}, 0, err
	}
	return orgID, version, nil
}

// DeactivateOrganization transitions an organization to inactive.
func (s *Service) DeactivateOrganization(ctx context.Context, orgID id.OrganizationID) (int64, error) {
	return s.setOrganizationStatus(ctx, orgID, aggregate.StatusInactive, EventOrganizationDeactivated)
}

// ReactivateOrganization transitions an organization back to active.
func (s *Service) ReactivateOrganization(ctx context.Context, orgID id.OrganizationID) (int64, error) {
	return s.setOrganizationStatus(ctx, orgID, aggregate.StatusActive, EventOrganizationReactivated)
}

func (s *Service) setOrganizationStatus(ctx context.Context, orgID id.OrganizationID, target aggregate.Status, eventType eventlog.EventType) (int64, error) {
	if orgID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "organization id is required")
	}
	now := requestcontext.Now(ctx)

	return s.engine.Execute(ctx, orgID.String(), newOrganizationState, true,
		func(state aggregate.State, version int64) ([]eventlog.Event, error) {
			if err := aggregate.Transition(state.AggregateType(), state.Status(), target); err != nil {
				return nil, err
			}
			event, err := eventlog.NewEvent(orgID.String(), eventlog.AggregateOrganization,
				eventType, now, nil)
			if err != nil {
				return nil, err
			}
			return []eventlog.Event{event}, nil
		})
}
