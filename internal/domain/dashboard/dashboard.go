package dashboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/shared"
)

// WidgetType is the kind of dashboard widget
type WidgetType string

const (
	WidgetChart WidgetType = "chart"
	WidgetTable WidgetType = "table"
	WidgetKPI   WidgetType = "kpi"
	WidgetText  WidgetType = "text"
)

// IsValid reports whether the widget type is known
func (w WidgetType) IsValid() bool {
	switch w {
	case WidgetChart, WidgetTable, WidgetKPI, WidgetText:
		return true
	}
	return false
}

// Dashboard is a named collection of widgets over a tenant's tables.
// Layout is an opaque JSON document owned by the frontend.
type Dashboard struct {
	shared.TenantEntity
	DatabaseID  uuid.UUID
	Name        string
	Description string
	Layout      string
	Widgets     []Widget
}

// NewDashboard creates a dashboard definition
func NewDashboard(tenantID, databaseID uuid.UUID, name, description string) (*Dashboard, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: dashboard name is required", shared.ErrInvalidInput)
	}
	return &Dashboard{
		TenantEntity: shared.NewTenantEntity(tenantID),
		DatabaseID:   databaseID,
		Name:         name,
		Description:  description,
		Layout:       "{}",
	}, nil
}

// Widget is one element on a dashboard. Config is widget-type-specific
// JSON; TableID optionally binds the widget to a backing table.
type Widget struct {
	shared.BaseEntity
	DashboardID uuid.UUID
	Type        WidgetType
	Title       string
	Config      string
	TableID     *uuid.UUID
	Position    int
}

// NewWidget creates a widget after validating its type and config JSON
func NewWidget(dashboardID uuid.UUID, widgetType WidgetType, title, config string) (*Widget, error) {
	if !widgetType.IsValid() {
		return nil, fmt.Errorf("%w: unknown widget type %q", shared.ErrInvalidInput, widgetType)
	}
	if config == "" {
		config = "{}"
	}
	if !json.Valid([]byte(config)) {
		return nil, fmt.Errorf("%w: widget config must be valid JSON", shared.ErrInvalidInput)
	}
	return &Widget{
		BaseEntity:  shared.NewBaseEntity(),
		DashboardID: dashboardID,
		Type:        widgetType,
		Title:       title,
		Config:      config,
	}, nil
}

// Repository persists dashboards and widgets. FindByID loads widgets.
type Repository interface {
	Save(ctx context.Context, d *Dashboard) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Dashboard, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Dashboard], error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	SaveWidget(ctx context.Context, w *Widget) error
	DeleteWidget(ctx context.Context, dashboardID, widgetID uuid.UUID) error
}
