package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/dashboard"
	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// DashboardService manages dashboards and their widgets
type DashboardService struct {
	dashboardRepo dashboard.Repository
	databaseRepo  schema.DatabaseRepository
	tableRepo     schema.TableRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	dashboardRepo dashboard.Repository,
	databaseRepo schema.DatabaseRepository,
	tableRepo schema.TableRepository,
) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		databaseRepo:  databaseRepo,
		tableRepo:     tableRepo,
	}
}

// Create creates an empty dashboard
func (s *DashboardService) Create(ctx context.Context, tenantID uuid.UUID, req CreateDashboardRequest) (*DashboardResponse, error) {
	databaseID, err := uuid.Parse(req.DatabaseID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid database id")
	}
	if _, err := s.databaseRepo.FindByID(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}

	d, err := dashboard.NewDashboard(tenantID, databaseID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.dashboardRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	return toDashboardResponse(d), nil
}

// Get returns one dashboard with its widgets
func (s *DashboardService) Get(ctx context.Context, tenantID, dashboardID uuid.UUID) (*DashboardResponse, error) {
	d, err := s.dashboardRepo.FindByID(ctx, tenantID, dashboardID)
	if err != nil {
		return nil, err
	}
	return toDashboardResponse(d), nil
}

// List returns a page of the tenant's dashboards
func (s *DashboardService) List(ctx context.Context, tenantID uuid.UUID, req ListDashboardsRequest) (*shared.Paginated[DashboardResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	if req.DatabaseID != "" {
		databaseID, err := uuid.Parse(req.DatabaseID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid database id")
		}
		filter.Filters["database_id"] = databaseID
	}

	page, err := s.dashboardRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]DashboardResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *toDashboardResponse(&page.Items[i]))
	}
	return &shared.Paginated[DashboardResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update applies a partial dashboard update
func (s *DashboardService) Update(ctx context.Context, tenantID, dashboardID uuid.UUID, req UpdateDashboardRequest) (*DashboardResponse, error) {
	d, err := s.dashboardRepo.FindByID(ctx, tenantID, dashboardID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "Dashboard name cannot be empty")
		}
		d.Name = *req.Name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Layout != nil {
		d.Layout = *req.Layout
	}

	if err := s.dashboardRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	return toDashboardResponse(d), nil
}

// Delete removes a dashboard and its widgets
func (s *DashboardService) Delete(ctx context.Context, tenantID, dashboardID uuid.UUID) error {
	return s.dashboardRepo.Delete(ctx, tenantID, dashboardID)
}

// AddWidget appends a widget to a dashboard. A bound table must exist
// in the tenant's schema.
func (s *DashboardService) AddWidget(ctx context.Context, tenantID, dashboardID uuid.UUID, req CreateWidgetRequest) (*DashboardResponse, error) {
	d, err := s.dashboardRepo.FindByID(ctx, tenantID, dashboardID)
	if err != nil {
		return nil, err
	}

	w, err := dashboard.NewWidget(d.ID, dashboard.WidgetType(req.Type), req.Title, req.Config)
	if err != nil {
		return nil, err
	}
	if req.TableID != nil {
		tableID, err := uuid.Parse(*req.TableID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid table id")
		}
		if _, err := s.tableRepo.FindByID(ctx, tenantID, tableID); err != nil {
			return nil, err
		}
		w.TableID = &tableID
	}
	w.Position = len(d.Widgets)

	if err := s.dashboardRepo.SaveWidget(ctx, w); err != nil {
		return nil, err
	}
	d.Widgets = append(d.Widgets, *w)
	return toDashboardResponse(d), nil
}

// UpdateWidget changes one widget's title, config or position
func (s *DashboardService) UpdateWidget(ctx context.Context, tenantID, dashboardID, widgetID uuid.UUID, req UpdateWidgetRequest) (*DashboardResponse, error) {
	d, err := s.dashboardRepo.FindByID(ctx, tenantID, dashboardID)
	if err != nil {
		return nil, err
	}

	var widget *dashboard.Widget
	for i := range d.Widgets {
		if d.Widgets[i].ID == widgetID {
			widget = &d.Widgets[i]
			break
		}
	}
	if widget == nil {
		return nil, shared.ErrNotFound
	}

	if req.Title != nil {
		widget.Title = *req.Title
	}
	if req.Config != nil {
		updated, err := dashboard.NewWidget(d.ID, widget.Type, widget.Title, *req.Config)
		if err != nil {
			return nil, err
		}
		widget.Config = updated.Config
	}
	if req.Position != nil {
		widget.Position = *req.Position
	}

	if err := s.dashboardRepo.SaveWidget(ctx, widget); err != nil {
		return nil, err
	}
	return toDashboardResponse(d), nil
}

// DeleteWidget removes one widget from a dashboard
func (s *DashboardService) DeleteWidget(ctx context.Context, tenantID, dashboardID, widgetID uuid.UUID) error {
	if _, err := s.dashboardRepo.FindByID(ctx, tenantID, dashboardID); err != nil {
		return err
	}
	return s.dashboardRepo.DeleteWidget(ctx, dashboardID, widgetID)
}
