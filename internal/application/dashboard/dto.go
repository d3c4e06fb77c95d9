package dashboard

import (
	"time"

	"github.com/gridbase/backend/internal/domain/dashboard"
)

// CreateDashboardRequest creates a dashboard in a logical database
type CreateDashboardRequest struct {
	DatabaseID  string `json:"database_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateDashboardRequest renames a dashboard or replaces its layout.
// Nil fields are left unchanged.
type UpdateDashboardRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Layout      *string `json:"layout"`
}

// CreateWidgetRequest adds a widget to a dashboard
type CreateWidgetRequest struct {
	Type    string  `json:"type" binding:"required"`
	Title   string  `json:"title" binding:"omitempty,max=255"`
	Config  string  `json:"config"`
	TableID *string `json:"table_id" binding:"omitempty,uuid"`
}

// UpdateWidgetRequest changes a widget's title, config or position
type UpdateWidgetRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=255"`
	Config   *string `json:"config"`
	Position *int    `json:"position" binding:"omitempty,min=0"`
}

// ListDashboardsRequest pages and filters the dashboard listing
type ListDashboardsRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Search     string `form:"search"`
	DatabaseID string `form:"database_id"`
}

// DashboardResponse is the dashboard representation returned to clients
type DashboardResponse struct {
	ID          string           `json:"id"`
	DatabaseID  string           `json:"database_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Layout      string           `json:"layout"`
	Widgets     []WidgetResponse `json:"widgets"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// WidgetResponse is the widget representation returned to clients
type WidgetResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Config   string `json:"config"`
	TableID  string `json:"table_id,omitempty"`
	Position int    `json:"position"`
}

func toDashboardResponse(d *dashboard.Dashboard) *DashboardResponse {
	widgets := make([]WidgetResponse, 0, len(d.Widgets))
	for i := range d.Widgets {
		widgets = append(widgets, toWidgetResponse(&d.Widgets[i]))
	}
	return &DashboardResponse{
		ID:          d.ID.String(),
		DatabaseID:  d.DatabaseID.String(),
		Name:        d.Name,
		Description: d.Description,
		Layout:      d.Layout,
		Widgets:     widgets,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toWidgetResponse(w *dashboard.Widget) WidgetResponse {
	resp := WidgetResponse{
		ID:       w.ID.String(),
		Type:     string(w.Type),
		Title:    w.Title,
		Config:   w.Config,
		Position: w.Position,
	}
	if w.TableID != nil {
		resp.TableID = w.TableID.String()
	}
	return resp
}
