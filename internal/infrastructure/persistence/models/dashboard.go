package models

import (
	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/dashboard"
)

// DashboardModel is the persistence model for a dashboard
type DashboardModel struct {
	TenantModel
	DatabaseID  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Name        string        `gorm:"type:varchar(200);not null"`
	Description string        `gorm:"type:text"`
	Layout      string        `gorm:"type:text;not null;default:'{}'"`
	Widgets     []WidgetModel `gorm:"foreignKey:DashboardID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DashboardModel) TableName() string {
	return "dashboards"
}

// ToDomain converts the persistence model to a domain Dashboard
func (m *DashboardModel) ToDomain() *dashboard.Dashboard {
	d := &dashboard.Dashboard{
		TenantEntity: m.TenantModel.ToDomain(),
		DatabaseID:   m.DatabaseID,
		Name:         m.Name,
		Description:  m.Description,
		Layout:       m.Layout,
	}
	d.Widgets = make([]dashboard.Widget, 0, len(m.Widgets))
	for i := range m.Widgets {
		d.Widgets = append(d.Widgets, *m.Widgets[i].ToDomain())
	}
	return d
}

// FromDomain populates the persistence model from a domain Dashboard
func (m *DashboardModel) FromDomain(d *dashboard.Dashboard) {
	m.FromDomainTenantEntity(d.TenantEntity)
	m.DatabaseID = d.DatabaseID
	m.Name = d.Name
	m.Description = d.Description
	m.Layout = d.Layout
	m.Widgets = make([]WidgetModel, 0, len(d.Widgets))
	for i := range d.Widgets {
		var w WidgetModel
		w.FromDomain(&d.Widgets[i])
		m.Widgets = append(m.Widgets, w)
	}
}

// WidgetModel is the persistence model for a dashboard widget
type WidgetModel struct {
	BaseModel
	DashboardID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"type:varchar(20);not null"`
	Title       string     `gorm:"type:varchar(200)"`
	Config      string     `gorm:"type:text;not null;default:'{}'"`
	TableID     *uuid.UUID `gorm:"type:uuid"`
	Position    int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (WidgetModel) TableName() string {
	return "dashboard_widgets"
}

// ToDomain converts the persistence model to a domain Widget
func (m *WidgetModel) ToDomain() *dashboard.Widget {
	return &dashboard.Widget{
		BaseEntity:  m.BaseModel.ToDomain(),
		DashboardID: m.DashboardID,
		Type:        dashboard.WidgetType(m.Type),
		Title:       m.Title,
		Config:      m.Config,
		TableID:     m.TableID,
		Position:    m.Position,
	}
}

// FromDomain populates the persistence model from a domain Widget
func (m *WidgetModel) FromDomain(w *dashboard.Widget) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.DashboardID = w.DashboardID
	m.Type = string(w.Type)
	m.Title = w.Title
	m.Config = w.Config
	m.TableID = w.TableID
	m.Position = w.Position
}
