// Package models contains GORM-specific persistence models that map to
// database tables. They are kept separate from domain entities so the
// domain layer stays free of ORM tags; repositories map between the two.
//
// Files by bounded context:
//   - base.go: shared model embeds (BaseModel, TenantModel)
//   - schema.go: grid databases, tables, columns and rows
//   - invoicing.go: invoice sequences and e-invoice submissions
//   - tenant.go: per-tenant settings
//   - dashboard.go: dashboards and widgets
package models
