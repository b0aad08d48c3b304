package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditables.
const (
	AuditActionStockOverride = "stock_override"
	AuditActionDocumentPost  = "document_post"
	AuditActionDocumentVoid  = "document_cancel"
)

// AuditLog entrada append-only del registro de auditoría. Los overrides del guard
// de stock siempre dejan exactamente una entrada en la misma transacción del posteo.
type AuditLog struct {
	ID         string
	CompanyID  string
	ActorID    string
	ActorRole  string
	Action     string // ver constantes AuditAction*
	EntityType string // ej. "work_order_material_issue"
	EntityID   string
	Detail     json.RawMessage // razón, líneas afectadas, cantidades
	CreatedAt  time.Time
}
