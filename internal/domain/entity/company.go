package entity

import "time"

// Company representa una organización/tenant del sistema. Todo registro del ledger
// y de las órdenes de trabajo pertenece a exactamente una empresa.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
