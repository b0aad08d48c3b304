package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP. Para errores del motor de posteo, Code es
// el discriminante estable y los campos opcionales llevan el payload estructurado.
type ErrorResponse struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	EntityID   string              `json:"entity_id,omitempty"`
	ItemID     string              `json:"item_id,omitempty"`
	LocationID string              `json:"location_id,omitempty"`
	UOM        string              `json:"uom,omitempty"`
	Requested  string              `json:"requested,omitempty"`
	Available  string              `json:"available,omitempty"`
	Shortfalls []ShortfallResponse `json:"shortfalls,omitempty"`
}

// ShortfallResponse faltante agregado por (ítem, ubicación) en un rechazo
// por stock insuficiente; el documento puede tener más de uno.
type ShortfallResponse struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	UOM        string `json:"uom"`
	Requested  string `json:"requested"`
	Available  string `json:"available"`
}
