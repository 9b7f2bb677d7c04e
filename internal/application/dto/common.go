package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Requested/Available solo en INSUFFICIENT_INVENTORY;
// Fields solo en errores de validación (campo JSON → motivo).
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Requested *int              `json:"requested,omitempty"`
	Available *int              `json:"available,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}
