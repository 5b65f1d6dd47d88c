package dto

const (
	defaultLimit = 20
	maxLimit     = 100
)

// PageRequest limit/offset de los listados (query string).
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa un limit ausente y acota valores fuera de rango.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = defaultLimit
	case p.Limit > maxLimit:
		p.Limit = maxLimit
	}
	p.Offset = max(p.Offset, 0)
}

// PageResponse total es el número de filas que cumplen el filtro, sin paginar.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

func NewPage(limit, offset, total int) PageResponse {
	return PageResponse{Limit: limit, Offset: offset, Total: total}
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
