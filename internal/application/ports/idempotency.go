package ports

import (
	"context"
	"errors"
)

// ErrRequestInFlight otra petición con la misma clave de idempotencia se está procesando.
var ErrRequestInFlight = errors.New("petición con la misma clave en proceso")

// StoredResponse respuesta guardada para repetirla ante un reintento con la misma clave.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore guarda respuestas exitosas por clave y serializa peticiones concurrentes con la misma clave.
// Get devuelve (nil, nil) si la clave no tiene respuesta guardada.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, resp StoredResponse) error
	Lock(ctx context.Context, key string) (release func(), err error)
}
