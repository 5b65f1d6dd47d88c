package inventory

import (
	"fmt"

	"github.com/jhoicas/ordenes-api/internal/domain"
	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// Effect efecto de stock de una línea de orden sobre una bodega, por unidad.
type Effect struct {
	WarehouseID        string
	Sign               int // +1 entrada, -1 salida
	Kind               entity.MovementKind
	RelatedWarehouseID string
}

// Effects devuelve los efectos de stock de un tipo de orden (servicio de dominio).
// En traslados warehouseID es el destino y sourceWarehouseID el origen.
// La proforma no mueve stock y devuelve una lista vacía.
func Effects(t entity.OrderType, warehouseID, sourceWarehouseID string) ([]Effect, error) {
	switch t {
	case entity.OrderTypeSale:
		return []Effect{{WarehouseID: warehouseID, Sign: -1, Kind: entity.MovementKindSale}}, nil
	case entity.OrderTypePurchase:
		return []Effect{{WarehouseID: warehouseID, Sign: 1, Kind: entity.MovementKindPurchase}}, nil
	case entity.OrderTypeSaleReturn:
		return []Effect{{WarehouseID: warehouseID, Sign: 1, Kind: entity.MovementKindReturnIn}}, nil
	case entity.OrderTypePurchaseReturn:
		return []Effect{{WarehouseID: warehouseID, Sign: -1, Kind: entity.MovementKindReturnOut}}, nil
	case entity.OrderTypeStockTransfer:
		if sourceWarehouseID == "" || sourceWarehouseID == warehouseID {
			return nil, fmt.Errorf("%w: traslado requiere bodegas origen y destino distintas", domain.ErrInvalidInput)
		}
		return []Effect{
			{WarehouseID: sourceWarehouseID, Sign: -1, Kind: entity.MovementKindTransferOut, RelatedWarehouseID: warehouseID},
			{WarehouseID: warehouseID, Sign: 1, Kind: entity.MovementKindTransferIn, RelatedWarehouseID: sourceWarehouseID},
		}, nil
	case entity.OrderTypeProforma:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: tipo de orden desconocido %q", domain.ErrInvalidInput, t)
	}
}
