package dto

import "github.com/shopspring/decimal"

// CreateStockAdjustmentRequest body para POST /api/stock-adjustments.
type CreateStockAdjustmentRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	Type        string          `json:"type" validate:"required,oneof=add subtract"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Notes       string          `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateStockAdjustmentRequest body para PUT /api/stock-adjustments/:id.
// Producto y bodega no se pueden cambiar; si vienen deben coincidir con los actuales.
type UpdateStockAdjustmentRequest struct {
	ProductID   string          `json:"product_id,omitempty" validate:"omitempty,uuid"`
	WarehouseID string          `json:"warehouse_id,omitempty" validate:"omitempty,uuid"`
	Type        string          `json:"type" validate:"required,oneof=add subtract"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Notes       string          `json:"notes,omitempty" validate:"max=1000"`
}

// StockAdjustmentResponse ajuste en respuestas.
type StockAdjustmentResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// StockAdjustmentListRequest filtros de GET /api/stock-adjustments.
type StockAdjustmentListRequest struct {
	ProductID   string `query:"product_id" validate:"omitempty,uuid"`
	WarehouseID string `query:"warehouse_id" validate:"omitempty,uuid"`
	Type        string `query:"type" validate:"omitempty,oneof=add subtract"`
	PageRequest
}

// StockAdjustmentListResponse listado paginado de ajustes.
type StockAdjustmentListResponse struct {
	Items []StockAdjustmentResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// StockHistoryRequest filtros de GET /api/stock-history.
type StockHistoryRequest struct {
	ProductID   string `query:"product_id" validate:"omitempty,uuid"`
	WarehouseID string `query:"warehouse_id" validate:"omitempty,uuid"`
	Kind        string `query:"kind"`
	ReferenceID string `query:"reference_id" validate:"omitempty,uuid"`
	PageRequest
}

// StockMovementResponse fila del libro de stock.
type StockMovementResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	WarehouseID        string          `json:"warehouse_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	Kind               string          `json:"kind"`
	ReferenceKind      string          `json:"reference_kind"`
	ReferenceID        string          `json:"reference_id"`
	RelatedWarehouseID *string         `json:"related_warehouse_id,omitempty"`
	ReversesMovementID *string         `json:"reverses_movement_id,omitempty"`
	Remark             string          `json:"remark,omitempty"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          string          `json:"created_at"`
}

// StockHistoryResponse página del historial.
type StockHistoryResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// StockLevelResponse stock materializado de un par (producto, bodega).
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Opening     decimal.Decimal `json:"opening"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// StockListResponse listado de stock.
type StockListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
