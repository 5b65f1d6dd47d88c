// Package invoice arma y descompone los números de factura: {prefijo}{MM}{AAAA}-{secuencia}.
package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jhoicas/ordenes-api/internal/domain/entity"
)

// Prefijos fijos por tipo de orden.
const (
	PrefixPurchase       = "PUR"
	PrefixPurchaseReturn = "PRT"
	PrefixTransfer       = "TRF"
	PrefixProforma       = "PF"
	PrefixSaleReturn     = "R"
	DefaultSalePrefix    = "INV"
	DefaultProforma      = "PFINV"
)

// Settings prefijos configurados para la orden. WarehousePrefix tiene prioridad sobre CompanyPrefix.
type Settings struct {
	WarehousePrefix string
	CompanyPrefix   string
	DefaultPrefix   string // vacío = DefaultSalePrefix
}

func (s Settings) salePrefix() (string, bool) {
	if s.WarehousePrefix != "" {
		return s.WarehousePrefix, true
	}
	if s.CompanyPrefix != "" {
		return s.CompanyPrefix, true
	}
	if s.DefaultPrefix != "" {
		return s.DefaultPrefix, false
	}
	return DefaultSalePrefix, false
}

// Prefix devuelve el prefijo del número de factura según el tipo de orden.
func Prefix(t entity.OrderType, s Settings) string {
	switch t {
	case entity.OrderTypePurchase:
		return PrefixPurchase
	case entity.OrderTypePurchaseReturn:
		return PrefixPurchaseReturn
	case entity.OrderTypeStockTransfer:
		return PrefixTransfer
	case entity.OrderTypeSaleReturn:
		p, _ := s.salePrefix()
		return PrefixSaleReturn + p
	case entity.OrderTypeProforma:
		p, configured := s.salePrefix()
		if !configured {
			return DefaultProforma
		}
		return PrefixProforma + p
	default:
		p, _ := s.salePrefix()
		return p
	}
}

// Format arma el número: prefijo + mes (2 dígitos) + año + "-" + secuencia con 4 dígitos mínimo.
func Format(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s%02d%04d-%04d", prefix, int(date.Month()), date.Year(), seq)
}

// Fallback arma un número con sufijo de tiempo cuando se agotan los reintentos.
// La "T" impide que el número coincida con SequencePattern y altere la secuencia.
func Fallback(prefix string, date time.Time, now time.Time) string {
	return fmt.Sprintf("%s%02d%04d-T%d", prefix, int(date.Month()), date.Year(), now.UnixNano())
}

// SequencePattern devuelve la expresión regular (válida en Go y en PostgreSQL) que reconoce
// los números secuenciales de un prefijo y año, con la secuencia en el grupo 1.
func SequencePattern(prefix string, year int) string {
	return fmt.Sprintf(`^%s[0-9]{2}%04d-([0-9]+)$`, regexp.QuoteMeta(prefix), year)
}

// ParseSequence extrae la secuencia de un número; ok=false si no pertenece al prefijo y año.
func ParseSequence(number, prefix string, year int) (int64, bool) {
	re, err := regexp.Compile(SequencePattern(prefix, year))
	if err != nil {
		return 0, false
	}
	m := re.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
