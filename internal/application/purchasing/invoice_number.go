package purchasing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceNumberGenerator genera números de factura "PO-YYYYMMDDhhmmss-XXXXXX" (hora UTC más
// un sufijo aleatorio). Dos órdenes en el mismo segundo difieren en el sufijo.
type InvoiceNumberGenerator struct {
	now    func() time.Time
	suffix func() string
}

// NewInvoiceNumberGenerator generador con reloj real y sufijo tomado de un UUID v4.
func NewInvoiceNumberGenerator() *InvoiceNumberGenerator {
	return &InvoiceNumberGenerator{
		now: time.Now,
		suffix: func() string {
			return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
		},
	}
}

// Next devuelve un número nuevo.
func (g *InvoiceNumberGenerator) Next() string {
	return "PO-" + g.now().UTC().Format("20060102150405") + "-" + g.suffix()
}
