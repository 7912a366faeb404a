package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/technova/storefront-backend/pkg/config"
)

// Totals is the priced breakdown of an order in VND.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shippingFee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// PricedLine is one cart line quoted at its effective unit price.
type PricedLine struct {
	UnitPrice int64
	Quantity  int
}

// ComputeTotals prices an order: subtotal over effective unit prices, flat
// shipping waived above the free threshold, tax on the subtotal using
// decimal math rounded to whole VND.
func ComputeTotals(lines []PricedLine, cfg config.CheckoutConfig) (Totals, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return Totals{}, fmt.Errorf("invalid tax rate %q: %w", cfg.TaxRate, err)
	}
	if taxRate.IsNegative() {
		return Totals{}, fmt.Errorf("tax rate must not be negative")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		lineTotal := decimal.NewFromInt(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
	}

	shipping := decimal.NewFromInt(cfg.ShippingFee)
	if cfg.FreeShippingThreshold > 0 && subtotal.GreaterThanOrEqual(decimal.NewFromInt(cfg.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate).Round(0)
	total := subtotal.Add(shipping).Add(tax)

	return Totals{
		Subtotal:    subtotal.IntPart(),
		ShippingFee: shipping.IntPart(),
		Tax:         tax.IntPart(),
		Total:       total.IntPart(),
	}, nil
}
