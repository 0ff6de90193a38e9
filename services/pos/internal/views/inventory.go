package views

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/shopspring/decimal"
)

// Inventory lists materials and flags those at or below the warn quantity.
type Inventory struct {
	svc          ui.Services
	backend      OrderBackend
	warnQuantity float64
}

func NewInventory(svc ui.Services, be OrderBackend, warnQuantity float64) (*Inventory, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	return &Inventory{svc: svc, backend: be, warnQuantity: warnQuantity}, nil
}

func (v *Inventory) ID() router.ViewID { return router.ViewInventory }

func (v *Inventory) Title() string { return "Inventory" }

func (v *Inventory) Template() string { return "inventory.html" }

type materialRow struct {
	backend.Material
	Stock    string
	Value    string
	Low      bool
	Purchase int
}

func (v *Inventory) Load(r *http.Request) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"WarnQuantity": v.warnQuantity,
		"Materials":    []materialRow{},
		"LowCount":     0,
	}

	materials, err := v.backend.ListMaterials(r.Context())
	if err != nil {
		return data, fmt.Errorf("cannot list materials: %w", err)
	}

	rows := make([]materialRow, 0, len(materials))
	low := 0
	for _, m := range materials {
		row := materialRow{
			Material: m,
			Stock:    fmt.Sprintf("%s %s", decimal.NewFromFloat(m.Quantity).String(), m.Unit),
			Value:    money(stockValue(m)),
			Low:      m.Quantity <= v.warnQuantity,
			Purchase: len(m.Entries),
		}
		if row.Low {
			low++
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Low != rows[j].Low {
			return rows[i].Low
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	data["Materials"] = rows
	data["LowCount"] = low
	return data, nil
}

// stockValue prices the remaining quantity of each purchase at its unit
// purchase price.
func stockValue(m backend.Material) decimal.Decimal {
	total := decimal.Zero
	for _, e := range m.Entries {
		if e.PurchaseQuantity <= 0 {
			continue
		}
		unit := decimal.NewFromFloat(e.PurchasePrice).Div(decimal.NewFromFloat(e.PurchaseQuantity))
		total = total.Add(unit.Mul(decimal.NewFromFloat(e.Quantity)))
	}
	return total
}
