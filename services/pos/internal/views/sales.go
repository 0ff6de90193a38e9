package views

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const salesLogRows = 50

// Sales shows the per-day summary and the latest sales log entries.
type Sales struct {
	svc     ui.Services
	backend OrderBackend
}

func NewSales(svc ui.Services, be OrderBackend) (*Sales, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	return &Sales{svc: svc, backend: be}, nil
}

func (v *Sales) ID() router.ViewID { return router.ViewSales }

func (v *Sales) Title() string { return "Sales" }

func (v *Sales) Template() string { return "sales.html" }

type dayRow struct {
	Day    string
	Sales  string
	Cost   string
	Profit string
}

type logRow struct {
	backend.SalesLog
	PriceText string
	CostText  string
	When      string
}

type salesSummary struct {
	Sales  string
	Cost   string
	Profit string
	Orders int
}

func (v *Sales) Load(r *http.Request) (map[string]interface{}, error) {
	var (
		logs []backend.SalesLog
		days []backend.DailySales
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		logs, err = v.backend.SalesLogs(ctx)
		if err != nil {
			return fmt.Errorf("cannot load sales logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		days, err = v.backend.SalesPerDay(ctx)
		if err != nil {
			return fmt.Errorf("cannot load sales per day: %w", err)
		}
		return nil
	})
	err := g.Wait()

	sort.SliceStable(days, func(i, j int) bool { return days[i].Day > days[j].Day })
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })

	dayRows := make([]dayRow, 0, len(days))
	for _, d := range days {
		sales := decimal.NewFromFloat(d.TotalSales)
		cost := decimal.NewFromFloat(d.TotalCost)
		dayRows = append(dayRows, dayRow{
			Day:    d.Day,
			Sales:  money(sales),
			Cost:   money(cost),
			Profit: money(sales.Sub(cost)),
		})
	}

	return map[string]interface{}{
		"Days":    dayRows,
		"Logs":    logRows(logs, salesLogRows),
		"Summary": summarise(logs),
	}, err
}

func logRows(logs []backend.SalesLog, limit int) []logRow {
	if len(logs) > limit {
		logs = logs[:limit]
	}
	rows := make([]logRow, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, logRow{
			SalesLog:  l,
			PriceText: money(decimal.NewFromFloat(l.Price)),
			CostText:  money(decimal.NewFromFloat(l.Cost)),
			When:      l.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func summarise(logs []backend.SalesLog) salesSummary {
	sales := decimal.Zero
	cost := decimal.Zero
	for _, l := range logs {
		sales = sales.Add(decimal.NewFromFloat(l.Price))
		cost = cost.Add(decimal.NewFromFloat(l.Cost))
	}
	return salesSummary{
		Sales:  money(sales),
		Cost:   money(cost),
		Profit: money(sales.Sub(cost)),
		Orders: len(logs),
	}
}
