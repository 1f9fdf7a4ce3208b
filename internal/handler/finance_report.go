package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/locale"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/service/finance"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

type FinanceReportHandler struct {
	Revenue  repository.RevenueRepository
	Expenses repository.ExpenseRepository
}

func (h FinanceReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/finance", h.report)
	r.Get("/reports/finance/series", h.series)
	r.Get("/reports/finance/export", h.export)
}

type financeWindow struct {
	rng   finance.Range
	stats []domain.RevenueStats
	slips []domain.ExpenseSlip
}

// loadWindows fetches records for the main range and, when a comparison mode
// is requested, the derived comparison range. The two windows are
// independent, so they load concurrently.
func (h FinanceReportHandler) loadWindows(r *http.Request) (main financeWindow, cmp *financeWindow, err error) {
	from, err := parseRequiredDateQuery(r, "from")
	if err != nil {
		return main, nil, err
	}
	to, err := parseRequiredDateQuery(r, "to")
	if err != nil {
		return main, nil, err
	}
	if to.Before(from) {
		return main, nil, fmt.Errorf("'to' must not be before 'from'")
	}
	main.rng = finance.Range{From: from, To: to}

	mode := finance.ComparisonMode(r.URL.Query().Get("compare"))
	switch mode {
	case finance.CompareNone, finance.ComparePrevious, finance.CompareLastMonth, finance.CompareLastYear:
	default:
		return main, nil, fmt.Errorf("invalid compare mode (use previous, last_month or last_year)")
	}
	if cmpRange, ok := finance.ComparisonRange(main.rng, mode); ok {
		cmp = &financeWindow{rng: cmpRange}
	}

	g, ctx := errgroup.WithContext(r.Context())
	windows := []*financeWindow{&main}
	if cmp != nil {
		windows = append(windows, cmp)
	}
	for _, wnd := range windows {
		g.Go(func() error {
			stats, err := h.Revenue.ListRange(ctx, wnd.rng.From, wnd.rng.To)
			if err != nil {
				return err
			}
			wnd.stats = stats
			return nil
		})
		g.Go(func() error {
			slips, err := h.Expenses.ListRange(ctx, wnd.rng.From, wnd.rng.To)
			if err != nil {
				return err
			}
			wnd.slips = slips
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return main, nil, err
	}
	return main, cmp, nil
}

func (h FinanceReportHandler) report(w http.ResponseWriter, r *http.Request) {
	main, cmp, err := h.loadWindows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep := finance.BuildReport(main.rng, main.stats, main.slips)
	resp := reportPayloadFinance(rep)

	if cmp != nil {
		cmpRep := finance.BuildReport(cmp.rng, cmp.stats, cmp.slips)
		comparison := reportPayloadFinance(cmpRep)
		if pct, show := finance.PercentChange(rep.TotalRevenue, cmpRep.TotalRevenue); show {
			comparison["revenueChangePercent"] = pct
		}
		if pct, show := finance.PercentChange(rep.TotalExpense, cmpRep.TotalExpense); show {
			comparison["expenseChangePercent"] = pct
		}
		if pct, show := finance.PercentChange(rep.TotalProfit, cmpRep.TotalProfit); show {
			comparison["profitChangePercent"] = pct
		}
		resp["comparison"] = comparison
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h FinanceReportHandler) series(w http.ResponseWriter, r *http.Request) {
	main, cmp, err := h.loadWindows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mainSeries := finance.BuildSeries(main.rng, main.stats, main.slips)
	resp := map[string]any{
		"labels":  mainSeries.Labels,
		"revenue": mainSeries.Revenue,
		"expense": mainSeries.Expense,
	}
	if cmp != nil {
		// Comparison records are bucketed against the main range's label
		// axis; anything outside it falls away.
		cmpSeries := finance.BuildSeries(main.rng, cmp.stats, cmp.slips)
		resp["comparison"] = map[string]any{
			"revenue": cmpSeries.Revenue,
			"expense": cmpSeries.Expense,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h FinanceReportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	main, _, err := h.loadWindows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep := finance.BuildReport(main.rng, main.stats, main.slips)
	name := fmt.Sprintf("finance_%s_%s", main.rng.From.Format(dateLayout), main.rng.To.Format(dateLayout))

	switch format {
	case "csv":
		data, err := exportFinanceCSV(rep)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", name))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportFinanceXLSX(rep)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", name))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportFinanceCSV(rep finance.Report) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"section", "name", "amount"})
	_ = w.Write([]string{"revenue", "cash", strconv.FormatInt(rep.RevenueByMethod.Cash, 10)})
	_ = w.Write([]string{"revenue", "shopeeFood", strconv.FormatInt(rep.RevenueByMethod.ShopeeFood, 10)})
	_ = w.Write([]string{"revenue", "grabFood", strconv.FormatInt(rep.RevenueByMethod.GrabFood, 10)})
	_ = w.Write([]string{"revenue", "bankTransfer", strconv.FormatInt(rep.RevenueByMethod.BankTransfer, 10)})
	_ = w.Write([]string{"revenue", "vietqr", strconv.FormatInt(rep.RevenueByMethod.VietQR, 10)})
	for _, b := range rep.ExpenseBuckets {
		_ = w.Write([]string{"expense", b.Name, strconv.FormatInt(b.Amount, 10)})
	}
	_ = w.Write([]string{"total", "revenue", strconv.FormatInt(rep.TotalRevenue, 10)})
	_ = w.Write([]string{"total", "expense", strconv.FormatInt(rep.TotalExpense, 10)})
	_ = w.Write([]string{"total", "profit", strconv.FormatInt(rep.TotalProfit, 10)})
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportFinanceXLSX(rep finance.Report) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Báo cáo tài chính"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	rows := [][]any{
		{"Khoảng", locale.FormatDate(rep.Range.From) + " - " + locale.FormatDate(rep.Range.To), ""},
		{},
		{"Doanh thu", "", ""},
		{"", "Tiền mặt", rep.RevenueByMethod.Cash},
		{"", "ShopeeFood", rep.RevenueByMethod.ShopeeFood},
		{"", "GrabFood", rep.RevenueByMethod.GrabFood},
		{"", "Chuyển khoản", rep.RevenueByMethod.BankTransfer},
		{"", "VietQR", rep.RevenueByMethod.VietQR},
		{},
		{"Chi phí", "", ""},
	}
	for _, b := range rep.ExpenseBuckets {
		rows = append(rows, []any{"", b.Name, b.Amount})
	}
	rows = append(rows,
		[]any{},
		[]any{"Tổng doanh thu", "", rep.TotalRevenue},
		[]any{"Tổng chi phí", "", rep.TotalExpense},
		[]any{"Lợi nhuận", "", rep.TotalProfit},
	)
	for rIdx, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, rIdx+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 22)
	_ = f.SetColWidth(sheet, "C", "C", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reportPayloadFinance(rep finance.Report) map[string]any {
	buckets := make([]map[string]any, 0, len(rep.ExpenseBuckets))
	for _, b := range rep.ExpenseBuckets {
		buckets = append(buckets, map[string]any{
			"name":          b.Name,
			"amount":        b.Amount,
			"amountDisplay": locale.FormatVND(b.Amount),
		})
	}
	return map[string]any{
		"from":         rep.Range.From.Format(dateLayout),
		"to":           rep.Range.To.Format(dateLayout),
		"totalRevenue": rep.TotalRevenue,
		"totalExpense": rep.TotalExpense,
		"totalProfit":  rep.TotalProfit,
		"revenueByPaymentMethod": map[string]int64{
			"cash":                 rep.RevenueByMethod.Cash,
			"shopeeFood":           rep.RevenueByMethod.ShopeeFood,
			"grabFood":             rep.RevenueByMethod.GrabFood,
			"bankTransfer":         rep.RevenueByMethod.BankTransfer,
			"techcombankVietQrPro": rep.RevenueByMethod.VietQR,
		},
		"expenseBuckets": buckets,
	}
}
