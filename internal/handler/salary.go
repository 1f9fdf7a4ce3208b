package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/locale"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"
	"katrina-one-backend/internal/service/payroll"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

type SalaryHandler struct {
	Repo       repository.SalaryRepository
	Violations repository.ViolationRepository
	Users      repository.UserRepository
	Schedules  repository.ScheduleRepository
	Reports    repository.ReportRepository
	Logs       repository.ActivityLogRepository
	Logger     *slog.Logger
}

func (h SalaryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/salaries", h.listMonth)
	r.Get("/salaries/export", h.export)
	r.Post("/salaries/recalculate", h.recalculate)
	r.Put("/salaries/{userId}/adjustments", h.updateAdjustments)
	r.Post("/salaries/{userId}/pay", h.confirmPay)
	r.Post("/salaries/{userId}/unpay", h.revertPay)
}

// recalculate rebuilds every base payroll line for a month from the
// published schedule and the submitted reports. Manager edits (advance,
// bonus, payment state) survive the rebuild.
func (h SalaryHandler) recalculate(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		DefaultHourlyRate int64            `json:"defaultHourlyRate"`
		HourlyRates       map[string]int64 `json:"hourlyRates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.DefaultHourlyRate < 0 {
		writeError(w, http.StatusBadRequest, "defaultHourlyRate must be non-negative")
		return
	}
	rates := make(map[int64]int64, len(req.HourlyRates))
	for key, rate := range req.HourlyRates {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id in hourlyRates: "+key)
			return
		}
		if rate < 0 {
			writeError(w, http.StatusBadRequest, "hourly rates must be non-negative")
			return
		}
		rates[userID] = rate
	}

	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	users, err := h.Users.ListByRole(r.Context(), domain.RoleServer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	schedule, err := h.Schedules.ListRange(r.Context(), monthStart, monthEnd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	reports, err := h.Reports.ListRange(r.Context(), monthStart, monthEnd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := payroll.BuildMonth(payroll.MonthInputs{
		Month:       month,
		Users:       users,
		Schedule:    schedule,
		Reports:     reports,
		Rates:       rates,
		DefaultRate: req.DefaultHourlyRate,
	})
	for _, rec := range records {
		if err := h.Repo.UpsertMonth(r.Context(), rec); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	stored, violations, err := h.loadMonth(r, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(stored))
	for _, rec := range stored {
		resp = append(resp, salaryPayload(rec, violations))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h SalaryHandler) listMonth(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, violations, err := h.loadMonth(r, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		resp = append(resp, salaryPayload(rec, violations))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h SalaryHandler) loadMonth(r *http.Request, month string) ([]domain.SalaryRecord, []domain.ViolationRecord, error) {
	records, err := h.Repo.ListMonth(r.Context(), month)
	if err != nil {
		return nil, nil, err
	}
	violations, err := h.Violations.ListMonth(r.Context(), month)
	if err != nil {
		return nil, nil, err
	}
	return records, violations, nil
}

func (h SalaryHandler) updateAdjustments(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		SalaryAdvance float64 `json:"salaryAdvance"`
		Bonus         float64 `json:"bonus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	// Both figures are validated before any write; a rejected edit leaves
	// the stored record untouched.
	advance, err := payroll.ValidateAdjustment(req.SalaryAdvance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "salaryAdvance: "+err.Error())
		return
	}
	bonus, err := payroll.ValidateAdjustment(req.Bonus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bonus: "+err.Error())
		return
	}
	if err := h.Repo.UpdateAdjustments(r.Context(), userID, month, advance, bonus); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "salary record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rec, err := h.Repo.GetMonth(r.Context(), userID, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	violations, err := h.Violations.ListMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, salaryPayload(*rec, violations))
}

func (h SalaryHandler) confirmPay(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		// Amount may arrive vi-VN grouped ("1.234.567"), as typed in the
		// confirmation field.
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	rec, err := h.Repo.GetMonth(r.Context(), userID, month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "salary record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	amount, err := payroll.ParseConfirmedAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now()
	if err := payroll.ConfirmPayment(rec, amount, now); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	// Local state is only flipped above; nothing is shown as paid unless
	// the write succeeds.
	if err := h.Repo.SetPaid(r.Context(), userID, month, amount, now); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.Logs.Create(r.Context(), repository.CreateActivityLogInput{
		Title:   "Xác nhận trả lương",
		Message: fmt.Sprintf("%s %s: %s đ", rec.UserName, month, locale.FormatVND(amount)),
		Actor:   user.Name,
		Type:    domain.LogInfo,
	}); err != nil {
		h.Logger.Warn("failed to write activity log", "err", err)
	}
	violations, err := h.Violations.ListMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, salaryPayload(*rec, violations))
}

func (h SalaryHandler) revertPay(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.Repo.GetMonth(r.Context(), userID, month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "salary record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := payroll.RevertPayment(rec); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	// Reverting needs no confirmation step.
	if err := h.Repo.SetUnpaid(r.Context(), userID, month); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	violations, err := h.Violations.ListMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, salaryPayload(*rec, violations))
}

func (h SalaryHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, violations, err := h.loadMonth(r, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch format {
	case "csv":
		data, err := exportSalaryCSV(records, violations)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"salary_%s.csv\"", month))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportSalaryXLSX(month, records, violations)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"salary_%s.xlsx\"", month))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportSalaryCSV(records []domain.SalaryRecord, violations []domain.ViolationRecord) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"user", "role", "total_salary", "advance", "bonus", "unpaid_penalties", "take_home", "status", "paid_amount", "paid_at"})
	for _, rec := range records {
		penalties := payroll.PenaltyTotalsFor(rec.UserID, violations)
		paidAmount := ""
		if rec.ActualPaidAmount != nil {
			paidAmount = strconv.FormatInt(*rec.ActualPaidAmount, 10)
		}
		paidAt := ""
		if rec.PaidAt != nil {
			paidAt = rec.PaidAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			rec.UserName,
			string(rec.UserRole),
			strconv.FormatInt(rec.TotalSalary, 10),
			strconv.FormatInt(rec.SalaryAdvance, 10),
			strconv.FormatInt(rec.Bonus, 10),
			strconv.FormatInt(penalties.Unpaid, 10),
			strconv.FormatInt(payroll.TakeHomePay(rec), 10),
			string(rec.PaymentStatus),
			paidAmount,
			paidAt,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportSalaryXLSX(month string, records []domain.SalaryRecord, violations []domain.ViolationRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Salary " + month
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Nhân viên", "Vai trò", "Tổng lương", "Tạm ứng", "Thưởng", "Phạt chưa nộp", "Thực lãnh", "Trạng thái"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for rIdx, rec := range records {
		penalties := payroll.PenaltyTotalsFor(rec.UserID, violations)
		row := rIdx + 2
		values := []any{
			rec.UserName,
			string(rec.UserRole),
			rec.TotalSalary,
			rec.SalaryAdvance,
			rec.Bonus,
			penalties.Unpaid,
			payroll.TakeHomePay(rec),
			string(rec.PaymentStatus),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "G", 16)
	_ = f.SetColWidth(sheet, "H", "H", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "H1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func salaryPayload(rec domain.SalaryRecord, violations []domain.ViolationRecord) map[string]any {
	penalties := payroll.PenaltyTotalsFor(rec.UserID, violations)

	attendance := make([]map[string]any, 0, len(rec.AttendanceRecords))
	for _, a := range rec.AttendanceRecords {
		attendance = append(attendance, map[string]any{
			"date":          a.Date.Format(dateLayout),
			"shiftLabel":    a.ShiftLabel,
			"expectedHours": a.ExpectedHours,
			"workedHours":   a.WorkedHours,
			"hourlyRate":    a.HourlyRate,
		})
	}
	absent := make([]map[string]any, 0, len(rec.AbsentShifts))
	for _, a := range rec.AbsentShifts {
		absent = append(absent, map[string]any{
			"date":       a.Date.Format(dateLayout),
			"shiftLabel": a.ShiftLabel,
		})
	}
	// Only violations that actually bill this user are carried along with
	// the penalty totals they explain.
	records := make([]map[string]any, 0)
	for _, v := range violations {
		if _, ok := v.UserCosts[rec.UserID]; ok {
			records = append(records, violationPayload(v))
		}
	}

	payload := map[string]any{
		"userId":               rec.UserID,
		"userName":             rec.UserName,
		"userRole":             string(rec.UserRole),
		"month":                rec.Month,
		"totalSalary":          rec.TotalSalary,
		"totalExpectedHours":   rec.TotalExpectedHours,
		"totalWorkingHours":    rec.TotalWorkingHours,
		"averageHourlyRate":    rec.AverageHourlyRate,
		"salaryAdvance":        rec.SalaryAdvance,
		"bonus":                rec.Bonus,
		"totalPenalty":         penalties.Total,
		"totalPaidPenalties":   penalties.Paid,
		"totalUnpaidPenalties": penalties.Unpaid,
		"violationRecords":     records,
		"finalTakeHomePay":     payroll.TakeHomePay(rec),
		"suggestedPayment":     payroll.SuggestedPaymentDisplay(rec),
		"paymentStatus":        string(rec.PaymentStatus),
		"attendanceRecords":    attendance,
		"absentShifts":         absent,
	}
	if rec.ActualPaidAmount != nil {
		payload["actualPaidAmount"] = *rec.ActualPaidAmount
	}
	if rec.PaidAt != nil {
		payload["paidAt"] = rec.PaidAt.Format(time.RFC3339)
	}
	return payload
}
