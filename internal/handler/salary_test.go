package handler

import (
	"testing"
	"time"

	"katrina-one-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalaryPayloadEmbedsOwnViolations(t *testing.T) {
	rec := domain.SalaryRecord{
		UserID:        5,
		UserName:      "Linh",
		UserRole:      domain.RoleServer,
		Month:         "2025-07",
		TotalSalary:   4_800_000,
		PaymentStatus: domain.PaymentUnpaid,
	}
	violations := []domain.ViolationRecord{
		{
			ID:        "v1",
			Title:     "Quên khóa cửa kho",
			Date:      time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
			UserCosts: map[int64]int64{5: 50000, 9: 50000},
		},
		{
			ID:        "v2",
			Title:     "Đi trễ ca sáng",
			Date:      time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			UserCosts: map[int64]int64{9: 30000},
		},
	}

	payload := salaryPayload(rec, violations)

	embedded, ok := payload["violationRecords"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, embedded, 1)
	assert.Equal(t, "v1", embedded[0]["id"])

	assert.Equal(t, int64(50000), payload["totalPenalty"])
	assert.Equal(t, int64(50000), payload["totalUnpaidPenalties"])
}

func TestSalaryPayloadNoViolations(t *testing.T) {
	rec := domain.SalaryRecord{UserID: 2, Month: "2025-07", PaymentStatus: domain.PaymentUnpaid}
	payload := salaryPayload(rec, nil)

	embedded, ok := payload["violationRecords"].([]map[string]any)
	require.True(t, ok)
	assert.Empty(t, embedded)
	assert.Equal(t, int64(0), payload["totalPenalty"])
}
