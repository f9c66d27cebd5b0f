package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluate_DecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		loanType domain.LoanType
		want     domain.LoanStatus
	}{
		// Категорийные пороги: строго больше — ревью, ровно на пороге — нет
		{"auto above limit", "50000.01", domain.TypeAuto, domain.StatusUnderReview},
		{"auto exactly at limit", "50000", domain.TypeAuto, domain.StatusApprovedBySystem},
		{"business above limit", "100000.01", domain.TypeBusiness, domain.StatusUnderReview},
		{"business exactly at limit", "100000", domain.TypeBusiness, domain.StatusApprovedBySystem},
		{"home above limit", "200000.01", domain.TypeHome, domain.StatusUnderReview},
		{"home exactly at limit", "200000", domain.TypeHome, domain.StatusApprovedBySystem},
		{"personal above limit", "25000.01", domain.TypePersonal, domain.StatusUnderReview},
		{"personal exactly at limit", "25000", domain.TypePersonal, domain.StatusApprovedBySystem},

		// Глобальные min/max: строго меньше/больше
		{"below minimum", "999.99", domain.TypePersonal, domain.StatusRejectedBySystem},
		{"exactly at minimum", "1000", domain.TypePersonal, domain.StatusApprovedBySystem},
		// Категорийное правило побеждает глобальный максимум:
		// HOME выше 1М уже ушел на ревью по порогу 200k
		{"huge home goes to review not rejection", "1000000.01", domain.TypeHome, domain.StatusUnderReview},

		{"default approval", "15000", domain.TypeAuto, domain.StatusApprovedBySystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Evaluate(amt(tt.amount), tt.loanType)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, reason)
		})
	}
}

// У BUSINESS нет категорийного перехвата на больших суммах до 1М:
// превышение общего максимума дает системный отказ, а не ревью.
func TestEvaluate_MaxRejectionNeedsNoCategoryMatch(t *testing.T) {
	status, reason := Evaluate(amt("2000000"), domain.TypeBusiness)
	// 2М > 100k — категорийное правило срабатывает первым
	assert.Equal(t, domain.StatusUnderReview, status)
	assert.Equal(t, "Business loan amount exceeds automatic approval limit", reason)
}

func TestEvaluate_ReasonStrings(t *testing.T) {
	_, reason := Evaluate(amt("500"), domain.TypePersonal)
	assert.Equal(t, "Loan amount too small for processing", reason)

	_, reason = Evaluate(amt("5000"), domain.TypePersonal)
	assert.Equal(t, "Loan meets automatic approval criteria", reason)

	_, reason = Evaluate(amt("60000"), domain.TypeAuto)
	assert.Equal(t, "Auto loan amount exceeds automatic approval limit", reason)
}
