package engine

import (
	"github.com/shopspring/decimal"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// Пороги таблицы решений. Сравнения строгие (>/<): сумма ровно на пороге
// не уходит ни на ревью, ни в отказ.
var (
	reviewLimitAuto     = decimal.NewFromInt(50000)
	reviewLimitBusiness = decimal.NewFromInt(100000)
	reviewLimitHome     = decimal.NewFromInt(200000)
	reviewLimitPersonal = decimal.NewFromInt(25000)

	minLoanAmount = decimal.NewFromInt(1000)
	maxLoanAmount = decimal.NewFromInt(1000000)
)

// Evaluate — чистая функция принятия решения: (сумма, категория) -> (статус, причина).
// Порядок правил несущий: категорийные проверки идут ДО проверок min/max,
// поэтому AUTO на 60 000 уходит на ревью, хотя и не превышает общий максимум.
func Evaluate(amount decimal.Decimal, loanType domain.LoanType) (domain.LoanStatus, string) {
	switch {
	case loanType == domain.TypeAuto && amount.GreaterThan(reviewLimitAuto):
		return domain.StatusUnderReview, "Auto loan amount exceeds automatic approval limit"
	case loanType == domain.TypeBusiness && amount.GreaterThan(reviewLimitBusiness):
		return domain.StatusUnderReview, "Business loan amount exceeds automatic approval limit"
	case loanType == domain.TypeHome && amount.GreaterThan(reviewLimitHome):
		return domain.StatusUnderReview, "Home loan amount exceeds automatic approval limit"
	case loanType == domain.TypePersonal && amount.GreaterThan(reviewLimitPersonal):
		return domain.StatusUnderReview, "Personal loan amount exceeds automatic approval limit"
	case amount.LessThan(minLoanAmount):
		return domain.StatusRejectedBySystem, "Loan amount too small for processing"
	case amount.GreaterThan(maxLoanAmount):
		return domain.StatusRejectedBySystem, "Loan amount exceeds maximum limit"
	}
	return domain.StatusApprovedBySystem, "Loan meets automatic approval criteria"
}
