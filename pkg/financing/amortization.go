// Package financing computes constant-installment (Price table) loan
// amortization for a purchase financed after a down payment.
package financing

import (
	"fmt"
	"math"

	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"go.uber.org/zap"
)

// Result holds the summary of an amortized purchase.
type Result struct {
	Principal     float64
	Installment   float64
	TotalPaid     float64 // installments plus the down payment
	TotalInterest float64
	RateUsed      float64 // monthly, as a fraction
	Installments  int
	DownPayment   float64
}

// Installment is one row of the amortization table.
type Installment struct {
	Number       int
	Payment      float64
	Interest     float64
	Amortization float64
	Balance      float64
}

// CalculateInstallment returns the constant payment that repays principal in
// n periods at the periodic rate. A zero rate divides the principal evenly.
// The discount form tends to principal*rate for long terms instead of
// overflowing.
func CalculateInstallment(principal, monthlyRate float64, n int) float64 {
	if monthlyRate == 0 {
		return principal / float64(n)
	}
	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(n)))
}

// CalculateInterestPayment calculates the interest accrued on a balance over
// one period.
func CalculateInterestPayment(balance, monthlyRate float64) float64 {
	return balance * monthlyRate
}

// Amortize computes the installment and totals for financing totalValue minus
// downPayment over installments months at monthlyRate (0.015 is 1.5% a month).
// Terms longer than constants.MaxInstallments are refused.
func Amortize(totalValue, downPayment float64, installments int, monthlyRate float64) (Result, error) {
	if err := validation.First(
		validation.Positive("totalValue", totalValue),
		validation.NonNegative("downPayment", downPayment),
		validation.Positive("installments", float64(installments)),
		validation.AtMost("installments", float64(installments), constants.MaxInstallments),
		validation.NonNegative("monthlyRate", monthlyRate),
	); err != nil {
		return Result{}, err
	}
	if downPayment > totalValue {
		return Result{}, validation.Constraint("downPayment",
			"down payment %.2f exceeds the total value %.2f", downPayment, totalValue)
	}

	principal := totalValue - downPayment
	installment := CalculateInstallment(principal, monthlyRate, installments)
	paid := installment * float64(installments)

	return Result{
		Principal:     principal,
		Installment:   installment,
		TotalPaid:     paid + downPayment,
		TotalInterest: paid - principal,
		RateUsed:      monthlyRate,
		Installments:  installments,
		DownPayment:   downPayment,
	}, nil
}

// TableGenerator expands a Result into its per-installment table.
type TableGenerator struct {
	logger *zap.Logger
}

// NewTableGenerator creates a new generator instance
func NewTableGenerator(logger *zap.Logger) *TableGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableGenerator{logger: logger}
}

// Generate returns one row per installment. Each payment splits into the
// interest on the previous balance and the amortized principal; the last
// balance is forced to zero.
func (g *TableGenerator) Generate(result Result) ([]Installment, error) {
	if result.Installments <= 0 || result.Installments > constants.MaxInstallments {
		return nil, fmt.Errorf("cannot build an amortization table with %d installments", result.Installments)
	}

	table := make([]Installment, 0, result.Installments)
	balance := result.Principal
	for number := 1; number <= result.Installments; number++ {
		interest := CalculateInterestPayment(balance, result.RateUsed)
		amortization := result.Installment - interest
		balance -= amortization

		if number == result.Installments {
			if !mathutil.IsZero(balance) {
				g.logger.Warn(fmt.Sprintf("amortization table closed with a residual balance of %.4f", balance),
					zap.String("op", "financing.Generate"),
				)
			}
			// Machine error otherwise leaves a few cents.
			balance = 0
		}

		table = append(table, Installment{
			Number:       number,
			Payment:      result.Installment,
			Interest:     interest,
			Amortization: amortization,
			Balance:      balance,
		})
	}

	g.logger.Debug(fmt.Sprintf("generated %d installments of %.2f", result.Installments, result.Installment),
		zap.String("op", "financing.Generate"),
	)
	return table, nil
}
