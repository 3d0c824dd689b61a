package payrun

import (
	"github.com/shopspring/decimal"
	domain "github.com/teranga-hr/payroll-backend-go/internal/domain/payrun"
)

// Statutory withholding rates (employee side), applied to daily and
// fixed contracts only.
var (
	cnssRate  = decimal.NewFromFloat(0.084)
	ipresRate = decimal.NewFromFloat(0.056)
	cssRate   = decimal.NewFromFloat(0.01)
)

// Progressive income tax schedule: abatement of max(30% of gross,
// 200000), then cumulative brackets over taxable income.
var (
	abatementRate  = decimal.NewFromFloat(0.30)
	abatementFloor = decimal.NewFromInt(200000)

	bracket1Cap = decimal.NewFromInt(500000)
	bracket2Cap = decimal.NewFromInt(1000000)
	bracket3Cap = decimal.NewFromInt(2000000)

	bracket2Rate = decimal.NewFromFloat(0.15)
	bracket3Rate = decimal.NewFromFloat(0.20)
	bracket4Rate = decimal.NewFromFloat(0.25)
)

// StrategyFor returns the deduction strategy a pay run was tagged with.
func StrategyFor(model domain.DeductionModel) (domain.DeductionStrategy, error) {
	switch model {
	case domain.DeductionModelStatutory:
		return StatutoryStrategy{}, nil
	case domain.DeductionModelContribution:
		return ContributionStrategy{}, nil
	default:
		return nil, domain.ErrUnknownDeductionModel
	}
}

// StatutoryStrategy withholds flat-rate social charges (CNSS, IPRES,
// CSS) and progressive income tax. Each social charge is rounded to the
// nearest integer currency unit independently; the drift against
// rounding the sum once is accepted.
type StatutoryStrategy struct{}

func (StatutoryStrategy) Model() domain.DeductionModel {
	return domain.DeductionModelStatutory
}

func (StatutoryStrategy) Compute(gross decimal.Decimal, contractType domain.ContractTypeRef) []domain.DeductionLine {
	if !gross.IsPositive() {
		return nil
	}

	var lines []domain.DeductionLine

	// Social charges do not apply to honorarium contracts.
	if contractType == domain.ContractFixed || contractType == domain.ContractDaily {
		social := []struct {
			description string
			rate        decimal.Decimal
		}{
			{"CNSS pension contribution", cnssRate},
			{"IPRES retirement contribution", ipresRate},
			{"CSS health contribution", cssRate},
		}
		for _, s := range social {
			amount := gross.Mul(s.rate).Round(0)
			if amount.IsPositive() {
				lines = append(lines, domain.DeductionLine{
					Type:        domain.DeductionTypeSocial,
					Description: s.description,
					Amount:      amount,
				})
			}
		}
	}

	if tax := progressiveIncomeTax(gross); tax.IsPositive() {
		lines = append(lines, domain.DeductionLine{
			Type:        domain.DeductionTypeTax,
			Description: "Progressive income tax",
			Amount:      tax,
		})
	}

	return lines
}

func progressiveIncomeTax(gross decimal.Decimal) decimal.Decimal {
	abatement := decimal.Max(gross.Mul(abatementRate), abatementFloor)
	taxable := gross.Sub(abatement)
	if !taxable.IsPositive() {
		return decimal.Zero
	}

	tax := decimal.Zero
	if taxable.GreaterThan(bracket1Cap) {
		slice := decimal.Min(taxable, bracket2Cap).Sub(bracket1Cap)
		tax = tax.Add(slice.Mul(bracket2Rate))
	}
	if taxable.GreaterThan(bracket2Cap) {
		slice := decimal.Min(taxable, bracket3Cap).Sub(bracket2Cap)
		tax = tax.Add(slice.Mul(bracket3Rate))
	}
	if taxable.GreaterThan(bracket3Cap) {
		tax = tax.Add(taxable.Sub(bracket3Cap).Mul(bracket4Rate))
	}

	return tax.Round(0)
}

// ContributionStrategy expresses cotisations as an employer/employee
// percentage split; only the employee side is withheld from gross. Used
// by the eager cycle-level generation path.
type ContributionStrategy struct{}

type contributionRate struct {
	description string
	employee    decimal.Decimal
	employer    decimal.Decimal
}

var contributionRates = []contributionRate{
	{"Pension contribution", decimal.NewFromFloat(0.06), decimal.NewFromFloat(0.065)},
	{"Family allowance contribution", decimal.NewFromFloat(0.045), decimal.NewFromFloat(0.075)},
	{"Health insurance contribution", decimal.NewFromFloat(0.0225), decimal.NewFromFloat(0.0375)},
	{"Unemployment insurance", decimal.Zero, decimal.NewFromFloat(0.01)},
	{"Workplace accident insurance", decimal.Zero, decimal.NewFromFloat(0.02)},
	{"Professional training levy", decimal.Zero, decimal.NewFromFloat(0.012)},
}

func (ContributionStrategy) Model() domain.DeductionModel {
	return domain.DeductionModelContribution
}

func (ContributionStrategy) Compute(gross decimal.Decimal, _ domain.ContractTypeRef) []domain.DeductionLine {
	if !gross.IsPositive() {
		return nil
	}

	var lines []domain.DeductionLine
	for _, r := range contributionRates {
		if r.employee.IsZero() {
			continue
		}
		amount := gross.Mul(r.employee).Round(2)
		if amount.IsPositive() {
			lines = append(lines, domain.DeductionLine{
				Type:        domain.DeductionTypeSocial,
				Description: r.description,
				Amount:      amount,
			})
		}
	}
	return lines
}

// EmployerContributions returns the employer-side cotisation total for a
// gross amount. It is informational; employer charges are never
// subtracted from the employee's net.
func EmployerContributions(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range contributionRates {
		total = total.Add(gross.Mul(r.employer).Round(2))
	}
	return total
}

// SumDeductions totals a set of deduction lines.
func SumDeductions(lines []domain.DeductionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
