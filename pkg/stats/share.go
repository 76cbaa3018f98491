package stats

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kmehta/loantrack/pkg/models"
)

const fullCircle = 360.0

// palette is the fixed slice color cycle. Position indexes into it modulo
// its length, so colors repeat deterministically once loans outnumber it.
var palette = []string{
	"#4e79a7",
	"#f28e2b",
	"#e15759",
	"#76b7b2",
	"#59a14f",
	"#edc948",
	"#b07aa1",
	"#ff9da7",
	"#9c755f",
	"#bab0ac",
}

// Slice is one angular segment of the EMI-share chart.
type Slice struct {
	LoanID uuid.UUID       `json:"loan_id"`
	Name   string          `json:"name"`
	Value  decimal.Decimal `json:"value"`
	Ratio  float64         `json:"ratio"`
	Color  string          `json:"color"`
	Start  float64         `json:"start"` // degrees
	End    float64         `json:"end"`   // degrees
}

// ShareChart drives the EMI-share pie. An empty Slices set means no loan
// carries a fixed installment; the caller renders a placeholder instead of a
// degenerate chart.
type ShareChart struct {
	Slices   []Slice         `json:"slices"`
	TotalEMI decimal.Decimal `json:"total_emi"`
}

// Partition splits the full circle between loans with a positive monthly
// EMI, proportional to each loan's installment. Slices keep collection order
// rather than sorting by size, so segments stay put while the user edits.
// Angles accumulate from 0; the last slice ends at 360 within float
// tolerance, and the small accumulation drift is left uncorrected.
func Partition(loans []models.Loan) ShareChart {
	totalEMI := decimal.Zero
	qualifying := make([]models.Loan, 0, len(loans))
	for _, loan := range loans {
		if loan.MonthlyEMI.IsPositive() {
			qualifying = append(qualifying, loan)
			totalEMI = totalEMI.Add(loan.MonthlyEMI)
		}
	}
	if len(qualifying) == 0 || !totalEMI.IsPositive() {
		return ShareChart{TotalEMI: decimal.Zero}
	}

	total := totalEMI.InexactFloat64()
	cursor := 0.0
	slices := make([]Slice, 0, len(qualifying))
	for i, loan := range qualifying {
		ratio := loan.MonthlyEMI.InexactFloat64() / total
		end := cursor + ratio*fullCircle
		slices = append(slices, Slice{
			LoanID: loan.ID,
			Name:   loan.Name,
			Value:  loan.MonthlyEMI,
			Ratio:  ratio,
			Color:  palette[i%len(palette)],
			Start:  cursor,
			End:    end,
		})
		cursor = end
	}

	return ShareChart{Slices: slices, TotalEMI: totalEMI}
}
