package decision

// MaxScore caps the summed band points.
const MaxScore = 100

// ApprovalThreshold is the lowest approving score.
const ApprovalThreshold = 70

// Reasoning templates.
const (
	ReasonExcellent = "Excellent credit profile with strong income and low debt"
	ReasonStrong    = "Strong credit score and stable financial position"
	ReasonMinimum   = "Meets minimum requirements for loan approval"
	ReasonHighRisk  = "High risk due to low credit score or high debt-to-income ratio"
	ReasonBelowMin  = "Does not meet minimum credit requirements"
)

// band awards points when a value clears threshold. Bands in a table are
// ordered best-first; the first match wins and no match scores zero.
type band struct {
	threshold float64
	points    int
}

var (
	creditScoreBands = []band{{750, 40}, {700, 30}, {650, 20}, {600, 10}}
	incomeBands      = []band{{100000, 25}, {75000, 20}, {50000, 15}, {30000, 10}}
	employmentBands  = []band{{5, 10}, {2, 7}, {1, 5}}
	// Ceilings: lower is better.
	debtToIncomeBands = []band{{0.2, 25}, {0.3, 20}, {0.4, 10}, {0.5, 5}}
)

func atLeast(v float64, bands []band) int {
	for _, b := range bands {
		if v >= b.threshold {
			return b.points
		}
	}
	return 0
}

func atMost(v float64, bands []band) int {
	for _, b := range bands {
		if v <= b.threshold {
			return b.points
		}
	}
	return 0
}

// Score sums the four band contributions, capped at MaxScore.
// This is pure domain logic - no I/O, no side effects.
func Score(a Applicant) int {
	score := atLeast(a.CreditScore, creditScoreBands) +
		atLeast(a.Income, incomeBands) +
		atMost(a.DebtToIncome, debtToIncomeBands) +
		atLeast(a.EmploymentYears, employmentBands)
	return min(score, MaxScore)
}

// Approve reports whether score clears ApprovalThreshold.
func Approve(score int) bool {
	return score >= ApprovalThreshold
}

// Explain picks the reasoning template for a score and approval.
func Explain(score int, approved bool) string {
	switch {
	case approved && score >= 90:
		return ReasonExcellent
	case approved && score >= 80:
		return ReasonStrong
	case approved:
		return ReasonMinimum
	case score < 50:
		return ReasonHighRisk
	default:
		return ReasonBelowMin
	}
}
