// Package metricregistry resolves the open vocabulary of metric names an
// executive might say ("top line", "FCF", "op margin") to a closed set of
// canonical metrics backed by reported financial data, and computes the
// handful of derived (margin) ratios the registry knows how to build from
// direct fields.
package metricregistry

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// direct maps a canonical metric name to the FinancialPeriod.Metrics key
// holding its reported value.
var direct = map[string]string{
	"revenue":                   "revenue",
	"cost_of_revenue":           "cost_of_revenue",
	"gross_profit":              "gross_profit",
	"operating_income":          "operating_income",
	"operating_expenses":        "operating_expenses",
	"net_income":                "net_income",
	"eps":                       "eps",
	"eps_diluted":               "eps_diluted",
	"ebitda":                    "ebitda",
	"research_and_development":  "research_and_development",
	"selling_general_admin":     "selling_general_admin",
	"interest_expense":          "interest_expense",
	"income_tax_expense":        "income_tax_expense",
	"operating_cash_flow":       "operating_cash_flow",
	"capital_expenditure":       "capital_expenditure",
	"free_cash_flow":            "free_cash_flow",
	"total_assets":              "total_assets",
	"total_liabilities":         "total_liabilities",
	"total_debt":                "total_debt",
	"cash_and_equivalents":      "cash_and_equivalents",
	"shareholders_equity":       "shareholders_equity",
}

// signNormalize lists metrics financial-data providers store as a negative
// cash outflow but that executives always speak of as positive figures.
var signNormalize = map[string]bool{
	"capital_expenditure": true,
}

// ratio describes a derived metric computed as 100*numerator/denominator.
type ratio struct {
	numerator   string
	denominator string
}

var derived = map[string]ratio{
	"gross_margin":     {numerator: "gross_profit", denominator: "revenue"},
	"operating_margin": {numerator: "operating_income", denominator: "revenue"},
	"net_margin":       {numerator: "net_income", denominator: "revenue"},
}

// aliases maps a lowercase, free-text metric name to its canonical form.
var aliases = map[string]string{
	"total revenue":               "revenue",
	"net revenue":                 "revenue",
	"net revenues":                "revenue",
	"sales":                       "revenue",
	"net sales":                   "revenue",
	"top line":                    "revenue",
	"earnings per share":          "eps",
	"diluted eps":                 "eps_diluted",
	"diluted earnings per share":  "eps_diluted",
	"basic eps":                   "eps",
	"op income":                   "operating_income",
	"operating profit":            "operating_income",
	"operating loss":              "operating_income",
	"op margin":                   "operating_margin",
	"gross margin":                "gross_margin",
	"gross profit margin":         "gross_margin",
	"net margin":                  "net_margin",
	"profit margin":               "net_margin",
	"fcf":                         "free_cash_flow",
	"capex":                       "capital_expenditure",
	"capital expenditures":        "capital_expenditure",
	"r&d":                         "research_and_development",
	"research and development":    "research_and_development",
	"sg&a":                        "selling_general_admin",
	"sga":                         "selling_general_admin",
	"cash":                        "cash_and_equivalents",
	"cash and cash equivalents":   "cash_and_equivalents",
	"debt":                        "total_debt",
	"long-term debt":              "total_debt",
	"stockholders equity":         "shareholders_equity",
	"shareholders equity":         "shareholders_equity",
	"total stockholders equity":   "shareholders_equity",
}

var lowerCaser = cases.Lower(language.English)

// Normalize resolves free-text metric name raw to its canonical form. Names
// already canonical, or names outside the alias table, pass through
// unchanged (lowercased and trimmed) so the registry degrades gracefully to
// an unresolvable-but-nameable metric rather than erroring.
func Normalize(raw string) string {
	n := strings.TrimSpace(lowerCaser.String(raw))
	if canonical, ok := aliases[n]; ok {
		return canonical
	}
	return n
}

// IsDerived reports whether metric is computed from other direct metrics
// rather than read straight off a financial statement.
func IsDerived(metric string) bool {
	_, ok := derived[metric]
	return ok
}

// CanResolve reports whether the registry knows how to produce an actual
// value for metric, direct or derived.
func CanResolve(metric string) bool {
	if _, ok := direct[metric]; ok {
		return true
	}
	_, ok := derived[metric]
	return ok
}

// Resolve returns the actual numeric value for a canonical metric name,
// reading fields out of the provided metrics map (typically
// model.FinancialPeriod.Metrics). Direct metrics return their raw reported
// figure (sign-normalized where the registry defines one); derived metrics
// return a percentage. ok is false when the metric is unknown, or any field
// it depends on is missing, or a derived ratio's denominator is zero.
func Resolve(metric string, metrics map[string]float64) (value float64, ok bool) {
	if field, isDirect := direct[metric]; isDirect {
		v, present := metrics[field]
		if !present {
			return 0, false
		}
		if signNormalize[metric] && v < 0 {
			v = -v
		}
		return v, true
	}

	if r, isDerived := derived[metric]; isDerived {
		num, numOK := metrics[r.numerator]
		den, denOK := metrics[r.denominator]
		if !numOK || !denOK || den == 0 {
			return 0, false
		}
		return (num / den) * 100, true
	}

	return 0, false
}
