package models

// Plan is a purchasable credit pack.
type Plan struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	PriceINR float64  `json:"priceINR"`
	PriceUSD float64  `json:"priceUSD"`
	Credits  int      `json:"credits"`
	Duration int      `json:"duration"` // days
	Features []string `json:"features"`
}

var Plans = map[string]Plan{
	"starter": {
		Key:      "starter",
		Name:     "Starter",
		PriceINR: 499,
		PriceUSD: 5.99,
		Credits:  15,
		Duration: 30,
		Features: []string{"15 credits", "All interview types", "Basic + Detailed feedback"},
	},
	"growth": {
		Key:      "growth",
		Name:     "Growth",
		PriceINR: 999,
		PriceUSD: 11.99,
		Credits:  35,
		Duration: 30,
		Features: []string{"35 credits", "All interview types", "Premium analysis", "Priority support"},
	},
	"pro": {
		Key:      "pro",
		Name:     "Pro",
		PriceINR: 1999,
		PriceUSD: 23.99,
		Credits:  80,
		Duration: 30,
		Features: []string{"80 credits", "All interview types", "Premium analysis", "Priority support", "Detailed roadmaps"},
	},
}

const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

// NormalizeCurrency maps anything other than USD to INR.
func NormalizeCurrency(currency string) string {
	if currency == CurrencyUSD {
		return CurrencyUSD
	}
	return CurrencyINR
}

// Price returns the plan price in major units for currency.
func (p Plan) Price(currency string) float64 {
	if NormalizeCurrency(currency) == CurrencyUSD {
		return p.PriceUSD
	}
	return p.PriceINR
}

const (
	DurationQuick    = "quick"
	DurationStandard = "standard"
	DurationDeep     = "deep"

	AnalysisBasic    = "basic"
	AnalysisDetailed = "detailed"
	AnalysisPremium  = "premium"
)

var durationCosts = map[string]int{
	DurationQuick:    1,
	DurationStandard: 2,
	DurationDeep:     3,
}

var analysisCosts = map[string]int{
	AnalysisBasic:    0,
	AnalysisDetailed: 1,
	AnalysisPremium:  2,
}

// questions the live agent asks per duration tier
var durationQuestions = map[string]int{
	DurationQuick:    5,
	DurationStandard: 8,
	DurationDeep:     12,
}

// NormalizeDuration falls back to the standard tier for unknown values.
func NormalizeDuration(duration string) string {
	if _, ok := durationCosts[duration]; ok {
		return duration
	}
	return DurationStandard
}

// NormalizeAnalysis falls back to the basic tier for unknown values.
func NormalizeAnalysis(analysis string) string {
	if _, ok := analysisCosts[analysis]; ok {
		return analysis
	}
	return AnalysisBasic
}

// InterviewCost is durationCost + analysisCost after tier normalization.
func InterviewCost(duration, analysis string) int {
	return durationCosts[NormalizeDuration(duration)] + analysisCosts[NormalizeAnalysis(analysis)]
}

func MaxQuestions(duration string) int {
	return durationQuestions[NormalizeDuration(duration)]
}

// CreditCosts is the public view of the price table.
func CreditCosts() map[string]map[string]int {
	return map[string]map[string]int{
		"duration": copyCosts(durationCosts),
		"analysis": copyCosts(analysisCosts),
	}
}

func copyCosts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
