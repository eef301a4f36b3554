package billing

import (
	"fmt"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
)

// PlanInfo describes one hosting plan.
type PlanInfo struct {
	Plan     project.Plan
	Name     string
	Price    float64
	Period   string
	Features []string
	// Payment reports whether upgrading requires a charge.
	Payment bool
}

var plans = []PlanInfo{
	{
		Plan:  project.PlanFree,
		Name:  "Free Preview",
		Price: 0,
		Features: []string{
			"Generate website designs",
			"Preview in builder",
			"Basic customization",
			"Limited to 3 previews",
		},
	},
	{
		Plan:   project.PlanProfessional,
		Name:   "Professional",
		Price:  99,
		Period: "year",
		Features: []string{
			"Unlimited generations",
			"Full customization",
			"Domain connection",
			"Export code",
			"Priority support",
		},
	},
	{
		Plan:   project.PlanEnterprise,
		Name:   "Enterprise",
		Price:  299,
		Period: "year",
		Features: []string{
			"Everything in Professional",
			"Custom branding",
			"API access",
			"Team collaboration",
			"Dedicated support",
		},
		Payment: true,
	},
}

// Plans returns the catalog in display order.
func Plans() []PlanInfo {
	out := make([]PlanInfo, len(plans))
	copy(out, plans)
	return out
}

// Lookup returns the catalog entry for p.
func Lookup(p project.Plan) (PlanInfo, error) {
	for _, pi := range plans {
		if pi.Plan == p {
			return pi, nil
		}
	}
	return PlanInfo{}, fmt.Errorf("unknown plan %q", p)
}

// DisplayPrice renders the price as "$99/year" or "$0".
func (p PlanInfo) DisplayPrice() string {
	if p.Period == "" {
		return fmt.Sprintf("$%.0f", p.Price)
	}
	return fmt.Sprintf("$%.0f/%s", p.Price, p.Period)
}
