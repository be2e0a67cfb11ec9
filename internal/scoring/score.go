// Package scoring computes the sales-opportunity score of a lead. The score
// is derived from stored lead fields on every read and is never persisted, so
// it can not go stale.
package scoring

import (
	"fmt"
	"leadscout/pkg/domain"
)

// Label buckets a score into an outreach priority.
type Label string

const (
	LabelHot  Label = "Hot"
	LabelWarm Label = "Warm"
	LabelCool Label = "Cool"
	LabelCold Label = "Cold"
)

// Result is the computed opportunity assessment of a lead.
type Result struct {
	// Score is the opportunity score, 0-100.
	Score int `json:"score"`
	// Label is the priority bucket derived from Score.
	Label Label `json:"label"`
	// Reasons lists the scoring conditions that fired, in evaluation order.
	Reasons []string `json:"reasons"`
}

// Point values and band boundaries of the additive model.
const (
	pointsNoWebsite       = 30
	pointsSocialNoWebsite = 20
	pointsVeryPoorSite    = 25
	pointsBelowAvgSite    = 15
	pointsDecentSite      = 8
	pointsEmail           = 10
	pointsPhone           = 5
	pointsContactName     = 5
	pointsManyIssues      = 5

	bandVeryPoor = 30
	bandBelowAvg = 50
	bandDecent   = 70

	manyIssuesThreshold = 3

	maxScore = 100
)

// Evaluate scores a lead. It is pure and deterministic: identical input
// always yields an identical result.
func Evaluate(lead domain.Lead) Result {
	var (
		score   int
		reasons []string
	)
	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	if !lead.HasWebsite() {
		add(pointsNoWebsite, "No website — needs one built")
		if len(lead.SocialMedia) > 0 {
			add(pointsSocialNoWebsite, "Active on social media without a website")
		}
	} else if lead.WebsiteScore != nil {
		// quality bands are mutually exclusive
		switch s := *lead.WebsiteScore; {
		case s < bandVeryPoor:
			add(pointsVeryPoorSite, "Very poor website quality")
		case s < bandBelowAvg:
			add(pointsBelowAvgSite, "Below average website")
		case s < bandDecent:
			add(pointsDecentSite, "Decent website with room for improvement")
		}
	}

	if lead.ContactEmail != "" {
		add(pointsEmail, "Email available")
	}
	if lead.ContactPhone != "" {
		add(pointsPhone, "Phone available")
	}
	if lead.ContactName != "" {
		add(pointsContactName, "Contact name known")
	}
	if lead.HasWebsite() && len(lead.WebsiteIssues) >= manyIssuesThreshold {
		add(pointsManyIssues, fmt.Sprintf("%d website issues found", len(lead.WebsiteIssues)))
	}

	if score > maxScore {
		score = maxScore
	}

	return Result{
		Score:   score,
		Label:   labelFor(score),
		Reasons: reasons,
	}
}

func labelFor(score int) Label {
	switch {
	case score >= 60:
		return LabelHot
	case score >= 40:
		return LabelWarm
	case score >= 20:
		return LabelCool
	default:
		return LabelCold
	}
}
