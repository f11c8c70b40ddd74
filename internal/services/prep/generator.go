package prep

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
)

const (
	fallbackTalkingPoint = "Review account health and goals"
	unavailableSummary   = "Contact details are currently unavailable."
)

// Generator builds meeting preparation briefs from CRM snapshots
type Generator struct {
	weights weights.PrepWeights
}

// NewGenerator creates a new meeting prep generator
func NewGenerator(w weights.PrepWeights) *Generator {
	return &Generator{weights: w}
}

// Input is the snapshot a brief is built from
type Input struct {
	Meeting *models.Meeting
	// Contact is nil when the CRM could not provide it
	Contact *models.ContactSnapshot
	History *models.InteractionHistory
	Risk    *models.RiskPrediction
	// Degraded marks that at least one upstream store failed
	Degraded bool
	Now      time.Time
}

// talkingPointRule produces a talking point when it matches
type talkingPointRule func(g *Generator, c *models.ContactSnapshot, now time.Time) (string, bool)

// talkingPointCategories are evaluated in order; within a category the first matching rule wins
var talkingPointCategories = [][]talkingPointRule{
	{growthExpansion, growthDecline},
	{renewalApproaching},
	{openFeatureRequests},
	{topOpportunity},
}

// Generate builds the brief. The output only depends on the input, apart from PreparedAt.
func (g *Generator) Generate(in Input) models.MeetingPrep {
	p := models.MeetingPrep{
		MeetingID:          in.Meeting.ID,
		ContactSummary:     unavailableSummary,
		TalkingPoints:      []string{},
		RecentInteractions: g.recentInteractions(in.History),
		OpenOpportunities:  []models.Opportunity{},
		SuggestedAgenda:    agenda(in.Meeting),
		RiskAlerts:         riskAlerts(in.Risk),
		Degraded:           in.Degraded || in.Contact == nil,
		PreparedAt:         in.Now,
	}

	if in.Contact != nil {
		p.ContactSummary = summarize(in.Contact)
		p.OpenOpportunities = sortedOpportunities(in.Contact.OpenOpportunities)
		for _, category := range talkingPointCategories {
			for _, rule := range category {
				if point, ok := rule(g, in.Contact, in.Now); ok {
					p.TalkingPoints = append(p.TalkingPoints, point)
					break
				}
			}
		}
	}

	if len(p.TalkingPoints) == 0 {
		p.TalkingPoints = append(p.TalkingPoints, fallbackTalkingPoint)
	}
	return p
}

func summarize(c *models.ContactSnapshot) string {
	name := c.Name
	if name == "" {
		name = "This contact"
	}
	tier := c.PlanTier
	if tier == "" {
		tier = "unknown"
	}
	summary := fmt.Sprintf("%s has been a customer for %s on the %s plan.", name, tenure(c.TenureDays), tier)
	if c.PrimaryRole != "" {
		summary += fmt.Sprintf(" Primary contact role: %s.", c.PrimaryRole)
	}
	return summary
}

func tenure(days int) string {
	switch {
	case days >= 365:
		years := days / 365
		if years == 1 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", years)
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func (g *Generator) recentInteractions(h *models.InteractionHistory) []models.Interaction {
	if h == nil || len(h.Interactions) == 0 {
		return []models.Interaction{}
	}
	sorted := make([]models.Interaction, len(h.Interactions))
	copy(sorted, h.Interactions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > g.weights.MaxRecentInteractions {
		sorted = sorted[:g.weights.MaxRecentInteractions]
	}
	return sorted
}

func sortedOpportunities(opps []models.Opportunity) []models.Opportunity {
	sorted := make([]models.Opportunity, len(opps))
	copy(sorted, opps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func agenda(m *models.Meeting) []string {
	objective := "Discuss primary objective"
	if title := strings.TrimSpace(m.Title); title != "" {
		objective = fmt.Sprintf("Discuss primary objective: %s", title)
	}
	return []string{
		"Review account status",
		objective,
		"Address open items",
		"Confirm next steps",
	}
}

func riskAlerts(r *models.RiskPrediction) []string {
	if r == nil || !r.Level().AtLeast(models.RiskLevelMedium) {
		return []string{}
	}
	alerts := make([]string, len(r.RiskFactors))
	copy(alerts, r.RiskFactors)
	return alerts
}

func growthExpansion(g *Generator, c *models.ContactSnapshot, _ time.Time) (string, bool) {
	if c.UsageGrowthPct == nil || *c.UsageGrowthPct < g.weights.GrowthHighPct {
		return "", false
	}
	return fmt.Sprintf("Usage grew %.0f%%: explore expansion opportunities", *c.UsageGrowthPct), true
}

func growthDecline(g *Generator, c *models.ContactSnapshot, _ time.Time) (string, bool) {
	if c.UsageGrowthPct == nil || *c.UsageGrowthPct > g.weights.GrowthLowPct {
		return "", false
	}
	return fmt.Sprintf("Usage fell %.0f%%: review adoption blockers", -*c.UsageGrowthPct), true
}

func renewalApproaching(g *Generator, c *models.ContactSnapshot, now time.Time) (string, bool) {
	if c.RenewalDate == nil {
		return "", false
	}
	days := daysBetween(now, *c.RenewalDate)
	if days < 0 || days > g.weights.RenewalThresholdDays {
		return "", false
	}
	return fmt.Sprintf("Renewal due in %d days: confirm renewal plans", days), true
}

func openFeatureRequests(_ *Generator, c *models.ContactSnapshot, _ time.Time) (string, bool) {
	switch {
	case c.OpenFeatureRequests <= 0:
		return "", false
	case c.OpenFeatureRequests == 1:
		return "1 open feature request: share roadmap status", true
	default:
		return fmt.Sprintf("%d open feature requests: share roadmap status", c.OpenFeatureRequests), true
	}
}

func topOpportunity(_ *Generator, c *models.ContactSnapshot, _ time.Time) (string, bool) {
	if len(c.OpenOpportunities) == 0 {
		return "", false
	}
	top := sortedOpportunities(c.OpenOpportunities)[0]
	return fmt.Sprintf("Advance %s (%s, %.0f)", top.Name, top.Stage, top.Value), true
}

// daysBetween counts calendar days from a to b in UTC
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
