package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"energy-advisor/internal/model"
)

const combinedPaybackCutoffYears = 10.0

// ReportStage assembles the final advisory report. All sections are
// deterministic except the conclusion, which the AI collaborator writes;
// on failure a fixed template with the same figures is substituted.
type ReportStage struct {
	ai  TextGenerator
	log *zap.SugaredLogger
}

// NewReportStage creates the report stage.
func NewReportStage(ai TextGenerator, log *zap.SugaredLogger) *ReportStage {
	return &ReportStage{ai: ai, log: log}
}

// Process renders the report for a fully calculated session.
func (s *ReportStage) Process(ctx context.Context, session *model.Session) *model.AgentResponse {
	var b strings.Builder

	b.WriteString("# 🌱 PERSONALIZED ENERGY PLAN\n\n")
	b.WriteString(profileSummary(&session.Profile))
	b.WriteString("\n---\n\n")

	b.WriteString("## 📊 Analysis summary\n\n")
	b.WriteString(analysisSummary(session.Analysis))

	b.WriteString("\n## 💡 Our recommendations\n\n")
	b.WriteString(recommendationsSection(session.Calculations))

	b.WriteString("\n## 💰 Economic analysis\n\n")
	b.WriteString(economicsTable(session.Calculations))

	b.WriteString("\n## 📅 Implementation plan\n\n")
	b.WriteString(implementationPlan())

	b.WriteString("\n## ✅ Conclusion\n\n")
	b.WriteString(s.conclusion(ctx, session))

	b.WriteString("\n\n---\n")
	b.WriteString("*For a detailed offer and installation, contact our specialists.*\n")

	return &model.AgentResponse{
		Message:    b.String(),
		IsComplete: true,
		Progress:   100,
	}
}

func profileSummary(p *model.UserProfile) string {
	address := "your location"
	if p.Location.Address != nil {
		address = *p.Location.Address
	}
	area := "-"
	if p.Building.HeatedAreaM2 != nil {
		area = fmt.Sprintf("%.0f m²", *p.Building.HeatedAreaM2)
	}
	return fmt.Sprintf("**For:** %s\n**Building type:** %s\n**Heated area:** %s\n",
		address, buildingTypeText(p.Building.BuildingType), area)
}

func buildingTypeText(t *string) string {
	if t == nil {
		return "Property"
	}
	switch *t {
	case model.BuildingFamilyHouse:
		return "Family house"
	case model.BuildingApartment:
		return "Apartment"
	case model.BuildingCompany:
		return "Company building"
	default:
		return "Property"
	}
}

func analysisSummary(a *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("Your location has the following renewable-energy potential:\n\n")

	if a.Solar.Score >= 70 {
		fmt.Fprintf(&b, "☀️ **Solar PV:** EXCELLENT potential (%d/100)\n   *%s*\n", a.Solar.Score, a.Solar.Reasoning)
	} else if a.Solar.Score >= 50 {
		fmt.Fprintf(&b, "☀️ **Solar PV:** Good potential (%d/100)\n", a.Solar.Score)
	} else {
		fmt.Fprintf(&b, "☀️ **Solar PV:** Limited potential (%d/100)\n", a.Solar.Score)
	}
	b.WriteString("\n")

	if a.Wind.Score >= 60 {
		fmt.Fprintf(&b, "💨 **Wind energy:** Suitable location (%d/100)\n   *%s*\n", a.Wind.Score, a.Wind.Reasoning)
	} else {
		fmt.Fprintf(&b, "💨 **Wind energy:** Unsuitable conditions (%d/100)\n", a.Wind.Score)
	}
	b.WriteString("\n")

	if a.HeatPump.Score >= 70 {
		fmt.Fprintf(&b, "🔥 **Heat pump:** RECOMMENDED (%d/100)\n   *%s*\n", a.HeatPump.Score, a.HeatPump.Reasoning)
	} else {
		fmt.Fprintf(&b, "🔥 **Heat pump:** Possible installation (%d/100)\n", a.HeatPump.Score)
	}

	return b.String()
}

func recommendationsSection(c *model.CalculationResult) string {
	var b strings.Builder

	if best := bestSingleSystem(c); best != nil {
		fmt.Fprintf(&b, "### 🥇 Best single technology: **%s**\n\n", best.Technology)
		fmt.Fprintf(&b, "- System size: %s\n", best.SystemSize)
		fmt.Fprintf(&b, "- Investment: **%.0f €**\n", best.InstallationCost)
		fmt.Fprintf(&b, "- Yearly savings: **%.0f €**\n", best.YearlySavings)
		fmt.Fprintf(&b, "- Payback: **%s**\n", formatPayback(best.PaybackYears))
	}

	if c.Combined != nil && c.Combined.ROIPercent != nil && *c.Combined.ROIPercent > 0 {
		fmt.Fprintf(&b, "\n### 🎯 Optimal combination: **%s**\n\n", c.Combined.SystemSize)
		b.WriteString("**Benefits of the combined solution:**\n")
		b.WriteString("- Maximum energy independence\n")
		b.WriteString("- Technology synergy (PV powers the heat pump)\n")
		fmt.Fprintf(&b, "- Total investment: **%.0f €**\n", c.Combined.InstallationCost)
		fmt.Fprintf(&b, "- Total yearly savings: **%.0f €**\n", c.Combined.YearlySavings)
		fmt.Fprintf(&b, "- Payback: **%s**\n", formatPayback(c.Combined.PaybackYears))
	}

	return b.String()
}

func economicsTable(c *model.CalculationResult) string {
	var b strings.Builder
	b.WriteString("| Technology | Investment | Yearly savings | Payback | ROI |\n")
	b.WriteString("|------------|------------|----------------|---------|-----|\n")

	for _, system := range c.SingleSystems() {
		fmt.Fprintf(&b, "| %s | %.0f € | %.0f € | %s | %s |\n",
			system.Technology, system.InstallationCost, system.YearlySavings,
			formatPayback(system.PaybackYears), formatROI(system.ROIPercent))
	}
	if c.Combined != nil {
		fmt.Fprintf(&b, "| **%s** | **%.0f €** | **%.0f €** | **%s** | **%s** |\n",
			c.Combined.Technology, c.Combined.InstallationCost, c.Combined.YearlySavings,
			formatPayback(c.Combined.PaybackYears), formatROI(c.Combined.ROIPercent))
	}

	b.WriteString("\n### 💶 Financing\n\n")
	b.WriteString("- **Subsidies:** up to 50% of costs through national green-home schemes\n")
	b.WriteString("- **Loans:** preferential green loans from 2.9% p.a.\n")
	b.WriteString("- **Leasing:** zero-markup leasing available\n")

	return b.String()
}

func implementationPlan() string {
	return `### Step by step to savings:

1. **Week 1-2:** Consultation and detailed design
   - Site survey
   - Precise measurements and calculations
   - Final offer

2. **Week 3-4:** Administration
   - Subsidy application
   - Permits and approvals
   - Component ordering

3. **Month 2:** Installation
   - System assembly (2-5 days)
   - Grid connection
   - Testing and commissioning

4. **Month 3+:** Monitoring
   - Performance tracking
   - Optimization
   - Service support
`
}

// conclusion asks the AI collaborator for a short closing paragraph built
// around the best system's figures, substituting a fixed template when the
// call fails. The substitution is invisible to the user.
func (s *ReportStage) conclusion(ctx context.Context, session *model.Session) string {
	best := bestSystem(session.Calculations)
	address := "your location"
	if session.Profile.Location.Address != nil {
		address = *session.Profile.Location.Address
	}

	if best == nil {
		return fmt.Sprintf("For your property in %s we could not identify an economically "+
			"viable renewable installation under current assumptions. We recommend a "+
			"personal consultation to explore options in more detail.", address)
	}

	prompt := fmt.Sprintf(`Write a short, persuasive conclusion (3-4 sentences) for a client.
Location: %s
Building type: %s
Best solution: %s
Savings: %.0f €/year
Payback: %s

Be positive and motivating. Emphasize both the ecological and the economic benefit.`,
		address, buildingTypeText(session.Profile.Building.BuildingType),
		best.Technology, best.YearlySavings, formatPayback(best.PaybackYears))

	conclusion := s.ai.Complete(ctx, prompt)
	if IsAIFailure(conclusion) || strings.TrimSpace(conclusion) == "" {
		s.log.Debugw("conclusion generation failed, using template", "session", session.ID)
		return fmt.Sprintf("For your property in %s we identified excellent potential for "+
			"energy savings. %s will bring you a yearly saving of %.0f € with an investment "+
			"payback of %s. Beyond the economics, you will significantly reduce your carbon "+
			"footprint and contribute to protecting the environment. **Start saving today!**",
			address, best.Technology, best.YearlySavings, formatPayback(best.PaybackYears))
	}
	return conclusion
}

// bestSingleSystem picks the single system with the lowest payback, ties
// broken by first-computed order. Systems without a defined payback rank
// last.
func bestSingleSystem(c *model.CalculationResult) *model.SystemCalculation {
	var best *model.SystemCalculation
	for _, system := range c.SingleSystems() {
		if best == nil {
			best = system
			continue
		}
		if system.PaybackYears == nil {
			continue
		}
		if best.PaybackYears == nil || *system.PaybackYears < *best.PaybackYears {
			best = system
		}
	}
	return best
}

// bestSystem prefers the combined system when it pays back within the
// cutoff, otherwise the best single system.
func bestSystem(c *model.CalculationResult) *model.SystemCalculation {
	if c.Combined != nil && c.Combined.PaybackYears != nil && *c.Combined.PaybackYears < combinedPaybackCutoffYears {
		return c.Combined
	}
	return bestSingleSystem(c)
}
