// ABOUTME: Plain-text summaries of a campaign's outreach and a board's columns
// ABOUTME: Used by the CLI show commands, the web dashboard and the MCP prompt
package viz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/zala/models"
)

type CampaignStats struct {
	Name  string
	Leads int
	// Contacted counts leads reached on each channel.
	Contacted map[models.ContactMethod]int
	// Untouched counts leads with no channel used yet.
	Untouched int
}

func GenerateCampaignStats(camp models.Campaign) CampaignStats {
	stats := CampaignStats{
		Name:      camp.CampaignName,
		Leads:     len(camp.Leads),
		Contacted: make(map[models.ContactMethod]int, len(models.ContactMethodOrder)),
	}
	for _, cl := range camp.Leads {
		if len(cl.ContactMethods) == 0 {
			stats.Untouched++
		}
		for _, m := range cl.ContactMethods {
			stats.Contacted[m]++
		}
	}
	return stats
}

func RenderCampaign(stats CampaignStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  " + strings.ToUpper(stats.Name) + "\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("OUTREACH\n")
	for _, m := range models.ContactMethodOrder {
		fmt.Fprintf(&out, "  %-13s %s  %d/%d\n", m, bar(stats.Contacted[m], stats.Leads), stats.Contacted[m], stats.Leads)
	}
	out.WriteString("\n")

	if stats.Untouched > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		fmt.Fprintf(&out, "  ⚠️  %d leads - not contacted yet\n", stats.Untouched)
	}
	return out.String()
}

type StepStats struct {
	Column int
	Name   string
	Kind   models.StepKind
	Cards  int
}

type BoardStats struct {
	Name  string
	Steps []StepStats
	Leads int
	// Properties is the number of property cards across all steps.
	Properties int
}

func GenerateBoardStats(board models.Board) BoardStats {
	stats := BoardStats{Name: board.BoardName}
	for _, s := range board.Steps {
		stats.Steps = append(stats.Steps, StepStats{
			Column: s.BoardColumn,
			Name:   s.StepName,
			Kind:   s.Kind(),
			Cards:  len(s.Leads) + len(s.Properties),
		})
		stats.Leads += len(s.Leads)
		stats.Properties += len(s.Properties)
	}
	slices.SortStableFunc(stats.Steps, func(a, b StepStats) int { return a.Column - b.Column })
	return stats
}

func RenderBoard(stats BoardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  " + strings.ToUpper(stats.Name) + "\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	maxCards := 1
	for _, s := range stats.Steps {
		maxCards = max(maxCards, s.Cards)
	}

	out.WriteString("COLUMNS\n")
	if len(stats.Steps) == 0 {
		out.WriteString("  (no columns)\n")
	}
	for _, s := range stats.Steps {
		kind := ""
		switch s.Kind {
		case models.StepLeads:
			kind = "leads"
		case models.StepProperties:
			kind = "properties"
		}
		fmt.Fprintf(&out, "  %-13s %s  %2d %s\n", s.Name, bar(s.Cards, maxCards), s.Cards, kind)
	}
	out.WriteString("\n")

	out.WriteString("STATS\n")
	fmt.Fprintf(&out, "  📇 %d leads  🏠 %d properties\n", stats.Leads, stats.Properties)
	return out.String()
}

// bar draws n out of total as ten blocks.
func bar(n, total int) string {
	if total <= 0 {
		total = 1
	}
	length := min(n*10/total, 10)
	return strings.Repeat("█", length) + strings.Repeat("░", 10-length)
}
