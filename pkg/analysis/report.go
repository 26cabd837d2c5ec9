package analysis

import (
	"fmt"
	"strings"
)

// RenderReport produces a markdown rendering of an analysis record for
// display to humans.
func RenderReport(r *Record) string {
	var b strings.Builder

	b.WriteString("# Meeting Analysis Report\n\n")
	fmt.Fprintf(&b, "**Meeting URL:** %s\n", r.MeetingURL)
	fmt.Fprintf(&b, "**Start Time:** %s\n", r.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Last Updated:** %s\n", r.LastUpdated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Duration:** %.1f minutes\n", r.DurationMinutes)
	fmt.Fprintf(&b, "**Participants:** %s\n", strings.Join(r.Participants, ", "))
	fmt.Fprintf(&b, "**Total Words:** %d\n", r.WordCount)
	if r.Sentiment != "" {
		fmt.Fprintf(&b, "**Overall Sentiment:** %s\n", r.Sentiment)
	}
	b.WriteString("\n")

	if r.Summary != "" {
		b.WriteString("## Summary\n\n")
		if r.GroundedSummary != nil && r.GroundedSummary.TextWithCitations != "" {
			b.WriteString(r.GroundedSummary.TextWithCitations)
		} else {
			b.WriteString(r.Summary)
		}
		b.WriteString("\n\n")
	}

	if len(r.KeyPoints) > 0 {
		b.WriteString("## Key Points\n\n")
		for i, point := range r.KeyPoints {
			fmt.Fprintf(&b, "%d. %s\n", i+1, point)
		}
		b.WriteString("\n")
	}

	if len(r.ActionItems) > 0 {
		b.WriteString("## Action Items\n\n")
		for _, item := range r.ActionItems {
			fmt.Fprintf(&b, "- **%s** (%s priority)", item.Description, item.Priority)
			if item.Type != "" {
				fmt.Fprintf(&b, " - Type: %s", item.Type)
			}
			if item.Assignee != "" {
				fmt.Fprintf(&b, " - Assigned to: %s", item.Assignee)
			}
			fmt.Fprintf(&b, " - Status: %s\n", item.Status)
		}
		b.WriteString("\n")
	}

	if len(r.Topics) > 0 {
		b.WriteString("## Discussion Topics\n\n")
		for _, topic := range r.Topics {
			fmt.Fprintf(&b, "### %s\n", topic.Topic)
			fmt.Fprintf(&b, "**Duration:** %.1f minutes\n", topic.DurationMinutes)
			fmt.Fprintf(&b, "**Participants:** %s\n", strings.Join(topic.Participants, ", "))
			fmt.Fprintf(&b, "**Summary:** %s\n\n", topic.Summary)
		}
	}

	if len(r.Keywords) > 0 {
		b.WriteString("## Keywords\n\n")
		b.WriteString(strings.Join(r.Keywords, ", "))
		b.WriteString("\n\n")
	}

	if len(r.Transcript) > 0 {
		b.WriteString("## Full Transcript\n\n")
		for _, entry := range r.Transcript {
			fmt.Fprintf(&b, "[%s] **%s:** %s\n\n",
				entry.Timestamp.Format("15:04:05"), entry.Speaker, entry.Text)
		}
	}

	return b.String()
}
