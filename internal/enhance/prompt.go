package enhance

import (
	"fmt"
	"strings"

	"github.com/sells-group/directory-enrich/internal/model"
)

const promptTemplate = `You write listing copy for a local business directory.

Business facts:
%s
Return ONLY one JSON object with exactly these keys:
- "description": 200 to 400 words of engaging, factual copy about the business. Use only the facts above.
- "seo_title": at most 60 characters, formatted "{Name} - {Offering} | {Region}".
- "seo_description": at most 160 characters.
- "keywords": an array of 10 to 15 search keywords.
- "schema_type": one of %s.

Do not invent awards, prices, dates or claims that are not in the facts.`

// BuildPrompt renders the copy-generation prompt for in.
func BuildPrompt(in Input) string {
	return fmt.Sprintf(promptTemplate, formatFacts(in), strings.Join(SchemaTypes, ", "))
}

func formatFacts(in Input) string {
	var b strings.Builder
	line := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, value)
		}
	}

	line("Name", in.Name)
	line("Location", strings.Join(nonEmpty(in.City, in.Region), ", "))
	line("Existing description", in.Description)
	line("Services", strings.Join(in.Services, ", "))
	line("Amenities", strings.Join(in.Amenities, ", "))
	line("Categories", strings.Join(in.Categories, ", "))
	line("Price", in.PriceTier)
	line("Hours", formatHours(in.Hours))
	if in.AggregateRating != nil {
		line("Rating", fmt.Sprintf("%.1f from %d reviews", *in.AggregateRating, in.ReviewCount))
	}
	for _, r := range in.Reviews {
		line("Rating on "+r.Source, fmt.Sprintf("%.1f (%d reviews)", r.Rating, r.ReviewCount))
	}
	return b.String()
}

func formatHours(h *model.Hours) string {
	if h.IsEmpty() {
		return ""
	}
	var parts []string
	for _, day := range model.Weekdays {
		dh, ok := (*h)[day]
		if !ok {
			continue
		}
		switch {
		case dh.Closed:
			parts = append(parts, string(day)+" closed")
		case dh.Open24:
			parts = append(parts, string(day)+" open 24 hours")
		default:
			parts = append(parts, fmt.Sprintf("%s %s-%s", day, dh.Open, dh.Close))
		}
	}
	return strings.Join(parts, "; ")
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
