package promptstyle

import "strings"

const marker = "BLOG_PROMPT_STYLE_V1"

const (
	ModeJSON  = "json"
	ModeProse = "prose"
)

// ApplySystem prepends a short house-style block to a system prompt. Prompts
// that already carry the block are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	taskSummary := ""
	for _, line := range strings.Split(base, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			taskSummary = trimmed
			break
		}
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are a careful assistant for an illustrated technical blog.")
	if taskSummary != "" {
		b.WriteString("\nTask summary: " + taskSummary)
	}
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nDo not invent statistics, quotes or citations.")
	switch mode {
	case ModeJSON:
		b.WriteString("\nOutput only the requested JSON. No markdown fences, no commentary.")
	case ModeProse:
		b.WriteString("\nWrite plain markdown prose. No preamble and no closing remarks.")
	default:
		b.WriteString("\nBe concise and structured when helpful.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
