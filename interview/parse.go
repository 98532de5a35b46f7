package interview

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var mdFenceRe = regexp.MustCompile("(?im)^\\s*```(?:json)?|```\\s*$")

// stripMDFences removes Markdown code-fence markers the model likes to wrap
// JSON in.
func stripMDFences(text string) string {
	return strings.TrimSpace(mdFenceRe.ReplaceAllString(text, ""))
}

// parseLLMJSON extracts the outermost JSON object from a raw model response
// and unmarshals it into dst.
func parseLLMJSON(raw string, dst any) error {
	text := stripMDFences(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return fmt.Errorf("parsing model json: %w", err)
	}
	return nil
}

// truncate caps a string at limit bytes. Prompts truncate their inputs the
// same way the rest of the pipeline does, so a huge resume cannot blow up a
// prompt.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

// clampScore clamps a sub-score into [0,10].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// sanitizeQuestion normalizes generated question text: collapses newlines,
// strips wrapping quotes, removes the topic name and truncates run-on output
// to its first sentence. Emptiness and minimum-length checks are the
// caller's job because the fallback depends on the generation path.
func sanitizeQuestion(text, topic string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	if len(text) >= 2 {
		if (strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`)) ||
			(strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'")) {
			text = strings.TrimSpace(text[1 : len(text)-1])
		}
	}

	if topic != "" && strings.Contains(text, topic) {
		text = strings.Trim(strings.ReplaceAll(text, topic, ""), " -:—")
	}

	if len(text) > 500 {
		first, _, found := strings.Cut(text, ".")
		if found {
			text = first + "."
		}
	}

	return text
}
