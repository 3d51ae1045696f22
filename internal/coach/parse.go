package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// minUsableLength is the shortest model text accepted as guidance.
const minUsableLength = 10

var errUnusable = errors.New("unusable model output")

// cleanModelJSON strips Markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object or array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.Trim(s, "` ")
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	open := strings.IndexAny(s, "{[")
	if open == -1 {
		return s
	}
	closer := "}"
	if s[open] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > open {
		s = s[open : end+1]
	}
	return strings.TrimSpace(s)
}

// parseAnalysis decodes a transaction analysis and checks that every key is
// present and the category is one of AllowedCategories.
func parseAnalysis(raw string) (domain.Analysis, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &fields); err != nil {
		return domain.Analysis{}, fmt.Errorf("parseAnalysis: unmarshal JSON: %w", err)
	}

	out := make(map[string]string, 3)
	for _, key := range []string{"category", "insight", "tip"} {
		v, ok := fields[key]
		if !ok {
			return domain.Analysis{}, fmt.Errorf("parseAnalysis: missing %q: %w", key, errUnusable)
		}
		s, ok := v.(string)
		if !ok && v != nil {
			return domain.Analysis{}, fmt.Errorf("parseAnalysis: %q is %T: %w", key, v, errUnusable)
		}
		out[key] = strings.TrimSpace(s)
	}

	category := strings.ToLower(out["category"])
	if !IsAllowedCategory(category) {
		return domain.Analysis{}, fmt.Errorf("parseAnalysis: category %q: %w", category, errUnusable)
	}

	return domain.Analysis{
		Category: category,
		Insight:  out["insight"],
		Tip:      out["tip"],
	}, nil
}

// usableText trims model prose and rejects empty or truncated output.
func usableText(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len([]rune(s)) < minUsableLength {
		return "", fmt.Errorf("usableText: %d characters: %w", len([]rune(s)), errUnusable)
	}
	return s, nil
}
