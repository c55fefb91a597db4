package main

import (
	"fmt"
	"strconv"
	"strings"
)

// resolveModelTarget matches a model by name (case-insensitive) or 1-based index into
// availableModels; anything else is taken as a literal model id.
func resolveModelTarget(input string, availableModels []string) (string, error) {
	raw := strings.TrimSpace(input)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	} else if len(raw) >= 2 {
		last := raw[len(raw)-1]
		if (raw[0] == '\'' && last == '\'') || (raw[0] == '"' && last == '"') {
			raw = strings.TrimSpace(raw[1 : len(raw)-1])
		}
	}
	if raw == "" {
		return "", fmt.Errorf("missing model")
	}
	for _, model := range availableModels {
		trimmed := strings.TrimSpace(model)
		if trimmed == "" {
			continue
		}
		if strings.EqualFold(trimmed, raw) {
			return trimmed, nil
		}
	}
	if index, err := strconv.Atoi(raw); err == nil {
		if index < 1 || index > len(availableModels) {
			return "", fmt.Errorf("index out of range")
		}
		return strings.TrimSpace(availableModels[index-1]), nil
	}
	return raw, nil
}

// normalizedModels dedupes the configured list and puts current first when missing.
func normalizedModels(existing []string, current string) []string {
	out := make([]string, 0, len(existing)+1)
	seen := map[string]struct{}{}
	for _, model := range existing {
		trimmed := strings.TrimSpace(model)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	current = strings.TrimSpace(current)
	if current != "" {
		if _, ok := seen[current]; !ok {
			out = append([]string{current}, out...)
		}
	}
	return out
}
