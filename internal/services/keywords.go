package services

import "strings"

// ParseKeywords splits a comma-delimited keyword string into trimmed,
// non-empty keywords. Relative order is preserved and duplicates are kept;
// an empty or all-whitespace input yields an empty slice.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")

	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
	}

	return keywords
}

// FilterToSet intersects values with the given keyword set. The model is
// instructed to only echo keywords from the input lists, but that is not
// enforceable through the prompt alone, so returned arrays are filtered
// locally. Matching is case-insensitive and the canonical spelling from the
// set wins; set order is preserved and each keyword appears at most once.
func FilterToSet(values []string, set []string) []string {
	matched := make(map[string]bool, len(values))
	for _, v := range values {
		matched[strings.ToLower(strings.TrimSpace(v))] = true
	}

	filtered := make([]string, 0, len(set))
	seen := make(map[string]bool, len(set))
	for _, keyword := range set {
		key := strings.ToLower(keyword)
		if matched[key] && !seen[key] {
			filtered = append(filtered, keyword)
			seen[key] = true
		}
	}

	return filtered
}
