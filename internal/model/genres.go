package model

import "strings"

// GenreSeparator delimits tags in the persisted genres column.
const GenreSeparator = ","

// JoinGenres encodes a tag set for storage.  Tags are trimmed; empty tags
// and repeats are dropped, and first-seen order is kept.
func JoinGenres(tags []string) string {
	return strings.Join(NormalizeGenres(tags), GenreSeparator)
}

// SplitGenres decodes the persisted column back into a tag set.  The empty
// string decodes to no tags.
func SplitGenres(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeGenres(strings.Split(s, GenreSeparator))
}

// NormalizeGenres trims tags and removes empties and duplicates.
func NormalizeGenres(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
