package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tgienger/skyhawk/internal/apperr"
)

// DrillFields holds the caller-supplied part of a drill
type DrillFields struct {
	Title           string
	Description     string
	DurationMinutes int
	Difficulty      Difficulty
	Category        Category
	Tags            []string
	DiagramURL      string
}

// Normalize trims text fields and collapses tags into a sorted set
func (f DrillFields) Normalize() DrillFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.DiagramURL = strings.TrimSpace(f.DiagramURL)
	f.Tags = NormalizeTags(f.Tags)
	return f
}

// Validate rejects fields that cannot form a drill
func (f DrillFields) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return apperr.Validation("drill.validate", fmt.Errorf("title is required"))
	case f.DurationMinutes <= 0:
		return apperr.Validation("drill.validate", fmt.Errorf("duration must be a positive number of minutes, got %d", f.DurationMinutes))
	case !f.Difficulty.Valid():
		return apperr.Validation("drill.validate", fmt.Errorf("unknown difficulty %q", f.Difficulty))
	case !f.Category.Valid():
		return apperr.Validation("drill.validate", fmt.Errorf("unknown category %q", f.Category))
	}
	return nil
}

// NormalizeTags trims, drops empties and de-duplicates case-insensitively.
// The first spelling of a tag wins.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// ParseTags splits a comma separated tag list
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
