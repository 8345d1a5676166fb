package builder

import (
	"context"
	"strings"

	"github.com/tgienger/skyhawk/internal/models"
)

// Catalog supplies the drills a plan is built from
type Catalog interface {
	ListDrills(ctx context.Context) ([]models.Drill, error)
	CreateDrill(ctx context.Context, fields models.DrillFields) (*models.Drill, error)
}

// Section is one category of the drill library
type Section struct {
	Category models.Category
	Drills   []models.Drill
}

// GroupByCategory splits drills into sections in the fixed category order.
// Empty categories are left out; drill order inside a section is kept.
func GroupByCategory(drills []models.Drill) []Section {
	byCat := make(map[models.Category][]models.Drill, len(models.Categories))
	for _, d := range drills {
		byCat[d.Category] = append(byCat[d.Category], d)
	}
	var out []Section
	for _, c := range models.Categories {
		if len(byCat[c]) == 0 {
			continue
		}
		out = append(out, Section{Category: c, Drills: byCat[c]})
	}
	return out
}

// Filter keeps drills whose title, description or tags contain query (case-insensitive)
func Filter(drills []models.Drill, query string) []models.Drill {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return drills
	}
	var out []models.Drill
	for _, d := range drills {
		if strings.Contains(strings.ToLower(d.Title), query) ||
			strings.Contains(strings.ToLower(d.Description), query) ||
			containsTag(d.Tags, query) {
			out = append(out, d)
		}
	}
	return out
}

func containsTag(tags []string, query string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

// AppendPractice places every drill of a saved practice at the end of seq,
// each with a fresh instance id.
func AppendPractice(seq []models.DrillInstance, p models.PracticeWithItems) []models.DrillInstance {
	for _, it := range p.Items {
		seq = Append(seq, it.Drill)
	}
	return seq
}
