package models

import (
	"strings"
	"time"
)

// Difficulty is the skill level a drill is aimed at
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists every difficulty in ascending order
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Category is the skill area a drill trains
type Category string

const (
	Passing     Category = "Passing"
	Attacking   Category = "Attacking"
	Setting     Category = "Setting"
	Serving     Category = "Serving"
	Defense     Category = "Defense"
	Blocking    Category = "Blocking"
	Competition Category = "Competition"
)

// Categories is the fixed display order of the drill library
var Categories = []Category{Passing, Attacking, Setting, Serving, Defense, Blocking, Competition}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Coach is the signed-in owner of drills and practices
type Coach struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Drill is a reusable training activity from the catalog
type Drill struct {
	ID              string     `json:"id"`
	CoachID         string     `json:"coach_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration_minutes"`
	Difficulty      Difficulty `json:"difficulty"`
	Category        Category   `json:"category"`
	Tags            []string   `json:"tags"`
	DiagramURL      string     `json:"diagram_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasTag reports whether the drill carries tag (case-insensitive)
func (d Drill) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// DrillInstance is one placement of a drill inside a practice plan.
// InstanceID, not Drill.ID, identifies it for reordering and removal,
// so the same drill can appear more than once.
type DrillInstance struct {
	Drill
	InstanceID string `json:"instanceId"`
}

// Practice is a committed, dated practice plan
type Practice struct {
	ID        string
	CoachID   string
	Title     string
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

// PracticeItem places one drill at a sort position inside a practice
type PracticeItem struct {
	ID         string
	PracticeID string
	DrillID    string
	SortOrder  int
}

// PracticeEntry is a practice item joined with its drill
type PracticeEntry struct {
	PracticeItem
	Drill Drill
}

// PracticeWithItems is a practice and its items ordered by sort position
type PracticeWithItems struct {
	Practice
	Items []PracticeEntry
}

// TotalMinutes sums the duration of every item
func (p PracticeWithItems) TotalMinutes() int {
	total := 0
	for _, it := range p.Items {
		total += it.Drill.DurationMinutes
	}
	return total
}
