package models

import (
	"time"
)

// DefaultDraftTitle is the placeholder title of a fresh plan
const DefaultDraftTitle = "New Practice Plan"

// DateLayout is the ISO-8601 calendar date layout used for storage
const DateLayout = time.DateOnly

// CalendarDate returns midnight UTC of t's calendar day in t's own location
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return CalendarDate(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Draft is the in-progress practice plan
type Draft struct {
	Title     string
	Date      time.Time
	Instances []DrillInstance
}

// NewDraft returns the default empty draft for the given day
func NewDraft(today time.Time) Draft {
	return Draft{
		Title:     DefaultDraftTitle,
		Date:      CalendarDate(today),
		Instances: []DrillInstance{},
	}
}

// TotalMinutes sums the duration of every instance
func (d Draft) TotalMinutes() int {
	total := 0
	for _, in := range d.Instances {
		total += in.DurationMinutes
	}
	return total
}

// Len returns the number of drill instances
func (d Draft) Len() int { return len(d.Instances) }

// IsEmpty reports whether the draft holds no drills
func (d Draft) IsEmpty() bool { return len(d.Instances) == 0 }

// Clone returns a deep copy that shares no slices with d
func (d Draft) Clone() Draft {
	out := Draft{Title: d.Title, Date: d.Date, Instances: make([]DrillInstance, len(d.Instances))}
	for i, in := range d.Instances {
		out.Instances[i] = in.Clone()
	}
	return out
}

// Clone returns a copy of the instance with its own tag slice
func (in DrillInstance) Clone() DrillInstance {
	if in.Tags != nil {
		in.Tags = append([]string(nil), in.Tags...)
	}
	return in
}
