package views

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/models"
	"github.com/tgienger/skyhawk/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// BackToBuilder signals to return to the plan builder
type BackToBuilder struct{}

// OpenLibrary signals to show the drill library
type OpenLibrary struct{}

// OpenHistory signals to show saved practices
type OpenHistory struct{}

// AddToPlan asks the builder to append a drill to the draft
type AddToPlan struct {
	Drill models.Drill
}

// LoadPractice asks the builder to copy a saved practice into the draft
type LoadPractice struct {
	Practice models.PracticeWithItems
}

// DrillsChanged is sent after the library creates, edits or deletes a drill
type DrillsChanged struct{}

// PracticeSaved is sent after a draft was committed
type PracticeSaved struct {
	Practice models.Practice
}

// CommitFinished carries the outcome of a background commit
type CommitFinished struct {
	Result *builder.CommitResult
	Err    error
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusOK
	statusWarning
	statusError
)

// status is the one-line message under a view
type status struct {
	text  string
	level statusLevel
}

func errorStatus(err error) status {
	return status{text: apperr.Message(err), level: statusError}
}

func (s status) render(st *styles.Styles) string {
	if s.text == "" {
		return ""
	}
	switch s.level {
	case statusOK:
		return st.StatusOK.Render(s.text)
	case statusWarning:
		return st.StatusWarning.Render(s.text)
	case statusError:
		return st.StatusError.Render(s.text)
	}
	return st.StatusInfo.Render(s.text)
}

// renderPopup centers a bordered box of lines in the content area
func renderPopup(s *styles.Styles, title string, lines []string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render(title), ""}, lines...)...,
	)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

// renderConfirm draws the Y/N confirmation used before destructive actions
func renderConfirm(s *styles.Styles, question, detail string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(question),
		"",
		s.TitleMuted.Render(detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

// drillMeta renders "10 min · Intermediate · Passing"
func drillMeta(s *styles.Styles, d models.Drill) string {
	diff := lipgloss.NewStyle().Foreground(styles.DifficultyColor(d.Difficulty)).Render(string(d.Difficulty))
	return s.DrillMeta.Render(minutes(d.DurationMinutes)+" · ") + diff + s.DrillMeta.Render(" · "+string(d.Category))
}

func minutes(n int) string {
	return strconv.Itoa(n) + " min"
}
