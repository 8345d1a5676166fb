package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/models"
)

const practiceColumns = `id, coach_id, title, practice_date, notes, created_at`

func scanPractice(row rowScanner) (models.Practice, error) {
	var p models.Practice
	var date string
	if err := row.Scan(&p.ID, &p.CoachID, &p.Title, &date, &p.Notes, &p.CreatedAt); err != nil {
		return p, err
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return p, fmt.Errorf("decode date of practice %s: %w", p.ID, err)
	}
	p.Date = d
	return p, nil
}

// CreatePractice stores a new practice for the signed-in coach
func (db *DB) CreatePractice(ctx context.Context, title string, date time.Time, notes string) (*models.Practice, error) {
	const op = "db.create_practice"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation(op, fmt.Errorf("title is required"))
	}
	if date.IsZero() {
		return nil, apperr.Validation(op, fmt.Errorf("date is required"))
	}

	id := uuid.New().String()
	_, err = db.q(ctx).ExecContext(ctx, `
		INSERT INTO practices (id, coach_id, title, practice_date, notes) VALUES (?, ?, ?, ?, ?)
	`, id, coachID, title, models.FormatDate(date), notes)
	if err != nil {
		return nil, classify(op, err)
	}

	return db.GetPractice(ctx, id)
}

// GetPractice retrieves one of the signed-in coach's practices by ID
func (db *DB) GetPractice(ctx context.Context, id string) (*models.Practice, error) {
	const op = "db.get_practice"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	p, err := scanPractice(db.q(ctx).QueryRowContext(ctx,
		`SELECT `+practiceColumns+` FROM practices WHERE id = ? AND coach_id = ?`, id, coachID))
	if err != nil {
		return nil, classify(op, err)
	}
	return &p, nil
}

// ListPractices returns the signed-in coach's practices, latest date first
func (db *DB) ListPractices(ctx context.Context) ([]models.Practice, error) {
	const op = "db.list_practices"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	rows, err := db.q(ctx).QueryContext(ctx, `
		SELECT `+practiceColumns+` FROM practices
		WHERE coach_id = ?
		ORDER BY practice_date DESC, created_at DESC, rowid DESC
	`, coachID)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var practices []models.Practice
	for rows.Next() {
		p, err := scanPractice(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		practices = append(practices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return practices, nil
}

// GetPracticeWithItems loads a practice and its drills in sort order
func (db *DB) GetPracticeWithItems(ctx context.Context, id string) (*models.PracticeWithItems, error) {
	const op = "db.get_practice_with_items"
	p, err := db.GetPractice(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := db.q(ctx).QueryContext(ctx, `
		SELECT pi.id, pi.practice_id, pi.drill_id, pi.sort_order,
			d.id, d.coach_id, d.title, d.description, d.duration_minutes, d.difficulty,
			d.category, d.tags, d.diagram_url, d.created_at
		FROM practice_items pi
		JOIN drills d ON d.id = pi.drill_id
		WHERE pi.practice_id = ?
		ORDER BY pi.sort_order ASC
	`, id)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := &models.PracticeWithItems{Practice: *p}
	for rows.Next() {
		var e models.PracticeEntry
		var tags string
		err := rows.Scan(&e.ID, &e.PracticeID, &e.DrillID, &e.SortOrder,
			&e.Drill.ID, &e.Drill.CoachID, &e.Drill.Title, &e.Drill.Description,
			&e.Drill.DurationMinutes, &e.Drill.Difficulty, &e.Drill.Category, &tags,
			&e.Drill.DiagramURL, &e.Drill.CreatedAt)
		if err != nil {
			return nil, classify(op, err)
		}
		if err := decodeTags(tags, &e.Drill); err != nil {
			return nil, classify(op, err)
		}
		out.Items = append(out.Items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// DeletePractice removes a practice and its items
func (db *DB) DeletePractice(ctx context.Context, id string) error {
	const op = "db.delete_practice"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return err
	}
	res, err := db.q(ctx).ExecContext(ctx, "DELETE FROM practices WHERE id = ? AND coach_id = ?", id, coachID)
	if err != nil {
		return classify(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(op, "practice", id)
	}
	return nil
}

// PracticeCount returns the number of practices the signed-in coach saved
func (db *DB) PracticeCount(ctx context.Context) (int, error) {
	const op = "db.practice_count"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return 0, err
	}
	var count int
	err = db.q(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM practices WHERE coach_id = ?", coachID).Scan(&count)
	return count, classify(op, err)
}
