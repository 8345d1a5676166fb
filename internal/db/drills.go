package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/models"
)

const drillColumns = `id, coach_id, title, description, duration_minutes, difficulty, category, tags, diagram_url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDrill(row rowScanner) (models.Drill, error) {
	var d models.Drill
	var tags string
	err := row.Scan(&d.ID, &d.CoachID, &d.Title, &d.Description, &d.DurationMinutes,
		&d.Difficulty, &d.Category, &tags, &d.DiagramURL, &d.CreatedAt)
	if err != nil {
		return d, err
	}
	return d, decodeTags(tags, &d)
}

func decodeTags(raw string, d *models.Drill) error {
	if err := json.Unmarshal([]byte(raw), &d.Tags); err != nil {
		return fmt.Errorf("decode tags of drill %s: %w", d.ID, err)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

// CreateDrill adds a drill to the catalog for the signed-in coach
func (db *DB) CreateDrill(ctx context.Context, fields models.DrillFields) (*models.Drill, error) {
	const op = "db.create_drill"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	tags, err := encodeTags(fields.Tags)
	if err != nil {
		return nil, apperr.Validation(op, err)
	}

	id := uuid.New().String()
	_, err = db.q(ctx).ExecContext(ctx, `
		INSERT INTO drills (id, coach_id, title, description, duration_minutes, difficulty, category, tags, diagram_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, coachID, fields.Title, fields.Description, fields.DurationMinutes,
		fields.Difficulty, fields.Category, tags, fields.DiagramURL)
	if err != nil {
		return nil, classify(op, err)
	}

	return db.GetDrill(ctx, id)
}

// GetDrill retrieves one of the signed-in coach's drills by ID
func (db *DB) GetDrill(ctx context.Context, id string) (*models.Drill, error) {
	const op = "db.get_drill"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	d, err := scanDrill(db.q(ctx).QueryRowContext(ctx,
		`SELECT `+drillColumns+` FROM drills WHERE id = ? AND coach_id = ?`, id, coachID))
	if err != nil {
		return nil, classify(op, err)
	}
	return &d, nil
}

// ListDrills returns the signed-in coach's drills, newest first
func (db *DB) ListDrills(ctx context.Context) ([]models.Drill, error) {
	const op = "db.list_drills"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	return db.queryDrills(ctx, op, `
		SELECT `+drillColumns+` FROM drills
		WHERE coach_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, coachID)
}

// SearchDrills returns drills whose title or description contains query
func (db *DB) SearchDrills(ctx context.Context, query string) ([]models.Drill, error) {
	const op = "db.search_drills"
	query = strings.TrimSpace(query)
	if query == "" {
		return db.ListDrills(ctx)
	}
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	pattern := "%" + query + "%"
	return db.queryDrills(ctx, op, `
		SELECT `+drillColumns+` FROM drills
		WHERE coach_id = ? AND (title LIKE ? OR description LIKE ?)
		ORDER BY created_at DESC, rowid DESC
	`, coachID, pattern, pattern)
}

func (db *DB) queryDrills(ctx context.Context, op, query string, args ...any) ([]models.Drill, error) {
	rows, err := db.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var drills []models.Drill
	for rows.Next() {
		d, err := scanDrill(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		drills = append(drills, d)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return drills, nil
}

// UpdateDrill replaces the editable fields of a drill
func (db *DB) UpdateDrill(ctx context.Context, id string, fields models.DrillFields) (*models.Drill, error) {
	const op = "db.update_drill"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return nil, err
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	tags, err := encodeTags(fields.Tags)
	if err != nil {
		return nil, apperr.Validation(op, err)
	}

	res, err := db.q(ctx).ExecContext(ctx, `
		UPDATE drills SET title = ?, description = ?, duration_minutes = ?, difficulty = ?,
			category = ?, tags = ?, diagram_url = ?
		WHERE id = ? AND coach_id = ?
	`, fields.Title, fields.Description, fields.DurationMinutes, fields.Difficulty,
		fields.Category, tags, fields.DiagramURL, id, coachID)
	if err != nil {
		return nil, classify(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound(op, "drill", id)
	}
	return db.GetDrill(ctx, id)
}

// DeleteDrill removes a drill. Drills used by a saved practice cannot be deleted.
func (db *DB) DeleteDrill(ctx context.Context, id string) error {
	const op = "db.delete_drill"
	coachID, err := db.requireCoach(op)
	if err != nil {
		return err
	}
	res, err := db.q(ctx).ExecContext(ctx, "DELETE FROM drills WHERE id = ? AND coach_id = ?", id, coachID)
	if err != nil {
		err = classify(op, err)
		if errors.Is(err, apperr.ErrReferential) {
			return apperr.Referential(op, fmt.Errorf("drill %s is used by a saved practice", id))
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(op, "drill", id)
	}
	return nil
}
