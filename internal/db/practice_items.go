package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/models"
)

// DeletePracticeItems removes every item of a practice. Deleting from a
// practice that has no items succeeds; a missing practice is NotFound.
func (db *DB) DeletePracticeItems(ctx context.Context, practiceID string) error {
	const op = "db.delete_practice_items"
	if err := db.practiceExists(ctx, op, practiceID); err != nil {
		return err
	}
	_, err := db.q(ctx).ExecContext(ctx, "DELETE FROM practice_items WHERE practice_id = ?", practiceID)
	return classify(op, err)
}

// InsertPracticeItems stores items as given. A drill id that is not in the
// catalog fails the whole call with a referential error.
func (db *DB) InsertPracticeItems(ctx context.Context, items []models.PracticeItem) error {
	const op = "db.insert_practice_items"
	if len(items) == 0 {
		return nil
	}
	return db.InTx(ctx, func(ctx context.Context) error {
		q := db.q(ctx)
		for _, it := range items {
			if it.SortOrder < 0 {
				return apperr.Validation(op, fmt.Errorf("negative sort order %d", it.SortOrder))
			}
			id := it.ID
			if id == "" {
				id = uuid.New().String()
			}
			_, err := q.ExecContext(ctx, `
				INSERT INTO practice_items (id, practice_id, drill_id, sort_order) VALUES (?, ?, ?, ?)
			`, id, it.PracticeID, it.DrillID, it.SortOrder)
			if err != nil {
				err = classify(op, err)
				if apperr.KindOf(err) == apperr.KindReferential {
					return apperr.Referential(op, fmt.Errorf("drill %s or practice %s no longer exists", it.DrillID, it.PracticeID))
				}
				return err
			}
		}
		return nil
	})
}

// ListPracticeItems returns the items of a practice in sort order
func (db *DB) ListPracticeItems(ctx context.Context, practiceID string) ([]models.PracticeItem, error) {
	const op = "db.list_practice_items"
	rows, err := db.q(ctx).QueryContext(ctx, `
		SELECT id, practice_id, drill_id, sort_order
		FROM practice_items
		WHERE practice_id = ?
		ORDER BY sort_order ASC
	`, practiceID)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var items []models.PracticeItem
	for rows.Next() {
		var it models.PracticeItem
		if err := rows.Scan(&it.ID, &it.PracticeID, &it.DrillID, &it.SortOrder); err != nil {
			return nil, classify(op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return items, nil
}

// practiceExists reports NotFound for practices of other coaches too
func (db *DB) practiceExists(ctx context.Context, op, id string) error {
	coachID, err := db.requireCoach(op)
	if err != nil {
		return err
	}
	var one int
	err = db.q(ctx).QueryRowContext(ctx, "SELECT 1 FROM practices WHERE id = ? AND coach_id = ?", id, coachID).Scan(&one)
	if err != nil {
		err = classify(op, err)
		if apperr.KindOf(err) == apperr.KindNotFound {
			return notFound(op, "practice", id)
		}
		return err
	}
	return nil
}
