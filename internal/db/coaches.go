package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/models"
)

// SignIn makes the named coach the active session, creating it on first use
func (db *DB) SignIn(ctx context.Context, name string) (*models.Coach, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("db.sign_in", fmt.Errorf("coach name is required"))
	}

	c, err := db.getCoachByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.q(ctx).ExecContext(ctx, `
			INSERT INTO coaches (id, name) VALUES (?, ?)
		`, uuid.New().String(), name)
		if err != nil {
			return nil, classify("db.sign_in", err)
		}
		c, err = db.getCoachByName(ctx, name)
	}
	if err != nil {
		return nil, classify("db.sign_in", err)
	}

	db.mu.Lock()
	db.session = c
	db.mu.Unlock()
	return c, nil
}

// SignOut clears the active session
func (db *DB) SignOut() {
	db.mu.Lock()
	db.session = nil
	db.mu.Unlock()
}

// CurrentCoach returns the signed-in coach, or nil
func (db *DB) CurrentCoach() *models.Coach {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.session == nil {
		return nil
	}
	c := *db.session
	return &c
}

func (db *DB) requireCoach(op string) (string, error) {
	c := db.CurrentCoach()
	if c == nil {
		return "", apperr.Unauthenticated(op, errors.New("no active session"))
	}
	return c.ID, nil
}

func (db *DB) getCoachByName(ctx context.Context, name string) (*models.Coach, error) {
	c := &models.Coach{}
	err := db.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, created_at FROM coaches WHERE name = ?
	`, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
