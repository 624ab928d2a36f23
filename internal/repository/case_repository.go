package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// CaseRepo persists legal cases. Every read and delete is scoped to the
// owning account: the user id is part of the WHERE clause, never checked
// after the fact.
type CaseRepo struct{ DB *sql.DB }

func NewCaseRepo(db *sql.DB) *CaseRepo { return &CaseRepo{DB: db} }

const caseColumns = "id,user_id,case_type,status,case_description,location,prosecute_date,history_conversation,created_at,updated_at"

// Create inserts a new case row with pending status and no snapshot.
func (r *CaseRepo) Create(ctx context.Context, c model.Case) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO cases (id, user_id, case_type, status, case_description, location, prosecute_date) VALUES (?,?,?,?,?,?,?)",
		c.ID, c.UserID, c.CaseType, model.CaseStatusPending, c.CaseDescription,
		nullString(c.Location), c.ProsecuteDate)
	return err
}

// GetForUser fetches one case owned by the given account.
func (r *CaseRepo) GetForUser(ctx context.Context, id string, userID uint64) (model.Case, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+caseColumns+" FROM cases WHERE id=? AND user_id=? LIMIT 1",
		id, userID)
	return scanCase(row)
}

// ListForUser returns all cases of an account, most recent first.
func (r *CaseRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Case, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+caseColumns+" FROM cases WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := []model.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// UpdateHistory overwrites the durable conversation snapshot of an owned
// case with the full serialized history. Always a full overwrite, never an
// append: the snapshot mirrors cache state at turn-commit time.
func (r *CaseRepo) UpdateHistory(ctx context.Context, id string, userID uint64, historyJSON []byte) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cases SET history_conversation=? WHERE id=? AND user_id=?",
		historyJSON, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForUser removes an owned case.
func (r *CaseRepo) DeleteForUser(ctx context.Context, id string, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cases WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanCase(s scanner) (model.Case, error) {
	var (
		c        model.Case
		location sql.NullString
		prosDate sql.NullTime
		history  []byte
		updated  sql.NullTime
	)
	err := s.Scan(&c.ID, &c.UserID, &c.CaseType, &c.Status, &c.CaseDescription,
		&location, &prosDate, &history, &c.CreatedAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Case{}, ErrNotFound
	}
	if err != nil {
		return model.Case{}, err
	}
	c.Location = location.String
	if prosDate.Valid {
		t := prosDate.Time
		c.ProsecuteDate = &t
	}
	c.HistoryJSON = history
	if updated.Valid {
		c.UpdatedAt = updated.Time
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
