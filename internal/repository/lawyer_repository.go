package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// LawyerRepo reads the lawyer candidate table.
type LawyerRepo struct{ DB *sql.DB }

func NewLawyerRepo(db *sql.DB) *LawyerRepo { return &LawyerRepo{DB: db} }

const lawyerColumns = "id,name,email,expertise,price,rating,introduction,location,law_firm,firm_address"

// GetByID fetches one candidate.
func (r *LawyerRepo) GetByID(ctx context.Context, id uint64) (model.Lawyer, error) {
	var l model.Lawyer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+lawyerColumns+" FROM lawyers WHERE id=? LIMIT 1",
		id).Scan(&l.ID, &l.Name, &l.Email, &l.Expertise, &l.Price, &l.Rating,
		&l.Introduction, &l.Location, &l.LawFirm, &l.FirmAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lawyer{}, ErrNotFound
	}
	return l, err
}

// ListAll returns every candidate. The table is small by design; the whole
// list is serialized into the matching prompt.
func (r *LawyerRepo) ListAll(ctx context.Context) ([]model.Lawyer, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+lawyerColumns+" FROM lawyers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lawyers := []model.Lawyer{}
	for rows.Next() {
		var l model.Lawyer
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Expertise, &l.Price, &l.Rating,
			&l.Introduction, &l.Location, &l.LawFirm, &l.FirmAddress); err != nil {
			return nil, err
		}
		lawyers = append(lawyers, l)
	}
	return lawyers, rows.Err()
}
