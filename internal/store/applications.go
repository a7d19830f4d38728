package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/model"
)

const applicationColumns = `id, title, description, material_type, deal_type, quantity, price,
	material_id, user_id, status, created_at, updated_at`

// ApplicationRepository stores buy and sell requests.
type ApplicationRepository struct {
	conn
}

// NewApplicationRepository returns a repository bound to the given pool.
func NewApplicationRepository(pool *sql.DB, dialect db.Dialect) *ApplicationRepository {
	return &ApplicationRepository{conn{pool: pool, dialect: dialect}}
}

// Create inserts an application and returns the stored record.
func (r *ApplicationRepository) Create(ctx context.Context, in model.ApplicationInput) (*model.Application, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var materialID sql.NullInt64
	if in.MaterialID != nil {
		materialID = sql.NullInt64{Int64: *in.MaterialID, Valid: true}
	}

	var id int64
	err := r.queryRow(ctx,
		`INSERT INTO applications (title, description, material_type, deal_type, quantity, price, material_id, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		strings.TrimSpace(in.Title), nullString(in.Description), in.MaterialType, in.DealType,
		*in.Quantity, *in.Price, materialID, in.UserID,
	).Scan(&id)
	if err != nil {
		if classifyConstraint(err) == foreignKey {
			return nil, apperr.Constraint("referenced material or user does not exist", err)
		}
		return nil, apperr.Persistence("failed to create application", err)
	}
	return r.Get(ctx, id)
}

// Get returns an application or an apperr.ErrNotFound error.
func (r *ApplicationRepository) Get(ctx context.Context, id int64) (*model.Application, error) {
	a, err := scanApplication(r.queryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("application not found")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to get application", err)
	}
	return a, nil
}

// List returns applications matching the filter, newest first.
func (r *ApplicationRepository) List(ctx context.Context, f model.ApplicationFilter) ([]model.Application, error) {
	if f.Status != "" && !model.ValidApplicationStatus(f.Status) {
		return nil, apperr.Validation("invalid status")
	}

	var where []string
	var args []any
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("failed to list applications", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to read application", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list applications", err)
	}
	return apps, nil
}

// Update writes the present patch fields. An empty patch fails with
// apperr.ErrNoFields before any statement is issued.
func (r *ApplicationRepository) Update(ctx context.Context, id int64, patch model.ApplicationPatch) error {
	if patch.Empty() {
		return apperr.ErrNoFields
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Title.Set {
		set("title", strings.TrimSpace(patch.Title.Value))
	}
	if patch.Description.Set {
		set("description", patch.Description.Value)
	}
	if patch.MaterialType.Set {
		set("material_type", patch.MaterialType.Value)
	}
	if patch.DealType.Set {
		set("deal_type", patch.DealType.Value)
	}
	if patch.Quantity.Set {
		set("quantity", patch.Quantity.Value)
	}
	if patch.Price.Set {
		set("price", patch.Price.Value)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := r.exec(ctx,
		`UPDATE applications SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return apperr.Persistence("failed to update application", err)
	}
	return requireAffected(result, "application not found")
}

// SetStatus moves an application to a new status.
func (r *ApplicationRepository) SetStatus(ctx context.Context, id int64, status string) error {
	if !model.ValidApplicationStatus(status) {
		return apperr.Validation("invalid status")
	}
	result, err := r.exec(ctx,
		`UPDATE applications SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return apperr.Persistence("failed to update application", err)
	}
	return requireAffected(result, "application not found")
}

// Delete removes an application and reports whether a row was removed.
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.exec(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return false, apperr.Persistence("failed to delete application", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("failed to delete application", err)
	}
	return n > 0, nil
}

func scanApplication(row scanner) (*model.Application, error) {
	a := &model.Application{}
	var description sql.NullString
	var materialID sql.NullInt64
	err := row.Scan(&a.ID, &a.Title, &description, &a.MaterialType, &a.DealType, &a.Quantity, &a.Price,
		&materialID, &a.UserID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Description = description.String
	if materialID.Valid {
		a.MaterialID = &materialID.Int64
	}
	return a, nil
}
