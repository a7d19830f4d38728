package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/model"
)

const materialColumns = `id, name, category, description, price, quantity, unit, location,
	seller_id, image_url, status, created_at, updated_at`

// MaterialRepository is the only component that reads or writes the
// materials table.
type MaterialRepository struct {
	conn
}

// NewMaterialRepository returns a repository bound to the given pool.
func NewMaterialRepository(pool *sql.DB, dialect db.Dialect) *MaterialRepository {
	return &MaterialRepository{conn{pool: pool, dialect: dialect}}
}

// Create inserts a listing and returns its new ID. The unit defaults to kg.
func (r *MaterialRepository) Create(ctx context.Context, in model.MaterialInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = model.DefaultUnit
	}

	var id int64
	err := r.queryRow(ctx,
		`INSERT INTO materials (name, category, description, price, quantity, unit, location, seller_id, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		in.Name, in.Category, nullString(in.Description), *in.Price, *in.Quantity,
		unit, in.Location, in.SellerID, nullString(in.ImageURL),
	).Scan(&id)
	if err != nil {
		if classifyConstraint(err) == foreignKey {
			return 0, apperr.Constraint("seller does not exist", err)
		}
		return 0, apperr.Persistence("failed to create material", err)
	}
	return id, nil
}

// FindByID returns a listing or an apperr.ErrNotFound error.
func (r *MaterialRepository) FindByID(ctx context.Context, id int64) (*model.Material, error) {
	m, err := scanMaterial(r.queryRow(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("material not found")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to get material", err)
	}
	return m, nil
}

// FindAll returns every listing, unfiltered.
func (r *MaterialRepository) FindAll(ctx context.Context) ([]model.Material, error) {
	return r.list(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY id`)
}

// FindBySeller returns a seller's listings, newest first.
func (r *MaterialRepository) FindBySeller(ctx context.Context, sellerID int64) ([]model.Material, error) {
	return r.list(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE seller_id = ? ORDER BY created_at DESC, id DESC`,
		sellerID,
	)
}

// Search filters listings. The text query matches name or description
// case-insensitively; category and status match exactly; all filters AND.
func (r *MaterialRepository) Search(ctx context.Context, q model.MaterialQuery) ([]model.Material, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var where []string
	var args []any

	if q.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Query)) + "%"
		fold := r.dialect.Fold
		where = append(where, fmt.Sprintf(
			`(%[1]s(name) LIKE ? ESCAPE '\' OR %[1]s(description) LIKE ? ESCAPE '\')`, fold))
		args = append(args, pattern, pattern)
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + materialColumns + ` FROM materials`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	switch q.Sort {
	case model.SortPrice:
		sb.WriteString(" ORDER BY price ASC, id ASC")
	case model.SortDate:
		sb.WriteString(" ORDER BY created_at DESC, id DESC")
	default:
		sb.WriteString(" ORDER BY id")
	}

	page, pageArgs := r.dialect.Page(q.Limit, q.Offset)
	sb.WriteString(page)
	args = append(args, pageArgs...)

	return r.list(ctx, sb.String(), args...)
}

// Update writes exactly the fields present in the patch. An empty patch
// fails with apperr.ErrNoFields before any statement is issued.
func (r *MaterialRepository) Update(ctx context.Context, id int64, patch model.MaterialPatch) error {
	if patch.Empty() {
		return apperr.ErrNoFields
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	sets, args := materialAssignments(&patch)
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := r.exec(ctx,
		`UPDATE materials SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return apperr.Persistence("failed to update material", err)
	}
	return requireAffected(result, "material not found")
}

// SetStatus moves a listing to a moderation status.
func (r *MaterialRepository) SetStatus(ctx context.Context, id int64, status string) error {
	if !model.ValidMaterialStatus(status) {
		return apperr.Validation("invalid status")
	}
	result, err := r.exec(ctx,
		`UPDATE materials SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return apperr.Persistence("failed to update material status", err)
	}
	return requireAffected(result, "material not found")
}

// Delete removes a listing and reports whether a row was removed.
func (r *MaterialRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.exec(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return false, apperr.Persistence("failed to delete material", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("failed to delete material", err)
	}
	return n > 0, nil
}

// materialAssignments renders one "column = ?" per present patch field.
func materialAssignments(p *model.MaterialPatch) ([]string, []any) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if p.Name.Set {
		set("name", p.Name.Value)
	}
	if p.Category.Set {
		set("category", p.Category.Value)
	}
	if p.Description.Set {
		set("description", p.Description.Value)
	}
	if p.Price.Set {
		set("price", p.Price.Value)
	}
	if p.Quantity.Set {
		set("quantity", p.Quantity.Value)
	}
	if p.Unit.Set {
		set("unit", p.Unit.Value)
	}
	if p.Location.Set {
		set("location", p.Location.Value)
	}
	if p.ImageURL.Set {
		set("image_url", p.ImageURL.Value)
	}
	return sets, args
}

func (r *MaterialRepository) list(ctx context.Context, query string, args ...any) ([]model.Material, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("failed to list materials", err)
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to read material", err)
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list materials", err)
	}
	return materials, nil
}

func scanMaterial(row scanner) (*model.Material, error) {
	m := &model.Material{}
	var description, imageURL sql.NullString
	err := row.Scan(&m.ID, &m.Name, &m.Category, &description, &m.Price, &m.Quantity, &m.Unit,
		&m.Location, &m.SellerID, &imageURL, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	m.ImageURL = imageURL.String
	return m, nil
}

func requireAffected(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperr.Persistence("failed to read affected rows", err)
	}
	if n == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}
