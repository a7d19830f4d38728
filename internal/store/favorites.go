package store

import (
	"context"
	"database/sql"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/model"
)

// FavoriteRepository stores the listings each user has bookmarked. A pair
// is stored at most once; rows go away with the user or the listing.
type FavoriteRepository struct {
	conn
}

// NewFavoriteRepository returns a repository bound to the given pool.
func NewFavoriteRepository(pool *sql.DB, dialect db.Dialect) *FavoriteRepository {
	return &FavoriteRepository{conn{pool: pool, dialect: dialect}}
}

// Add bookmarks a listing. Adding an existing favorite is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userID, materialID int64) error {
	_, err := r.exec(ctx,
		`INSERT INTO favorites (user_id, material_id) VALUES (?, ?)
		 ON CONFLICT (user_id, material_id) DO NOTHING`,
		userID, materialID,
	)
	if err != nil {
		if classifyConstraint(err) == foreignKey {
			return apperr.NotFound("material not found")
		}
		return apperr.Persistence("failed to add favorite", err)
	}
	return nil
}

// Remove drops a bookmark and reports whether it existed.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, materialID int64) (bool, error) {
	result, err := r.exec(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND material_id = ?`,
		userID, materialID,
	)
	if err != nil {
		return false, apperr.Persistence("failed to remove favorite", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("failed to remove favorite", err)
	}
	return n > 0, nil
}

// IDs returns the bookmarked listing IDs in the order they were added.
func (r *FavoriteRepository) IDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.query(ctx,
		`SELECT material_id FROM favorites WHERE user_id = ? ORDER BY created_at, material_id`,
		userID,
	)
	if err != nil {
		return nil, apperr.Persistence("failed to list favorites", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Persistence("failed to read favorite", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list favorites", err)
	}
	return ids, nil
}

// Materials returns the bookmarked listings themselves.
func (r *FavoriteRepository) Materials(ctx context.Context, userID int64) ([]model.Material, error) {
	rows, err := r.query(ctx,
		`SELECT `+prefixColumns("m", materialColumns)+`
		 FROM favorites f JOIN materials m ON m.id = f.material_id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at, f.material_id`,
		userID,
	)
	if err != nil {
		return nil, apperr.Persistence("failed to list favorites", err)
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, apperr.Persistence("failed to read material", err)
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to list favorites", err)
	}
	return materials, nil
}
