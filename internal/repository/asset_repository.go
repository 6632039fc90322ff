package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/facility-service/internal/domain"
)

// AssetRepository encapsulates facility asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.FacilityAsset) error
	Update(ctx context.Context, asset *domain.FacilityAsset) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.FacilityAsset, error)
	List(ctx context.Context, limit, offset int) ([]domain.FacilityAsset, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.FacilityAsset) error {
	const query = `
        INSERT INTO facility_assets (name, category, location, serial_number, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		asset.Name,
		asset.Category,
		asset.Location,
		asset.SerialNumber,
		asset.Status,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.FacilityAsset) error {
	const query = `
        UPDATE facility_assets SET name=$1, category=$2, location=$3, serial_number=$4, status=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		asset.Name,
		asset.Category,
		asset.Location,
		asset.SerialNumber,
		asset.Status,
		asset.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM facility_assets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.FacilityAsset, error) {
	const query = `
        SELECT id, name, category, location, serial_number, status, created_at, updated_at
        FROM facility_assets WHERE id=$1`
	var asset domain.FacilityAsset
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Category,
		&asset.Location,
		&asset.SerialNumber,
		&asset.Status,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, limit, offset int) ([]domain.FacilityAsset, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, name, category, location, serial_number, status, created_at, updated_at
        FROM facility_assets ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FacilityAsset
	for rows.Next() {
		var asset domain.FacilityAsset
		if err := rows.Scan(
			&asset.ID,
			&asset.Name,
			&asset.Category,
			&asset.Location,
			&asset.SerialNumber,
			&asset.Status,
			&asset.CreatedAt,
			&asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}
