package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssetFilter scopes asset listings. Term/category/status filtering is
// applied in memory by the inventory package; the repository only narrows
// by ownership.
type AssetFilter struct {
	SupportOwner *string
}

// AssetRepository encapsulates asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
	Delete(ctx context.Context, id string) error
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, asset_code, name, description, category, status, lifecycle_stage,
       inventoried, support_owner, quantity,
       last_maintenance_date, next_maintenance_date, license_expiry, warranty_expires_at,
       created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (asset_code, name, description, category, status, lifecycle_stage,
            inventoried, support_owner, quantity,
            last_maintenance_date, next_maintenance_date, license_expiry, warranty_expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		asset.AssetCode,
		asset.Name,
		asset.Description,
		asset.Category,
		asset.Status,
		asset.LifecycleStage,
		asset.Inventoried,
		asset.SupportOwner,
		asset.Quantity,
		asset.LastMaintenanceDate,
		asset.NextMaintenanceDate,
		asset.LicenseExpiry,
		asset.WarrantyExpiresAt,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET asset_code=$1, name=$2, description=$3, category=$4, status=$5,
            lifecycle_stage=$6, inventoried=$7, support_owner=$8, quantity=$9,
            last_maintenance_date=$10, next_maintenance_date=$11, license_expiry=$12,
            warranty_expires_at=$13, updated_at=NOW()
        WHERE id=$14`
	cmd, err := r.pool.Exec(ctx, query,
		asset.AssetCode,
		asset.Name,
		asset.Description,
		asset.Category,
		asset.Status,
		asset.LifecycleStage,
		asset.Inventoried,
		asset.SupportOwner,
		asset.Quantity,
		asset.LastMaintenanceDate,
		asset.NextMaintenanceDate,
		asset.LicenseExpiry,
		asset.WarrantyExpiresAt,
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

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id=$1`
	var asset domain.Asset
	if err := r.pool.QueryRow(ctx, query, id).Scan(assetScanTargets(&asset)...); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	args := []any{}
	if filter.SupportOwner != nil {
		query += ` WHERE support_owner=$1`
		args = append(args, *filter.SupportOwner)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(assetScanTargets(&asset)...); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func assetScanTargets(asset *domain.Asset) []any {
	return []any{
		&asset.ID,
		&asset.AssetCode,
		&asset.Name,
		&asset.Description,
		&asset.Category,
		&asset.Status,
		&asset.LifecycleStage,
		&asset.Inventoried,
		&asset.SupportOwner,
		&asset.Quantity,
		&asset.LastMaintenanceDate,
		&asset.NextMaintenanceDate,
		&asset.LicenseExpiry,
		&asset.WarrantyExpiresAt,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	}
}
