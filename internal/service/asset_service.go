package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/inventory"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssetService manages the asset inventory and its dashboard indicators.
type AssetService struct {
	assets repository.AssetRepository
	feed   realtime.Publisher
	logger *zap.Logger
}

// AssetDependencies bundles collaborators for the asset service.
type AssetDependencies struct {
	AssetRepo repository.AssetRepository
	Feed      realtime.Publisher
	Logger    *zap.Logger
}

// AssetInput carries create/update payloads for assets.
type AssetInput struct {
	AssetCode      string
	Name           string
	Description    *string
	Category       domain.AssetCategory
	Status         domain.AssetStatus
	LifecycleStage domain.AssetLifecycleStage
	Inventoried    bool
	SupportOwner   *string
	Quantity       int

	LastMaintenanceDate *string
	NextMaintenanceDate *string
	LicenseExpiry       *string
	WarrantyExpiresAt   *string
}

// AssetListResult pairs the filtered assets with indicators computed over
// the same visibility scope, before term/category/status narrowing.
type AssetListResult struct {
	Assets     []domain.Asset
	Indicators inventory.Indicators
}

// NewAssetService constructs the service.
func NewAssetService(deps AssetDependencies) *AssetService {
	return &AssetService{assets: deps.AssetRepo, feed: deps.Feed, logger: deps.Logger}
}

// ListAssets returns assets visible to the actor together with the
// indicator summary. Support users see only assets they own; employees
// and admins see the full inventory. Term, category, and status filters
// narrow the list but not the indicators.
func (s *AssetService) ListAssets(ctx context.Context, actor *domain.User, opts inventory.FilterOptions) (*AssetListResult, error) {
	repoFilter := repository.AssetFilter{}
	if actor.Role == domain.RoleSupport {
		repoFilter.SupportOwner = &actor.ID
	}

	assets, err := s.assets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &AssetListResult{
		Assets:     inventory.Filter(assets, opts),
		Indicators: inventory.BuildIndicators(assets, time.Now()),
	}, nil
}

// GetAsset fetches a single asset within the actor's visibility scope.
func (s *AssetService) GetAsset(ctx context.Context, actor *domain.User, id string) (*domain.Asset, error) {
	asset, err := s.fetchAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleSupport {
		if asset.SupportOwner == nil || *asset.SupportOwner != actor.ID {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
	}
	return asset, nil
}

// CreateAsset registers a new asset. Admin only.
func (s *AssetService) CreateAsset(ctx context.Context, actor *domain.User, input AssetInput) (*domain.Asset, error) {
	if !auth.CanManageAssets(actor) {
		return nil, apperrors.NewForbidden("asset management requires admin role")
	}
	asset := &domain.Asset{}
	if err := applyAssetInput(asset, input); err != nil {
		return nil, err
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssetChange(ctx, realtime.ActionInsert, asset)
	return asset, nil
}

// UpdateAsset rewrites an existing asset. Admin only.
func (s *AssetService) UpdateAsset(ctx context.Context, actor *domain.User, id string, input AssetInput) (*domain.Asset, error) {
	if !auth.CanManageAssets(actor) {
		return nil, apperrors.NewForbidden("asset management requires admin role")
	}
	asset, err := s.fetchAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAssetInput(asset, input); err != nil {
		return nil, err
	}
	if err := s.assets.Update(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssetChange(ctx, realtime.ActionUpdate, asset)
	return asset, nil
}

// DeleteAsset removes an asset. Admin only.
func (s *AssetService) DeleteAsset(ctx context.Context, actor *domain.User, id string) error {
	if !auth.CanManageAssets(actor) {
		return apperrors.NewForbidden("asset management requires admin role")
	}
	asset, err := s.fetchAsset(ctx, id)
	if err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, asset.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishChange(ctx, realtime.NewChangeEvent(realtime.TableAssets, realtime.ActionDelete, asset.ID, nil))
	return nil
}

func (s *AssetService) fetchAsset(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

func (s *AssetService) publishAssetChange(ctx context.Context, action realtime.Action, asset *domain.Asset) {
	s.publishChange(ctx, realtime.NewChangeEvent(realtime.TableAssets, action, asset.ID, assetRow(asset)))
}

func (s *AssetService) publishChange(ctx context.Context, ev realtime.ChangeEvent) {
	if s.feed == nil {
		return
	}
	s.feed.PublishChange(ctx, ev)
}

// applyAssetInput validates and copies the payload onto the asset.
// Dates are trimmed first, so blank values count as absent; malformed
// values are rejected on write even though reads tolerate them.
func applyAssetInput(asset *domain.Asset, input AssetInput) error {
	code := strings.TrimSpace(input.AssetCode)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return apperrors.NewValidationError("asset_code and name required", nil)
	}
	if !domain.ValidAssetCategory(input.Category) {
		return apperrors.NewValidationError("unknown asset category", map[string]any{"category": input.Category})
	}
	if !domain.ValidAssetStatus(input.Status) {
		return apperrors.NewValidationError("unknown asset status", map[string]any{"status": input.Status})
	}
	stage := input.LifecycleStage
	if stage == "" {
		stage = domain.AssetStageUse
	}
	if !domain.ValidAssetLifecycleStage(stage) {
		return apperrors.NewValidationError("unknown lifecycle stage", map[string]any{"lifecycle_stage": stage})
	}
	if input.Quantity <= 0 {
		return apperrors.NewValidationError("quantity must be positive", map[string]any{"quantity": input.Quantity})
	}
	lastMaintenance := normalizeDate(input.LastMaintenanceDate)
	nextMaintenance := normalizeDate(input.NextMaintenanceDate)
	licenseExpiry := normalizeDate(input.LicenseExpiry)
	warrantyExpires := normalizeDate(input.WarrantyExpiresAt)
	for field, value := range map[string]*string{
		"last_maintenance_date": lastMaintenance,
		"next_maintenance_date": nextMaintenance,
		"license_expiry":        licenseExpiry,
		"warranty_expires_at":   warrantyExpires,
	} {
		if !inventory.ParseableDate(value) {
			return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"field": field})
		}
	}

	asset.AssetCode = code
	asset.Name = name
	asset.Description = input.Description
	asset.Category = input.Category
	asset.Status = input.Status
	asset.LifecycleStage = stage
	asset.Inventoried = input.Inventoried
	asset.SupportOwner = input.SupportOwner
	asset.Quantity = input.Quantity
	asset.LastMaintenanceDate = lastMaintenance
	asset.NextMaintenanceDate = nextMaintenance
	asset.LicenseExpiry = licenseExpiry
	asset.WarrantyExpiresAt = warrantyExpires
	return nil
}

func normalizeDate(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
