package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/inventory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AssetRequest payload for create and update.
type AssetRequest struct {
	AssetCode      string                     `json:"asset_code"`
	Name           string                     `json:"name"`
	Description    *string                    `json:"description"`
	Category       domain.AssetCategory       `json:"category"`
	Status         domain.AssetStatus         `json:"status"`
	LifecycleStage domain.AssetLifecycleStage `json:"lifecycle_stage"`
	Inventoried    bool                       `json:"inventoried"`
	SupportOwner   *string                    `json:"support_owner"`
	Quantity       int                        `json:"quantity"`

	LastMaintenanceDate *string `json:"last_maintenance_date"`
	NextMaintenanceDate *string `json:"next_maintenance_date"`
	LicenseExpiry       *string `json:"license_expiry"`
	WarrantyExpiresAt   *string `json:"warranty_expires_at"`
}

// ToInput converts the request into a service input.
func (r AssetRequest) ToInput() service.AssetInput {
	return service.AssetInput{
		AssetCode:      r.AssetCode,
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		Status:         r.Status,
		LifecycleStage: r.LifecycleStage,
		Inventoried:    r.Inventoried,
		SupportOwner:   r.SupportOwner,
		Quantity:       r.Quantity,

		LastMaintenanceDate: r.LastMaintenanceDate,
		NextMaintenanceDate: r.NextMaintenanceDate,
		LicenseExpiry:       r.LicenseExpiry,
		WarrantyExpiresAt:   r.WarrantyExpiresAt,
	}
}

// AssetResponse representation.
type AssetResponse struct {
	ID             string                     `json:"id"`
	AssetCode      string                     `json:"asset_code"`
	Name           string                     `json:"name"`
	Description    *string                    `json:"description"`
	Category       domain.AssetCategory       `json:"category"`
	Status         domain.AssetStatus         `json:"status"`
	LifecycleStage domain.AssetLifecycleStage `json:"lifecycle_stage"`
	Inventoried    bool                       `json:"inventoried"`
	SupportOwner   *string                    `json:"support_owner"`
	Quantity       int                        `json:"quantity"`

	LastMaintenanceDate *string `json:"last_maintenance_date"`
	NextMaintenanceDate *string `json:"next_maintenance_date"`
	LicenseExpiry       *string `json:"license_expiry"`
	WarrantyExpiresAt   *string `json:"warranty_expires_at"`

	NextAction string `json:"next_action"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetListResponse pairs assets with dashboard indicators.
type AssetListResponse struct {
	Assets     []AssetResponse      `json:"assets"`
	Indicators inventory.Indicators `json:"indicators"`
}

// FromAsset maps a domain asset onto the response shape.
func FromAsset(a *domain.Asset) AssetResponse {
	return AssetResponse{
		ID:             a.ID,
		AssetCode:      a.AssetCode,
		Name:           a.Name,
		Description:    a.Description,
		Category:       a.Category,
		Status:         a.Status,
		LifecycleStage: a.LifecycleStage,
		Inventoried:    a.Inventoried,
		SupportOwner:   a.SupportOwner,
		Quantity:       a.Quantity,

		LastMaintenanceDate: a.LastMaintenanceDate,
		NextMaintenanceDate: a.NextMaintenanceDate,
		LicenseExpiry:       a.LicenseExpiry,
		WarrantyExpiresAt:   a.WarrantyExpiresAt,

		NextAction: inventory.NextActionLabel(a),

		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
