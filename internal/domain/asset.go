package domain

import "time"

// AssetCategory classifies tracked IT resources.
type AssetCategory string

const (
	AssetCategoryHardware   AssetCategory = "hardware"
	AssetCategorySoftware   AssetCategory = "software"
	AssetCategoryLicense    AssetCategory = "license"
	AssetCategoryNetwork    AssetCategory = "network"
	AssetCategoryPeripheral AssetCategory = "peripheral"
	AssetCategoryOther      AssetCategory = "other"
)

// AssetStatus enumerates operational states. Values match the inventory
// labels used by the business side.
type AssetStatus string

const (
	AssetStatusInUse       AssetStatus = "em uso"
	AssetStatusMaintenance AssetStatus = "em manutenção"
	AssetStatusPlanned     AssetStatus = "planejado"
	AssetStatusObsolete    AssetStatus = "obsoleto"
)

// AssetLifecycleStage tracks where the asset sits in its lifecycle.
type AssetLifecycleStage string

const (
	AssetStageAcquisition AssetLifecycleStage = "acquisition"
	AssetStageDeployment  AssetLifecycleStage = "deployment"
	AssetStageUse         AssetLifecycleStage = "use"
	AssetStageMaintenance AssetLifecycleStage = "maintenance"
	AssetStageDisposal    AssetLifecycleStage = "disposal"
)

// ValidAssetCategory reports whether the value is a known category.
func ValidAssetCategory(c AssetCategory) bool {
	switch c {
	case AssetCategoryHardware, AssetCategorySoftware, AssetCategoryLicense, AssetCategoryNetwork, AssetCategoryPeripheral, AssetCategoryOther:
		return true
	}
	return false
}

// ValidAssetStatus reports whether the value is a known status.
func ValidAssetStatus(s AssetStatus) bool {
	switch s {
	case AssetStatusInUse, AssetStatusMaintenance, AssetStatusPlanned, AssetStatusObsolete:
		return true
	}
	return false
}

// ValidAssetLifecycleStage reports whether the value is a known stage.
func ValidAssetLifecycleStage(s AssetLifecycleStage) bool {
	switch s {
	case AssetStageAcquisition, AssetStageDeployment, AssetStageUse, AssetStageMaintenance, AssetStageDisposal:
		return true
	}
	return false
}

// Asset is a tracked IT resource. Maintenance and license dates are kept
// as ISO strings (YYYY-MM-DD); malformed values are tolerated on read and
// simply excluded from derived indicators.
type Asset struct {
	ID             string
	AssetCode      string
	Name           string
	Description    *string
	Category       AssetCategory
	Status         AssetStatus
	LifecycleStage AssetLifecycleStage
	Inventoried    bool
	SupportOwner   *string
	Quantity       int

	LastMaintenanceDate *string
	NextMaintenanceDate *string
	LicenseExpiry       *string
	WarrantyExpiresAt   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
