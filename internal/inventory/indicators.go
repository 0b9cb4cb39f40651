package inventory

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const dateLayout = "2006-01-02"

// licenseExpiryWindow is how far ahead a license expiry counts as
// "expiring". Already-expired licenses still count: there is no lower
// bound on the window.
const licenseExpiryWindow = 30 * 24 * time.Hour

// Indicators summarizes an asset list for dashboards.
type Indicators struct {
	Total            int `json:"total"`
	Inventoried      int `json:"inventoried"`
	PendingInventory int `json:"pending_inventory"`
	ExpiringLicense  int `json:"expiring_license"`
	MaintenanceDue   int `json:"maintenance_due"`
	Obsolete         int `json:"obsolete"`
}

// BuildIndicators computes summary counters over the assets as of the
// given day. Counts are order-independent; unparseable date strings are
// treated as absent.
func BuildIndicators(assets []domain.Asset, today time.Time) Indicators {
	ind := Indicators{Total: len(assets)}
	expiryCutoff := today.Add(licenseExpiryWindow)

	for _, asset := range assets {
		if asset.Inventoried {
			ind.Inventoried++
		}
		if expiry, ok := parseDate(asset.LicenseExpiry); ok && !expiry.After(expiryCutoff) {
			ind.ExpiringLicense++
		}
		if due, ok := parseDate(asset.NextMaintenanceDate); ok && !due.After(today) {
			ind.MaintenanceDue++
		}
		if asset.Status == domain.AssetStatusObsolete {
			ind.Obsolete++
		}
	}
	ind.PendingInventory = ind.Total - ind.Inventoried
	return ind
}

// NextActionLabel picks the most relevant upcoming action for an asset:
// license renewal, then scheduled maintenance, then the last maintenance
// on record. The first non-empty field wins.
func NextActionLabel(asset *domain.Asset) string {
	if v := dateValue(asset.LicenseExpiry); v != "" {
		return "renew license by " + v
	}
	if v := dateValue(asset.NextMaintenanceDate); v != "" {
		return "maintenance scheduled " + v
	}
	if v := dateValue(asset.LastMaintenanceDate); v != "" {
		return "last maintained " + v
	}
	return "no future action recorded"
}

func parseDate(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseableDate reports whether the value is absent or a well-formed
// ISO date. Used by write-side validation.
func ParseableDate(value *string) bool {
	if value == nil || *value == "" {
		return true
	}
	_, err := time.Parse(dateLayout, *value)
	return err == nil
}

func dateValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
