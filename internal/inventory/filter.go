package inventory

import (
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// FilterAll is the category/status value that disables that filter.
const FilterAll = "all"

// FilterOptions narrows an asset list. Term matches asset code, name, and
// description case-insensitively; an absent description never matches.
// Category and status of "all" (or empty) are no-op filters.
type FilterOptions struct {
	Term     string
	Category string
	Status   string
}

// Filter returns the assets matching the options, preserving input order.
func Filter(assets []domain.Asset, opts FilterOptions) []domain.Asset {
	term := strings.ToLower(strings.TrimSpace(opts.Term))
	category := normalizeFilter(opts.Category)
	status := normalizeFilter(opts.Status)

	out := make([]domain.Asset, 0, len(assets))
	for _, asset := range assets {
		if term != "" && !matchesTerm(&asset, term) {
			continue
		}
		if category != "" && string(asset.Category) != category {
			continue
		}
		if status != "" && string(asset.Status) != status {
			continue
		}
		out = append(out, asset)
	}
	return out
}

func normalizeFilter(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, FilterAll) {
		return ""
	}
	return value
}

func matchesTerm(asset *domain.Asset, term string) bool {
	if strings.Contains(strings.ToLower(asset.AssetCode), term) {
		return true
	}
	if strings.Contains(strings.ToLower(asset.Name), term) {
		return true
	}
	if asset.Description != nil && strings.Contains(strings.ToLower(*asset.Description), term) {
		return true
	}
	return false
}
