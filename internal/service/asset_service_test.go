package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/inventory"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
)

type assetFixture struct {
	svc    *AssetService
	assets *fakeAssetRepo
	feed   *feedRecorder
}

func newAssetFixture(t *testing.T) *assetFixture {
	t.Helper()
	repo := newFakeAssetRepo()
	feed := &feedRecorder{}
	svc := NewAssetService(AssetDependencies{
		AssetRepo: repo,
		Feed:      feed,
		Logger:    zap.NewNop(),
	})
	return &assetFixture{svc: svc, assets: repo, feed: feed}
}

func validAssetInput() AssetInput {
	return AssetInput{
		AssetCode:   "AST-100",
		Name:        "ThinkPad T14",
		Category:    domain.AssetCategoryHardware,
		Status:      domain.AssetStatusInUse,
		Inventoried: true,
		Quantity:    1,
	}
}

func TestCreateAssetAdminOnly(t *testing.T) {
	f := newAssetFixture(t)

	_, err := f.svc.CreateAsset(context.Background(), agent, validAssetInput())
	assertErrorCode(t, err, "FORBIDDEN")

	asset, err := f.svc.CreateAsset(context.Background(), admin, validAssetInput())
	require.NoError(t, err)
	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, domain.AssetStageUse, asset.LifecycleStage)

	feed := f.feed.byTable(realtime.TableAssets)
	require.Len(t, feed, 1)
	assert.Equal(t, realtime.ActionInsert, feed[0].Action)
}

func TestCreateAssetValidation(t *testing.T) {
	f := newAssetFixture(t)

	tests := []struct {
		name   string
		mutate func(*AssetInput)
	}{
		{"blank code", func(in *AssetInput) { in.AssetCode = " " }},
		{"blank name", func(in *AssetInput) { in.Name = "" }},
		{"bad category", func(in *AssetInput) { in.Category = "furniture" }},
		{"bad status", func(in *AssetInput) { in.Status = "broken" }},
		{"bad stage", func(in *AssetInput) { in.LifecycleStage = "retired" }},
		{"zero quantity", func(in *AssetInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *AssetInput) { in.Quantity = -3 }},
		{"malformed date", func(in *AssetInput) {
			bad := "15/03/2026"
			in.LicenseExpiry = &bad
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validAssetInput()
			tc.mutate(&input)
			_, err := f.svc.CreateAsset(context.Background(), admin, input)
			assertErrorCode(t, err, "VALIDATION_FAILED")
		})
	}
}

func TestCreateAssetNormalizesBlankDates(t *testing.T) {
	f := newAssetFixture(t)
	input := validAssetInput()
	blank := "  "
	tab := "\t"
	input.LicenseExpiry = &blank
	input.NextMaintenanceDate = &tab

	asset, err := f.svc.CreateAsset(context.Background(), admin, input)
	require.NoError(t, err)
	assert.Nil(t, asset.LicenseExpiry)
	assert.Nil(t, asset.NextMaintenanceDate)
}

func TestListAssetsScopesSupportToOwned(t *testing.T) {
	f := newAssetFixture(t)

	owned := validAssetInput()
	owned.SupportOwner = &agent.ID
	_, err := f.svc.CreateAsset(context.Background(), admin, owned)
	require.NoError(t, err)

	other := validAssetInput()
	other.AssetCode = "AST-101"
	_, err = f.svc.CreateAsset(context.Background(), admin, other)
	require.NoError(t, err)

	result, err := f.svc.ListAssets(context.Background(), agent, inventory.FilterOptions{})
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, "AST-100", result.Assets[0].AssetCode)
	assert.Equal(t, 1, result.Indicators.Total)

	// Employees and admins see the whole inventory.
	result, err = f.svc.ListAssets(context.Background(), employee, inventory.FilterOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Assets, 2)
	assert.Equal(t, 2, result.Indicators.Total)
}

func TestListAssetsIndicatorsIgnoreNarrowingFilters(t *testing.T) {
	f := newAssetFixture(t)

	first := validAssetInput()
	_, err := f.svc.CreateAsset(context.Background(), admin, first)
	require.NoError(t, err)

	second := validAssetInput()
	second.AssetCode = "AST-101"
	second.Name = "Office Suite"
	second.Category = domain.AssetCategoryLicense
	_, err = f.svc.CreateAsset(context.Background(), admin, second)
	require.NoError(t, err)

	result, err := f.svc.ListAssets(context.Background(), admin, inventory.FilterOptions{
		Category: string(domain.AssetCategoryLicense),
	})
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, 2, result.Indicators.Total, "indicators cover the scope, not the filtered page")
}

func TestGetAssetOwnershipForSupport(t *testing.T) {
	f := newAssetFixture(t)

	input := validAssetInput()
	asset, err := f.svc.CreateAsset(context.Background(), admin, input)
	require.NoError(t, err)

	_, err = f.svc.GetAsset(context.Background(), agent, asset.ID)
	assertErrorCode(t, err, "NOT_FOUND")

	got, err := f.svc.GetAsset(context.Background(), admin, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, got.ID)
}

func TestUpdateAssetAdminOnly(t *testing.T) {
	f := newAssetFixture(t)
	asset, err := f.svc.CreateAsset(context.Background(), admin, validAssetInput())
	require.NoError(t, err)

	input := validAssetInput()
	input.Name = "ThinkPad T14 Gen 3"
	_, err = f.svc.UpdateAsset(context.Background(), employee, asset.ID, input)
	assertErrorCode(t, err, "FORBIDDEN")

	updated, err := f.svc.UpdateAsset(context.Background(), admin, asset.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "ThinkPad T14 Gen 3", updated.Name)
}

func TestDeleteAsset(t *testing.T) {
	f := newAssetFixture(t)
	asset, err := f.svc.CreateAsset(context.Background(), admin, validAssetInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAsset(context.Background(), admin, asset.ID))

	_, err = f.svc.GetAsset(context.Background(), admin, asset.ID)
	assertErrorCode(t, err, "NOT_FOUND")

	feed := f.feed.byTable(realtime.TableAssets)
	require.NotEmpty(t, feed)
	assert.Equal(t, realtime.ActionDelete, feed[len(feed)-1].Action)
}

func TestDeleteAssetMissing(t *testing.T) {
	f := newAssetFixture(t)
	err := f.svc.DeleteAsset(context.Background(), admin, "asset-missing")
	assertErrorCode(t, err, "NOT_FOUND")
}
