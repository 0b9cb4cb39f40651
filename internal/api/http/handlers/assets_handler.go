package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/inventory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssetsHandler exposes inventory endpoints.
type AssetsHandler struct {
	assets *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{assets: assetService}
}

// List handles GET /assets. Term, category, and status narrow the list;
// indicators always cover the caller's full visibility scope.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	result, err := h.assets.ListAssets(c.UserContext(), actor, inventory.FilterOptions{
		Term:     c.Query("q"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		return err
	}

	out := dto.AssetListResponse{
		Assets:     make([]dto.AssetResponse, 0, len(result.Assets)),
		Indicators: result.Indicators,
	}
	for i := range result.Assets {
		out.Assets = append(out.Assets, dto.FromAsset(&result.Assets[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Indicators handles GET /assets/indicators.
func (h *AssetsHandler) Indicators(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	result, err := h.assets.ListAssets(c.UserContext(), actor, inventory.FilterOptions{})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":  result.Indicators,
		"as_of": time.Now().UTC().Format("2006-01-02"),
	})
}

// Get handles GET /assets/:id.
func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	asset, err := h.assets.GetAsset(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAsset(asset)})
}

// Create handles POST /assets.
func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	asset, err := h.assets.CreateAsset(c.UserContext(), actor, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromAsset(asset)})
}

// Update handles PATCH /assets/:id.
func (h *AssetsHandler) Update(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	asset, err := h.assets.UpdateAsset(c.UserContext(), actor, c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAsset(asset)})
}

// Delete handles DELETE /assets/:id.
func (h *AssetsHandler) Delete(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	if err := h.assets.DeleteAsset(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
