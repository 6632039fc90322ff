package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-service/internal/api/dto"
	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/service"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// AssetsHandler exposes facility asset CRUD (admin only, gated by routing).
type AssetsHandler struct {
	assets *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{assets: assetService}
}

// Create POST /assets.
func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.assets.Create(c.Context(), assetInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assetView(asset)})
}

// Update PUT /assets/:id.
func (h *AssetsHandler) Update(c *fiber.Ctx) error {
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	asset, err := h.assets.Update(c.Context(), c.Params("id"), assetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetView(asset)})
}

// Delete DELETE /assets/:id.
func (h *AssetsHandler) Delete(c *fiber.Ctx) error {
	if err := h.assets.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /assets/:id.
func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	asset, err := h.assets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetView(asset)})
}

// List GET /assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	assets, err := h.assets.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetView(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func assetInput(req dto.AssetRequest) service.AssetInput {
	return service.AssetInput{
		Name:         req.Name,
		Category:     req.Category,
		Location:     req.Location,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
	}
}

func assetView(asset *domain.FacilityAsset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:           asset.ID,
		Name:         asset.Name,
		Category:     asset.Category,
		Location:     asset.Location,
		SerialNumber: asset.SerialNumber,
		Status:       asset.Status,
		CreatedAt:    asset.CreatedAt,
		UpdatedAt:    asset.UpdatedAt,
	}
}
