package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/app/services"
	"github.com/yigit/agora/internal/middleware"
)

// multipart framing allowance on top of the image itself
const multipartOverhead = 64 << 10

// BannerService is what BannerController needs from the banner service
type BannerService interface {
	MaxBytes() int64
	List(ctx context.Context, siteID int64) ([]*models.Banner, error)
	Create(ctx context.Context, actor models.Actor, siteID int64, upload services.BannerUpload) (*models.Banner, error)
	ReplaceImage(ctx context.Context, actor models.Actor, bannerID int64, upload services.BannerUpload) (*models.Banner, error)
	Delete(ctx context.Context, actor models.Actor, bannerID int64) error
}

// BannerController handles refreshment point banners
type BannerController struct {
	bannerService BannerService
}

// NewBannerController creates a new BannerController
func NewBannerController(bannerService BannerService) *BannerController {
	return &BannerController{bannerService: bannerService}
}

// ListBanners handles GET /refreshment-points/:id/banners
// @Summary List point banners
// @Description Retrieves the banners of a refreshment point
// @Tags banners
// @Produce json
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Banner} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/banners [get]
func (c *BannerController) ListBanners(ctx *gin.Context) {
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	banners, err := c.bannerService.List(ctx, siteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, banners)
}

// CreateBanner handles POST /refreshment-points/:id/banners (multipart field "image")
// @Summary Upload a banner
// @Description Uploads a banner image for a refreshment point with an active convention
// @Tags banners
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Param image formData file true "Banner image (JPEG, PNG or GIF)"
// @Success 201 {object} dto.APIResponse{data=models.Banner} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/banners [post]
func (c *BannerController) CreateBanner(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	upload, ok := c.readUpload(ctx)
	if !ok {
		return
	}

	banner, err := c.bannerService.Create(ctx, actor, siteID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, banner)
}

// ReplaceBanner handles PUT /banners/:id (multipart field "image")
// @Summary Replace a banner image
// @Description Replaces the image of an existing banner
// @Tags banners
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Banner ID" Format(int64) minimum(1)
// @Param image formData file true "Banner image (JPEG, PNG or GIF)"
// @Success 200 {object} dto.APIResponse{data=models.Banner} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /banners/{id} [put]
func (c *BannerController) ReplaceBanner(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Banner")
	if !ok {
		return
	}

	upload, ok := c.readUpload(ctx)
	if !ok {
		return
	}

	banner, err := c.bannerService.ReplaceImage(ctx, actor, id, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, banner)
}

// DeleteBanner handles DELETE /banners/:id
// @Summary Delete a banner
// @Description Deletes a banner and its stored image
// @Tags banners
// @Produce json
// @Security BearerAuth
// @Param id path int true "Banner ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /banners/{id} [delete]
func (c *BannerController) DeleteBanner(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Banner")
	if !ok {
		return
	}

	if err := c.bannerService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Banner deleted")
}

// readUpload reads the "image" form file, refusing bodies above the banner size limit
func (c *BannerController) readUpload(ctx *gin.Context) (services.BannerUpload, bool) {
	maxBytes := c.bannerService.MaxBytes()
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes+multipartOverhead)

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidImage, "Image file is required").
			WithField("image").
			WithDetails(err.Error())
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return services.BannerUpload{}, false
	}

	if fileHeader.Size > maxBytes {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidImage, "Image is too large").
			WithField("image").
			WithDetails(fmt.Sprintf("maximum size is %d bytes", maxBytes))
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return services.BannerUpload{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to open uploaded file: %w", err))
		return services.BannerUpload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to read uploaded file: %w", err))
		return services.BannerUpload{}, false
	}

	return services.BannerUpload{Filename: fileHeader.Filename, Data: data}, true
}
