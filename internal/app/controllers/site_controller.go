package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/helpers"
)

// SiteService is what SiteController needs from the site service
type SiteService interface {
	Get(ctx context.Context, id int64) (*models.Site, error)
	Create(ctx context.Context, kind models.SiteKind, req *dto.SiteRequest) (*models.Site, error)
	Update(ctx context.Context, actor models.Actor, id int64, req *dto.SiteRequest) (*models.Site, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q dto.SiteSearchQuery, offset uint64, limit int) ([]*models.Site, int64, error)
	Nearby(ctx context.Context, q dto.NearbyQuery) ([]models.NearbySite, error)
	ListMine(ctx context.Context, actor models.Actor) ([]*models.Site, error)
	AddTags(ctx context.Context, siteID int64, tagIDs []int64) (*models.Site, error)
	RemoveTag(ctx context.Context, siteID, tagID int64) error
}

// TagService is what SiteController needs from the tag service
type TagService interface {
	List(ctx context.Context) ([]*models.Tag, error)
	Create(ctx context.Context, req *dto.TagRequest) (*models.Tag, error)
	Update(ctx context.Context, id int64, req *dto.TagRequest) (*models.Tag, error)
	Delete(ctx context.Context, id int64) error
}

// StatisticsService is what SiteController needs from the statistics service
type StatisticsService interface {
	ForPoint(ctx context.Context, actor models.Actor, siteID int64) (*models.PointStatistics, error)
}

// SiteController handles cultural objects, refreshment points and tags
type SiteController struct {
	siteService       SiteService
	tagService        TagService
	statisticsService StatisticsService
}

// NewSiteController creates a new SiteController
func NewSiteController(siteService SiteService, tagService TagService, statisticsService StatisticsService) *SiteController {
	return &SiteController{
		siteService:       siteService,
		tagService:        tagService,
		statisticsService: statisticsService,
	}
}

// CreateCulturalObject handles POST /cultural-objects
// @Summary Create a cultural object
// @Description Creates a cultural object site
// @Tags sites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SiteRequest true "Site details"
// @Success 201 {object} dto.APIResponse{data=models.Site} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cultural-objects [post]
func (c *SiteController) CreateCulturalObject(ctx *gin.Context) {
	c.create(ctx, models.SiteCulturalObject)
}

// CreateRefreshmentPoint handles POST /refreshment-points
// @Summary Create a refreshment point
// @Description Creates a refreshment point site
// @Tags sites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SiteRequest true "Site details"
// @Success 201 {object} dto.APIResponse{data=models.Site} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points [post]
func (c *SiteController) CreateRefreshmentPoint(ctx *gin.Context) {
	c.create(ctx, models.SiteRefreshmentPoint)
}

func (c *SiteController) create(ctx *gin.Context, kind models.SiteKind) {
	var req dto.SiteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	site, err := c.siteService.Create(ctx, kind, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, site)
}

// SearchSites handles GET /sites?kind=&q=&city=&tag=&page=&size=
// @Summary Search sites
// @Description Searches sites by kind, text, city and tags
// @Tags sites
// @Produce json
// @Param kind query string false "Site kind (CULTURAL_OBJECT or REFRESHMENT_POINT)"
// @Param q query string false "Text search"
// @Param city query string false "City"
// @Param tag query int false "Tag ID, repeatable"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Site}} "Results retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites [get]
func (c *SiteController) SearchSites(ctx *gin.Context) {
	var q dto.SiteSearchQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page := helpers.PageFromQuery(ctx)

	sites, total, err := c.siteService.Search(ctx, q, page.Offset(), page.Limit())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, sites, total, page)
}

// NearbySites handles GET /sites/nearby?lat=&lon=&radius=&kind=
// @Summary Find nearby sites
// @Description Lists sites within a radius of a position, nearest first
// @Tags sites
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param radius query number false "Radius in km (max 50)"
// @Param kind query string false "Site kind (CULTURAL_OBJECT or REFRESHMENT_POINT)"
// @Success 200 {object} dto.APIResponse{data=[]models.NearbySite} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/nearby [get]
func (c *SiteController) NearbySites(ctx *gin.Context) {
	var q dto.NearbyQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	sites, err := c.siteService.Nearby(ctx, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sites)
}

// ListMyPoints handles GET /refreshment-points/mine
// @Summary List my refreshment points
// @Description Retrieves the refreshment points the caller operates
// @Tags sites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Site} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/mine [get]
func (c *SiteController) ListMyPoints(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	sites, err := c.siteService.ListMine(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sites)
}

// GetSite handles GET /sites/:id
// @Summary Get site details
// @Description Retrieves a site with its tags
// @Tags sites
// @Produce json
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Site} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id} [get]
func (c *SiteController) GetSite(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	site, err := c.siteService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, site)
}

// UpdateSite handles PUT /sites/:id
// @Summary Update a site
// @Description Updates the details of a site
// @Tags sites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Param request body dto.SiteRequest true "Site details"
// @Success 200 {object} dto.APIResponse{data=models.Site} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id} [put]
func (c *SiteController) UpdateSite(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	var req dto.SiteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	site, err := c.siteService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, site)
}

// DeleteSite handles DELETE /sites/:id
// @Summary Delete a site
// @Description Deletes a site
// @Tags sites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id} [delete]
func (c *SiteController) DeleteSite(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	if err := c.siteService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Site deleted")
}

// AddTags handles POST /sites/:id/tags
// @Summary Tag a site
// @Description Adds tags to a site
// @Tags sites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Param request body dto.SiteTagsRequest true "Site tags details"
// @Success 200 {object} dto.APIResponse{data=models.Site} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id}/tags [post]
func (c *SiteController) AddTags(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	var req dto.SiteTagsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	site, err := c.siteService.AddTags(ctx, id, req.TagIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, site)
}

// RemoveTag handles DELETE /sites/:id/tags/:tagId
// @Summary Untag a site
// @Description Removes a tag from a site
// @Tags sites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Param tagId path int true "Tag ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id}/tags/{tagId} [delete]
func (c *SiteController) RemoveTag(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}
	tagID, ok := pathID(ctx, "tagId", "Tag")
	if !ok {
		return
	}

	if err := c.siteService.RemoveTag(ctx, id, tagID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Tag removed from site")
}

// PointStatistics handles GET /refreshment-points/:id/statistics
// @Summary Get point statistics
// @Description Retrieves visit and vote statistics of a refreshment point
// @Tags sites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.PointStatistics} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/statistics [get]
func (c *SiteController) PointStatistics(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	stats, err := c.statisticsService.ForPoint(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, stats)
}

// ListTags handles GET /tags
// @Summary List tags
// @Description Retrieves every tag
// @Tags tags
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Tag} "Retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tags [get]
func (c *SiteController) ListTags(ctx *gin.Context) {
	tags, err := c.tagService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tags)
}

// CreateTag handles POST /tags
// @Summary Create a tag
// @Description Creates a new tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TagRequest true "Tag details"
// @Success 201 {object} dto.APIResponse{data=models.Tag} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tags [post]
func (c *SiteController) CreateTag(ctx *gin.Context) {
	var req dto.TagRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tag, err := c.tagService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, tag)
}

// UpdateTag handles PUT /tags/:id
// @Summary Update a tag
// @Description Updates the name or description of a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID" Format(int64) minimum(1)
// @Param request body dto.TagRequest true "Tag details"
// @Success 200 {object} dto.APIResponse{data=models.Tag} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tags/{id} [put]
func (c *SiteController) UpdateTag(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Tag")
	if !ok {
		return
	}

	var req dto.TagRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tag, err := c.tagService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tag)
}

// DeleteTag handles DELETE /tags/:id
// @Summary Delete a tag
// @Description Deletes a tag
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tags/{id} [delete]
func (c *SiteController) DeleteTag(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Tag")
	if !ok {
		return
	}

	if err := c.tagService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Tag deleted")
}
