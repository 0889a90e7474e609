package controllers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/helpers"
)

// TouristService is what TouristController needs from the tourist service
type TouristService interface {
	Register(ctx context.Context, req *dto.TouristRegistrationRequest) (*models.Tourist, error)
	Get(ctx context.Context, actor models.Actor, id int64) (*models.Tourist, error)
	Update(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateTouristRequest) (*models.Tourist, error)
	Search(ctx context.Context, filter models.TouristFilter) ([]*models.Tourist, int64, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.Tourist, error)
	Delete(ctx context.Context, id int64) error
}

// PreferenceService is what TouristController needs from the preference service
type PreferenceService interface {
	AddBookmark(ctx context.Context, touristID, siteID int64) error
	RemoveBookmark(ctx context.Context, touristID, siteID int64) error
	ListBookmarks(ctx context.Context, touristID int64) ([]*models.Site, error)
	VisitedSites(ctx context.Context, touristID int64, offset uint64, limit int) ([]*models.VisitedSite, int64, error)
	SearchPreferences(ctx context.Context, touristID int64) ([]models.Tag, error)
	ReplaceSearchPreferences(ctx context.Context, touristID int64, tagIDs []int64) ([]models.Tag, error)
	GenericPreferences(ctx context.Context, userID int64) (models.GenericPreferences, error)
	SaveGenericPreferences(ctx context.Context, userID int64, req *dto.GenericPreferencesRequest) (models.GenericPreferences, error)
}

// TouristController handles tourist accounts and their preferences
type TouristController struct {
	touristService    TouristService
	preferenceService PreferenceService
}

// NewTouristController creates a new TouristController
func NewTouristController(touristService TouristService, preferenceService PreferenceService) *TouristController {
	return &TouristController{
		touristService:    touristService,
		preferenceService: preferenceService,
	}
}

// Register handles POST /tourists, no authentication required
// @Summary Register a tourist
// @Description Creates a tourist account, inactive until the agency activates it
// @Tags tourists
// @Accept json
// @Produce json
// @Param request body dto.TouristRegistrationRequest true "Tourist registration details"
// @Success 201 {object} dto.APIResponse{data=models.Tourist} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists [post]
func (c *TouristController) Register(ctx *gin.Context) {
	var req dto.TouristRegistrationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tourist, err := c.touristService.Register(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, tourist)
}

// SearchTourists handles GET /tourists?q=&city=&active=&page=&size=
// @Summary Search tourists
// @Description Searches tourist accounts by text, city and activation state
// @Tags tourists
// @Produce json
// @Security BearerAuth
// @Param q query string false "Text search"
// @Param city query string false "City"
// @Param active query bool false "Activation state"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Tourist}} "Results retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists [get]
func (c *TouristController) SearchTourists(ctx *gin.Context) {
	page := helpers.PageFromQuery(ctx)

	filter := models.TouristFilter{
		Search: ctx.Query("q"),
		City:   ctx.Query("city"),
		Offset: page.Offset(),
		Limit:  page.Limit(),
	}
	if raw := ctx.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError(map[string]string{"active": "active must be true or false"}))
			return
		}
		filter.Active = &active
	}

	tourists, total, err := c.touristService.Search(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, tourists, total, page)
}

// GetTourist handles GET /tourists/:id
// @Summary Get a tourist card
// @Description Retrieves a tourist account
// @Tags tourists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tourist ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Tourist} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists/{id} [get]
func (c *TouristController) GetTourist(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Tourist")
	if !ok {
		return
	}

	tourist, err := c.touristService.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tourist)
}

// UpdateTourist handles PUT /tourists/:id
// @Summary Update a tourist card
// @Description Updates the details of a tourist account
// @Tags tourists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tourist ID" Format(int64) minimum(1)
// @Param request body dto.UpdateTouristRequest true "Tourist details"
// @Success 200 {object} dto.APIResponse{data=models.Tourist} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists/{id} [put]
func (c *TouristController) UpdateTourist(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Tourist")
	if !ok {
		return
	}

	var req dto.UpdateTouristRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tourist, err := c.touristService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tourist)
}

// ActivateTourist handles POST /tourists/:id/activate
// @Summary Activate a tourist
// @Description Activates a tourist account
// @Tags tourists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tourist ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Tourist} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists/{id}/activate [post]
func (c *TouristController) ActivateTourist(ctx *gin.Context) {
	c.setActive(ctx, true)
}

// DisableTourist handles POST /tourists/:id/disable
// @Summary Disable a tourist
// @Description Disables a tourist account
// @Tags tourists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tourist ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Tourist} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists/{id}/disable [post]
func (c *TouristController) DisableTourist(ctx *gin.Context) {
	c.setActive(ctx, false)
}

func (c *TouristController) setActive(ctx *gin.Context, active bool) {
	id, ok := pathID(ctx, "id", "Tourist")
	if !ok {
		return
	}

	tourist, err := c.touristService.SetActive(ctx, id, active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tourist)
}

// DeleteTourist handles DELETE /tourists/:id
// @Summary Delete a tourist
// @Description Deletes a tourist account
// @Tags tourists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tourist ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tourists/{id} [delete]
func (c *TouristController) DeleteTourist(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Tourist")
	if !ok {
		return
	}

	if err := c.touristService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Tourist deleted")
}

// ListBookmarks handles GET /me/bookmarks
// @Summary List bookmarks
// @Description Retrieves the sites the caller bookmarked
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Site} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/bookmarks [get]
func (c *TouristController) ListBookmarks(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	sites, err := c.preferenceService.ListBookmarks(ctx, actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sites)
}

// VisitedSites handles GET /me/visited-sites, the sites the caller left feedback on
// @Summary List visited sites
// @Description Retrieves the sites the caller left feedback on, latest visit first
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.VisitedSite}} "Results retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/visited-sites [get]
func (c *TouristController) VisitedSites(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	page := helpers.PageFromQuery(ctx)
	sites, total, err := c.preferenceService.VisitedSites(ctx, actor.UserID, page.Offset(), page.Limit())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, sites, total, page)
}

// AddBookmark handles PUT /me/bookmarks/:siteId
// @Summary Bookmark a site
// @Description Adds a site to the caller bookmarks
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Param siteId path int true "Site ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/bookmarks/{siteId} [put]
func (c *TouristController) AddBookmark(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "siteId", "Site")
	if !ok {
		return
	}

	if err := c.preferenceService.AddBookmark(ctx, actor.UserID, siteID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Site bookmarked")
}

// RemoveBookmark handles DELETE /me/bookmarks/:siteId
// @Summary Remove a bookmark
// @Description Removes a site from the caller bookmarks
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Param siteId path int true "Site ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/bookmarks/{siteId} [delete]
func (c *TouristController) RemoveBookmark(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "siteId", "Site")
	if !ok {
		return
	}

	if err := c.preferenceService.RemoveBookmark(ctx, actor.UserID, siteID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Bookmark removed")
}

// SearchPreferences handles GET /me/search-preferences
// @Summary Get search preferences
// @Description Retrieves the tags the caller prefers when searching
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Tag} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/search-preferences [get]
func (c *TouristController) SearchPreferences(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	tags, err := c.preferenceService.SearchPreferences(ctx, actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tags)
}

// ReplaceSearchPreferences handles PUT /me/search-preferences
// @Summary Replace search preferences
// @Description Replaces the preferred search tags of the caller
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SearchPreferencesRequest true "Search preferences details"
// @Success 200 {object} dto.APIResponse{data=[]models.Tag} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/search-preferences [put]
func (c *TouristController) ReplaceSearchPreferences(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.SearchPreferencesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tags, err := c.preferenceService.ReplaceSearchPreferences(ctx, actor.UserID, req.TagIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tags)
}

// GenericPreferences handles GET /me/preferences
// @Summary Get generic preferences
// @Description Retrieves the caller language, theme and notification settings
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.GenericPreferences} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/preferences [get]
func (c *TouristController) GenericPreferences(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	prefs, err := c.preferenceService.GenericPreferences(ctx, actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, prefs)
}

// SaveGenericPreferences handles PUT /me/preferences
// @Summary Save generic preferences
// @Description Saves the caller language, theme and notification settings
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenericPreferencesRequest true "Generic preferences details"
// @Success 200 {object} dto.APIResponse{data=models.GenericPreferences} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/preferences [put]
func (c *TouristController) SaveGenericPreferences(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.GenericPreferencesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	prefs, err := c.preferenceService.SaveGenericPreferences(ctx, actor.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, prefs)
}
