package controllers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

// ConventionService is what ConventionController needs from the convention service
type ConventionService interface {
	Request(ctx context.Context, actor models.Actor, siteID int64, req *dto.ConventionRequest) (*models.Convention, error)
	Activate(ctx context.Context, actor models.Actor, id int64) (*models.Convention, error)
	Reject(ctx context.Context, actor models.Actor, id int64) (*models.Convention, error)
	History(ctx context.Context, actor models.Actor, siteID int64) ([]*models.Convention, error)
	ListPending(ctx context.Context) ([]*models.Convention, error)
}

// MenuService is what ConventionController needs from the menu service
type MenuService interface {
	Week(ctx context.Context, siteID int64) ([]models.MenuDay, error)
	SaveDay(ctx context.Context, actor models.Actor, siteID int64, day int, items []string) (*models.MenuDay, error)
	DeleteDay(ctx context.Context, actor models.Actor, siteID int64, day int) error
}

// ConventionController handles what a refreshment point negotiates with the agency: conventions and menus
type ConventionController struct {
	conventionService ConventionService
	menuService       MenuService
}

// NewConventionController creates a new ConventionController
func NewConventionController(conventionService ConventionService, menuService MenuService) *ConventionController {
	return &ConventionController{
		conventionService: conventionService,
		menuService:       menuService,
	}
}

// RequestConvention handles POST /refreshment-points/:id/conventions
// @Summary Request a convention
// @Description Requests a convention between a refreshment point and the agency
// @Tags conventions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Param request body dto.ConventionRequest true "Convention details"
// @Success 201 {object} dto.APIResponse{data=models.Convention} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/conventions [post]
func (c *ConventionController) RequestConvention(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	var req dto.ConventionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	convention, err := c.conventionService.Request(ctx, actor, siteID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, convention)
}

// History handles GET /refreshment-points/:id/conventions
// @Summary Convention history
// @Description Retrieves every convention of a refreshment point
// @Tags conventions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Convention} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/conventions [get]
func (c *ConventionController) History(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	conventions, err := c.conventionService.History(ctx, actor, siteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, conventions)
}

// ListPending handles GET /conventions/pending
// @Summary List pending conventions
// @Description Retrieves the convention requests awaiting a decision
// @Tags conventions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Convention} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /conventions/pending [get]
func (c *ConventionController) ListPending(ctx *gin.Context) {
	conventions, err := c.conventionService.ListPending(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, conventions)
}

// Activate handles POST /conventions/:id/activate
// @Summary Activate a convention
// @Description Accepts a pending convention request
// @Tags conventions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Convention ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Convention} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /conventions/{id}/activate [post]
func (c *ConventionController) Activate(ctx *gin.Context) {
	c.decide(ctx, c.conventionService.Activate)
}

// Reject handles POST /conventions/:id/reject
// @Summary Reject a convention
// @Description Rejects a pending convention request
// @Tags conventions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Convention ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Convention} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /conventions/{id}/reject [post]
func (c *ConventionController) Reject(ctx *gin.Context) {
	c.decide(ctx, c.conventionService.Reject)
}

func (c *ConventionController) decide(ctx *gin.Context, decide func(context.Context, models.Actor, int64) (*models.Convention, error)) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Convention")
	if !ok {
		return
	}

	convention, err := decide(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, convention)
}

// WeekMenu handles GET /refreshment-points/:id/menu
// @Summary Get the week menu
// @Description Retrieves the weekly menu of a refreshment point
// @Tags menus
// @Produce json
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.MenuDay} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/menu [get]
func (c *ConventionController) WeekMenu(ctx *gin.Context) {
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	days, err := c.menuService.Week(ctx, siteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, days)
}

// SaveMenuDay handles PUT /refreshment-points/:id/menu/:day
// @Summary Save a menu day
// @Description Replaces the menu items of one weekday
// @Tags menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Param day path int true "Weekday (1 = Monday ... 7 = Sunday)" minimum(1) maximum(7)
// @Param request body dto.MenuDayRequest true "Menu day details"
// @Success 200 {object} dto.APIResponse{data=models.MenuDay} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/menu/{day} [put]
func (c *ConventionController) SaveMenuDay(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}
	day, ok := weekday(ctx)
	if !ok {
		return
	}

	var req dto.MenuDayRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	menu, err := c.menuService.SaveDay(ctx, actor, siteID, day, req.Items)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, menu)
}

// DeleteMenuDay handles DELETE /refreshment-points/:id/menu/:day
// @Summary Delete a menu day
// @Description Clears the menu of one weekday
// @Tags menus
// @Produce json
// @Security BearerAuth
// @Param id path int true "Refreshment point ID" Format(int64) minimum(1)
// @Param day path int true "Weekday (1 = Monday ... 7 = Sunday)" minimum(1) maximum(7)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /refreshment-points/{id}/menu/{day} [delete]
func (c *ConventionController) DeleteMenuDay(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}
	day, ok := weekday(ctx)
	if !ok {
		return
	}

	if err := c.menuService.DeleteDay(ctx, actor, siteID, day); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Menu deleted")
}

// weekday reads the :day path parameter; range checks are left to the service
func weekday(ctx *gin.Context) (int, bool) {
	day, err := strconv.Atoi(ctx.Param("day"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(map[string]string{"day": "day must be a number from 1 to 7"}))
		return 0, false
	}
	return day, true
}
