package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/helpers"
)

// FeedbackService is what FeedbackController needs from the feedback service
type FeedbackService interface {
	ListForSite(ctx context.Context, siteID int64, offset uint64, limit int) ([]*models.Feedback, int64, error)
	Create(ctx context.Context, actor models.Actor, siteID int64, req *dto.FeedbackRequest) (*models.Feedback, error)
	UpdateComment(ctx context.Context, actor models.Actor, id int64, comment string) (*models.Feedback, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

// FeedbackController handles tourist feedback on sites
type FeedbackController struct {
	feedbackService FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// ListFeedback handles GET /sites/:id/feedback?page=&size=
// @Summary List site feedback
// @Description Retrieves the feedback left on a site, newest first
// @Tags feedback
// @Produce json
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Feedback}} "Results retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id}/feedback [get]
func (c *FeedbackController) ListFeedback(ctx *gin.Context) {
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}
	page := helpers.PageFromQuery(ctx)

	feedback, total, err := c.feedbackService.ListForSite(ctx, siteID, page.Offset(), page.Limit())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, feedback, total, page)
}

// CreateFeedback handles POST /sites/:id/feedback
// @Summary Leave feedback
// @Description Records the caller vote and comment on a site
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Site ID" Format(int64) minimum(1)
// @Param request body dto.FeedbackRequest true "Feedback details"
// @Success 201 {object} dto.APIResponse{data=models.Feedback} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sites/{id}/feedback [post]
func (c *FeedbackController) CreateFeedback(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	siteID, ok := pathID(ctx, "id", "Site")
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	feedback, err := c.feedbackService.Create(ctx, actor, siteID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, feedback)
}

// UpdateFeedback handles PUT /feedback/:id
// @Summary Update a feedback comment
// @Description Changes the comment of the caller feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID" Format(int64) minimum(1)
// @Param request body dto.UpdateFeedbackRequest true "Feedback details"
// @Success 200 {object} dto.APIResponse{data=models.Feedback} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /feedback/{id} [put]
func (c *FeedbackController) UpdateFeedback(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Feedback")
	if !ok {
		return
	}

	var req dto.UpdateFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	feedback, err := c.feedbackService.UpdateComment(ctx, actor, id, req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, feedback)
}

// DeleteFeedback handles DELETE /feedback/:id
// @Summary Delete feedback
// @Description Deletes a feedback entry
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /feedback/{id} [delete]
func (c *FeedbackController) DeleteFeedback(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Feedback")
	if !ok {
		return
	}

	if err := c.feedbackService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Feedback deleted")
}
