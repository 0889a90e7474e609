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

// NewsService is what NewsController needs from the news service
type NewsService interface {
	ListPublished(ctx context.Context, category string, offset uint64, limit int) ([]*models.News, int64, error)
	List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int64, error)
	GetPublished(ctx context.Context, id int64) (*models.News, error)
	Create(ctx context.Context, actor models.Actor, req *dto.NewsRequest) (*models.News, error)
	Update(ctx context.Context, id int64, req *dto.NewsRequest) (*models.News, error)
	Delete(ctx context.Context, id int64) error
}

// NewsController handles agency news
type NewsController struct {
	newsService NewsService
}

// NewNewsController creates a new NewsController
func NewNewsController(newsService NewsService) *NewsController {
	return &NewsController{newsService: newsService}
}

// ListNews handles GET /news?category=&page=&size=
// @Summary List published news
// @Description Lists published news, newest first, optionally filtered by category
// @Tags news
// @Produce json
// @Param category query string false "Category"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "News retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /news [get]
func (c *NewsController) ListNews(ctx *gin.Context) {
	page := helpers.PageFromQuery(ctx)
	items, total, err := c.newsService.ListPublished(ctx, ctx.Query("category"), page.Offset(), page.Limit())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, total, page)
}

// @Summary Get a news item
// @Description Retrieves a published news item by its ID
// @Tags news
// @Produce json
// @Param id path int true "News ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.News} "News retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid news ID format"
// @Failure 404 {object} dto.ErrorResponse "News not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /news/{id} [get]
func (c *NewsController) GetNews(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "News")
	if !ok {
		return
	}
	news, err := c.newsService.GetPublished(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, news)
}

// ManageNews handles GET /news/manage?category=&published=&page=&size=, drafts included
// @Summary List news for editing
// @Description Lists all news including drafts for agency operators
// @Tags news
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category"
// @Param published query bool false "Only published (true) or only drafts (false)"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "News retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /news/manage [get]
func (c *NewsController) ManageNews(ctx *gin.Context) {
	page := helpers.PageFromQuery(ctx)
	filter := models.NewsFilter{
		Category: ctx.Query("category"),
		Offset:   page.Offset(),
		Limit:    page.Limit(),
	}
	if raw := ctx.Query("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError(map[string]string{"published": "published must be true or false"}))
			return
		}
		filter.Published = &published
	}

	items, total, err := c.newsService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, total, page)
}

// @Summary Insert news
// @Description Creates a news item, announced on the feed when published
// @Tags news
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NewsRequest true "News content"
// @Success 201 {object} dto.APIResponse{data=models.News} "News created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /news [post]
func (c *NewsController) CreateNews(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.NewsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	news, err := c.newsService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, news)
}

// @Summary Modify news
// @Description Replaces the content of a news item
// @Tags news
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "News ID" Format(int64) minimum(1)
// @Param request body dto.NewsRequest true "News content"
// @Success 200 {object} dto.APIResponse{data=models.News} "News updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "News not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /news/{id} [put]
func (c *NewsController) UpdateNews(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "News")
	if !ok {
		return
	}
	var req dto.NewsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	news, err := c.newsService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, news)
}

// @Summary Delete news
// @Description Deletes a news item
// @Tags news
// @Produce json
// @Security BearerAuth
// @Param id path int true "News ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "News deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid news ID format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "News not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /news/{id} [delete]
func (c *NewsController) DeleteNews(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "News")
	if !ok {
		return
	}
	if err := c.newsService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "News deleted")
}
