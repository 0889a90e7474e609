package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
)

// ReportCardService is what ReportCardController needs from the report card service
type ReportCardService interface {
	ListForClass(ctx context.Context, actor models.Actor, classID int64, term models.Term) ([]*models.ReportCard, error)
	ListForStudent(ctx context.Context, actor models.Actor, studentID int64, academicYear int) ([]*models.ReportCard, error)
	Get(ctx context.Context, actor models.Actor, id int64) (*models.ReportCard, error)
	Create(ctx context.Context, actor models.Actor, req *dto.ReportCardRequest) (*models.ReportCard, error)
	UpdateGrades(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateGradesRequest) (*models.ReportCard, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

// ReportCardController handles report cards
type ReportCardController struct {
	cardService ReportCardService
}

// NewReportCardController creates a new ReportCardController
func NewReportCardController(cardService ReportCardService) *ReportCardController {
	return &ReportCardController{cardService: cardService}
}

// ListForClass handles GET /classes/:id/report-cards?term=
// @Summary List class report cards
// @Description Retrieves the report cards of a class, optionally for one term
// @Tags report-cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report card ID" Format(int64) minimum(1)
// @Param term query string false "Term (FIRST or SECOND)"
// @Success 200 {object} dto.APIResponse{data=[]models.ReportCard} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/report-cards [get]
func (c *ReportCardController) ListForClass(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	classID, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	term := models.Term(strings.ToUpper(ctx.Query("term")))
	cards, err := c.cardService.ListForClass(ctx, actor, classID, term)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, cards)
}

// ListForStudent handles GET /students/:id/report-cards?year=
// @Summary List student report cards
// @Description Retrieves the report cards of a student
// @Tags report-cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=[]models.ReportCard} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/report-cards [get]
func (c *ReportCardController) ListForStudent(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "id", "Student")
	if !ok {
		return
	}
	year, ok := intQuery(ctx, "year")
	if !ok {
		return
	}

	cards, err := c.cardService.ListForStudent(ctx, actor, studentID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, cards)
}

// GetReportCard handles GET /report-cards/:id
// @Summary Get a report card
// @Description Retrieves a report card with its grades
// @Tags report-cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report card ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.ReportCard} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /report-cards/{id} [get]
func (c *ReportCardController) GetReportCard(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Report card")
	if !ok {
		return
	}

	card, err := c.cardService.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, card)
}

// CreateReportCard handles POST /report-cards
// @Summary Create a report card
// @Description Creates a report card for a student and term
// @Tags report-cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ReportCardRequest true "Report card details"
// @Success 201 {object} dto.APIResponse{data=models.ReportCard} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /report-cards [post]
func (c *ReportCardController) CreateReportCard(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.ReportCardRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	card, err := c.cardService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, card)
}

// UpdateGrades handles PUT /report-cards/:id
// @Summary Update grades
// @Description Replaces the grades of a report card
// @Tags report-cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report card ID" Format(int64) minimum(1)
// @Param request body dto.UpdateGradesRequest true "Grades details"
// @Success 200 {object} dto.APIResponse{data=models.ReportCard} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /report-cards/{id} [put]
func (c *ReportCardController) UpdateGrades(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Report card")
	if !ok {
		return
	}

	var req dto.UpdateGradesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	card, err := c.cardService.UpdateGrades(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, card)
}

// DeleteReportCard handles DELETE /report-cards/:id
// @Summary Delete a report card
// @Description Deletes a report card
// @Tags report-cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report card ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /report-cards/{id} [delete]
func (c *ReportCardController) DeleteReportCard(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Report card")
	if !ok {
		return
	}

	if err := c.cardService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Report card deleted")
}
