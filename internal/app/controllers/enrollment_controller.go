package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
)

// EnrollmentService is what EnrollmentController needs from the enrollment service
type EnrollmentService interface {
	Submit(ctx context.Context, req *dto.EnrollmentSubmitRequest) (*models.EnrollmentRequest, error)
	ListPending(ctx context.Context) ([]*models.EnrollmentRequest, error)
	Get(ctx context.Context, id int64) (*models.EnrollmentRequest, error)
	Accept(ctx context.Context, id int64) (*models.User, error)
	Reject(ctx context.Context, id int64) (*models.EnrollmentRequest, error)
}

// MonitoringService is what EnrollmentController needs from the monitoring service
type MonitoringService interface {
	Search(ctx context.Context, q dto.MonitoringQuery) ([]models.MonitoredStudent, error)
}

// EnrollmentController handles public enrollment requests and student monitoring
type EnrollmentController struct {
	enrollmentService EnrollmentService
	monitoringService MonitoringService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService EnrollmentService, monitoringService MonitoringService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		monitoringService: monitoringService,
	}
}

// Submit handles POST /enrollments, no authentication required
// @Summary Submit an enrollment request
// @Description Submits a request for a new school account
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body dto.EnrollmentSubmitRequest true "Enrollment submit details"
// @Success 201 {object} dto.APIResponse{data=models.EnrollmentRequest} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [post]
func (c *EnrollmentController) Submit(ctx *gin.Context) {
	var req dto.EnrollmentSubmitRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.enrollmentService.Submit(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, request)
}

// ListPending handles GET /enrollments
// @Summary List pending enrollment requests
// @Description Retrieves the enrollment requests awaiting a decision
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.EnrollmentRequest} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [get]
func (c *EnrollmentController) ListPending(ctx *gin.Context) {
	requests, err := c.enrollmentService.ListPending(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, requests)
}

// GetRequest handles GET /enrollments/:id
// @Summary Get an enrollment request
// @Description Retrieves an enrollment request by its ID
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment request ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.EnrollmentRequest} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetRequest(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Enrollment request")
	if !ok {
		return
	}

	request, err := c.enrollmentService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, request)
}

// Accept handles POST /enrollments/:id/accept
// @Summary Accept an enrollment request
// @Description Creates the user account for a pending request
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment request ID" Format(int64) minimum(1)
// @Success 201 {object} dto.APIResponse{data=models.User} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments/{id}/accept [post]
func (c *EnrollmentController) Accept(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Enrollment request")
	if !ok {
		return
	}

	user, err := c.enrollmentService.Accept(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, user)
}

// Reject handles POST /enrollments/:id/reject
// @Summary Reject an enrollment request
// @Description Rejects a pending enrollment request
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment request ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.EnrollmentRequest} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments/{id}/reject [post]
func (c *EnrollmentController) Reject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Enrollment request")
	if !ok {
		return
	}

	request, err := c.enrollmentService.Reject(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, request)
}

// Monitoring handles GET /monitoring?absences=&notes=&year=
// @Summary Monitor students
// @Description Lists students over the given absence or insufficient-note thresholds
// @Tags monitoring
// @Produce json
// @Security BearerAuth
// @Param absences query int false "Minimum number of absences"
// @Param notes query int false "Minimum number of insufficient notes"
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=[]models.MonitoredStudent} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /monitoring [get]
func (c *EnrollmentController) Monitoring(ctx *gin.Context) {
	var q dto.MonitoringQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	students, err := c.monitoringService.Search(ctx, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}
