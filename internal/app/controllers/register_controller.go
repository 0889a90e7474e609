package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
)

// RegisterService is what RegisterController needs from the register service
type RegisterService interface {
	View(ctx context.Context, actor models.Actor, classID int64, date string) (*models.RegisterDay, error)
	Save(ctx context.Context, actor models.Actor, classID int64, req *dto.SaveRegisterRequest) (models.RegisterSaveResult, error)
	UpdateDelay(ctx context.Context, actor models.Actor, id int64, entryTime string) (*models.Delay, error)
	DeleteDelay(ctx context.Context, actor models.Actor, id int64) error
	ListJustifications(ctx context.Context, actor models.Actor, studentID int64, academicYear int) ([]models.Justification, error)
	CreateJustification(ctx context.Context, actor models.Actor, req *dto.JustificationRequest) (*models.Justification, error)
	UpdateJustification(ctx context.Context, actor models.Actor, id int64, reason string) (*models.Justification, error)
	DeleteJustification(ctx context.Context, actor models.Actor, id int64) error
	StudentRecord(ctx context.Context, actor models.Actor, studentID int64, academicYear int) (*models.StudentRecord, error)
}

// RegisterController handles the class register: absences, delays and justifications
type RegisterController struct {
	registerService RegisterService
}

// NewRegisterController creates a new RegisterController
func NewRegisterController(registerService RegisterService) *RegisterController {
	return &RegisterController{registerService: registerService}
}

// ViewRegister handles GET /classes/:id/register?date=YYYY-MM-DD
// @Summary View the class register
// @Description Retrieves the attendance register of a class for one day
// @Tags register
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param date query string false "Day of the register (YYYY-MM-DD), today when omitted"
// @Success 200 {object} dto.APIResponse{data=models.RegisterDay} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/register [get]
func (c *RegisterController) ViewRegister(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	classID, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	day, err := c.registerService.View(ctx, actor, classID, ctx.Query("date"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, day)
}

// SaveRegister handles PUT /classes/:id/register
// @Summary Save the class register
// @Description Records absences and delays for one day and notifies parents
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param request body dto.SaveRegisterRequest true "Register details"
// @Success 200 {object} dto.APIResponse{data=models.RegisterSaveResult} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/register [put]
func (c *RegisterController) SaveRegister(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	classID, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	var req dto.SaveRegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.registerService.Save(ctx, actor, classID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// UpdateDelay handles PUT /delays/:id
// @Summary Update a delay
// @Description Changes the entry time of a delay
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param request body dto.UpdateDelayRequest true "Delay details"
// @Success 200 {object} dto.APIResponse{data=models.Delay} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /delays/{id} [put]
func (c *RegisterController) UpdateDelay(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Delay")
	if !ok {
		return
	}

	var req dto.UpdateDelayRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	delay, err := c.registerService.UpdateDelay(ctx, actor, id, req.EntryTime)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, delay)
}

// DeleteDelay handles DELETE /delays/:id
// @Summary Delete a delay
// @Description Deletes a recorded delay
// @Tags register
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /delays/{id} [delete]
func (c *RegisterController) DeleteDelay(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Delay")
	if !ok {
		return
	}

	if err := c.registerService.DeleteDelay(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Delay deleted")
}

// ListJustifications handles GET /students/:id/justifications?year=
// @Summary List student justifications
// @Description Retrieves the absence justifications of a student
// @Tags justifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=[]models.Justification} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/justifications [get]
func (c *RegisterController) ListJustifications(ctx *gin.Context) {
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

	justifications, err := c.registerService.ListJustifications(ctx, actor, studentID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, justifications)
}

// CreateJustification handles POST /justifications
// @Summary Justify an absence
// @Description Records a justification for an absence
// @Tags justifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JustificationRequest true "Justification details"
// @Success 201 {object} dto.APIResponse{data=models.Justification} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /justifications [post]
func (c *RegisterController) CreateJustification(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.JustificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	justification, err := c.registerService.CreateJustification(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, justification)
}

// UpdateJustification handles PUT /justifications/:id
// @Summary Update a justification
// @Description Changes the reason of a justification
// @Tags justifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Justification ID" Format(int64) minimum(1)
// @Param request body dto.UpdateJustificationRequest true "Justification details"
// @Success 200 {object} dto.APIResponse{data=models.Justification} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /justifications/{id} [put]
func (c *RegisterController) UpdateJustification(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Justification")
	if !ok {
		return
	}

	var req dto.UpdateJustificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	justification, err := c.registerService.UpdateJustification(ctx, actor, id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, justification)
}

// DeleteJustification handles DELETE /justifications/:id
// @Summary Delete a justification
// @Description Deletes a justification
// @Tags justifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Justification ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /justifications/{id} [delete]
func (c *RegisterController) DeleteJustification(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Justification")
	if !ok {
		return
	}

	if err := c.registerService.DeleteJustification(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Justification deleted")
}

// StudentRecord handles GET /students/:id/record?year=
// @Summary Get a student record
// @Description Retrieves the absences, delays and justifications of a student for one year
// @Tags register
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=models.StudentRecord} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/record [get]
func (c *RegisterController) StudentRecord(ctx *gin.Context) {
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

	record, err := c.registerService.StudentRecord(ctx, actor, studentID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, record)
}
