package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
)

// NoteService is what NoteController needs from the note service
type NoteService interface {
	ListForStudent(ctx context.Context, actor models.Actor, studentID int64, academicYear int) ([]models.Note, error)
	Get(ctx context.Context, actor models.Actor, id int64) (*models.Note, error)
	Create(ctx context.Context, actor models.Actor, req *dto.NoteRequest) (*models.Note, error)
	Update(ctx context.Context, actor models.Actor, id int64, description string) (*models.Note, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

// NoteController handles disciplinary notes
type NoteController struct {
	noteService NoteService
}

// NewNoteController creates a new NoteController
func NewNoteController(noteService NoteService) *NoteController {
	return &NoteController{noteService: noteService}
}

// ListNotes handles GET /students/:id/notes?year=
// @Summary List student notes
// @Description Retrieves the disciplinary notes of a student
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=[]models.Note} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/notes [get]
func (c *NoteController) ListNotes(ctx *gin.Context) {
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

	notes, err := c.noteService.ListForStudent(ctx, actor, studentID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, notes)
}

// GetNote handles GET /notes/:id
// @Summary Get a note
// @Description Retrieves a disciplinary note by its ID
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Note ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Note} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /notes/{id} [get]
func (c *NoteController) GetNote(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Note")
	if !ok {
		return
	}

	note, err := c.noteService.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, note)
}

// CreateNote handles POST /notes
// @Summary Create a note
// @Description Records a disciplinary note and notifies the parents
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NoteRequest true "Note details"
// @Success 201 {object} dto.APIResponse{data=models.Note} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /notes [post]
func (c *NoteController) CreateNote(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.NoteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	note, err := c.noteService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, note)
}

// UpdateNote handles PUT /notes/:id
// @Summary Update a note
// @Description Changes the description of a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Note ID" Format(int64) minimum(1)
// @Param request body dto.UpdateNoteRequest true "Note details"
// @Success 200 {object} dto.APIResponse{data=models.Note} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /notes/{id} [put]
func (c *NoteController) UpdateNote(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Note")
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	note, err := c.noteService.Update(ctx, actor, id, req.Description)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, note)
}

// DeleteNote handles DELETE /notes/:id
// @Summary Delete a note
// @Description Deletes a disciplinary note
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Note ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /notes/{id} [delete]
func (c *NoteController) DeleteNote(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Note")
	if !ok {
		return
	}

	if err := c.noteService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Note deleted")
}
