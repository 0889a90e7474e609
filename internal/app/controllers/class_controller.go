package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
)

// ClassService is what ClassController needs from the class service
type ClassService interface {
	List(ctx context.Context, addressID int64, academicYear int) ([]*models.Class, error)
	ListForTeacher(ctx context.Context, teacherID int64, academicYear int) ([]*models.Class, error)
	Get(ctx context.Context, id int64) (*models.Class, error)
	Create(ctx context.Context, req *dto.ClassRequest) (*models.Class, error)
	Update(ctx context.Context, id int64, req *dto.ClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id int64) error
	ListStudents(ctx context.Context, classID int64) ([]models.ClassMember, error)
	EnrollStudent(ctx context.Context, classID, studentID int64) error
	RemoveStudent(ctx context.Context, classID, studentID int64) error
	ListTeachers(ctx context.Context, classID int64) ([]models.ClassTeacher, error)
	AssignTeacher(ctx context.Context, classID int64, req *dto.AssignTeacherRequest) error
	RemoveTeacher(ctx context.Context, classID, teacherID, teachingID int64) error
}

// ClassController handles classes, their students and teachers
type ClassController struct {
	classService ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService ClassService) *ClassController {
	return &ClassController{classService: classService}
}

// ListClasses handles GET /addresses/:id/classes?year=
// @Summary List classes of an address
// @Description Retrieves the classes of an address, optionally for one academic year
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID" Format(int64) minimum(1)
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=[]models.Class} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses/{id}/classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	addressID, ok := pathID(ctx, "id", "Address")
	if !ok {
		return
	}
	year, ok := intQuery(ctx, "year")
	if !ok {
		return
	}

	classes, err := c.classService.List(ctx, addressID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, classes)
}

// ListMyClasses handles GET /classes/mine?year= for teachers
// @Summary List my classes
// @Description Retrieves the classes the calling teacher teaches in
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param year query int false "Academic year"
// @Success 200 {object} dto.APIResponse{data=[]models.Class} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/mine [get]
func (c *ClassController) ListMyClasses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	year, ok := intQuery(ctx, "year")
	if !ok {
		return
	}

	classes, err := c.classService.ListForTeacher(ctx, actor.UserID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, classes)
}

// GetClass handles GET /classes/:id
// @Summary Get class details
// @Description Retrieves a class by its ID
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Class} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	class, err := c.classService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, class)
}

// CreateClass handles POST /classes
// @Summary Create a class
// @Description Creates a class for an address and academic year
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassRequest true "Class details"
// @Success 201 {object} dto.APIResponse{data=models.Class} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, class)
}

// UpdateClass handles PUT /classes/:id
// @Summary Update a class
// @Description Updates the name, address or year of a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param request body dto.ClassRequest true "Class details"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, class)
}

// DeleteClass handles DELETE /classes/:id
// @Summary Delete a class
// @Description Deletes a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	if err := c.classService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Class deleted")
}

// ListStudents handles GET /classes/:id/students
// @Summary List class students
// @Description Retrieves the students enrolled in a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.ClassMember} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/students [get]
func (c *ClassController) ListStudents(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	students, err := c.classService.ListStudents(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}

// EnrollStudent handles POST /classes/:id/students
// @Summary Enroll a student
// @Description Enrolls a student in a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param request body dto.EnrollStudentRequest true "Enroll student details"
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/students [post]
func (c *ClassController) EnrollStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	var req dto.EnrollStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.classService.EnrollStudent(ctx, id, req.StudentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Student enrolled")
}

// RemoveStudent handles DELETE /classes/:id/students/:studentId
// @Summary Remove a student from a class
// @Description Removes a student from a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param studentId path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/students/{studentId} [delete]
func (c *ClassController) RemoveStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId", "Student")
	if !ok {
		return
	}

	if err := c.classService.RemoveStudent(ctx, id, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Student removed from class")
}

// ListTeachers handles GET /classes/:id/teachers
// @Summary List class teachers
// @Description Retrieves the teachers of a class with their teachings
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.ClassTeacher} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/teachers [get]
func (c *ClassController) ListTeachers(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	teachers, err := c.classService.ListTeachers(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, teachers)
}

// AssignTeacher handles POST /classes/:id/teachers
// @Summary Assign a teacher
// @Description Assigns a teacher to a class for one teaching
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param request body dto.AssignTeacherRequest true "Teacher details"
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/teachers [post]
func (c *ClassController) AssignTeacher(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}

	var req dto.AssignTeacherRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.classService.AssignTeacher(ctx, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Teacher assigned")
}

// RemoveTeacher handles DELETE /classes/:id/teachers/:teacherId/teachings/:teachingId
// @Summary Remove a teacher from a class
// @Description Removes a teacher assignment for one teaching
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Param teacherId path int true "Teacher ID" Format(int64) minimum(1)
// @Param teachingId path int true "Teaching ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classes/{id}/teachers/{teacherId}/teachings/{teachingId} [delete]
func (c *ClassController) RemoveTeacher(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Class")
	if !ok {
		return
	}
	teacherID, ok := pathID(ctx, "teacherId", "Teacher")
	if !ok {
		return
	}
	teachingID, ok := pathID(ctx, "teachingId", "Teaching")
	if !ok {
		return
	}

	if err := c.classService.RemoveTeacher(ctx, id, teacherID, teachingID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Teacher removed from class")
}
