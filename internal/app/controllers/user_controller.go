package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/helpers"
)

// UserService is what UserController needs from the user service
type UserService interface {
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
	AssignRoles(ctx context.Context, id int64, roles []models.RoleType) (*models.User, error)
	RemoveRole(ctx context.Context, actor models.Actor, id int64, role models.RoleType) error
	AssignStudents(ctx context.Context, parentID int64, studentIDs []int64) error
	RemoveStudent(ctx context.Context, parentID, studentID int64) error
	ListChildren(ctx context.Context, parentID int64) ([]*models.User, error)
}

// UserController handles user administration
type UserController struct {
	userService UserService
}

// NewUserController creates a new UserController
func NewUserController(userService UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers handles GET /users?role=&q=&page=&size=
// @Summary List users
// @Description Lists user accounts, optionally filtered by role and text
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role"
// @Param q query string false "Text search"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.User}} "Results retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page := helpers.PageFromQuery(ctx)

	users, total, err := c.userService.List(ctx, models.UserFilter{
		Role:   models.RoleType(strings.ToUpper(ctx.Query("role"))),
		Search: ctx.Query("q"),
		Offset: page.Offset(),
		Limit:  page.Limit(),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, users, total, page)
}

// GetUser handles GET /users/:id
// @Summary Get user details
// @Description Retrieves a user account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.User} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	user, err := c.userService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, user)
}

// CreateUser handles POST /users
// @Summary Create a user
// @Description Creates a user account with its roles
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User details"
// @Success 201 {object} dto.APIResponse{data=models.User} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondCreated(ctx, user)
}

// UpdateUser handles PUT /users/:id
// @Summary Update a user
// @Description Updates the details of a user account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Param request body dto.UpdateUserRequest true "User details"
// @Success 200 {object} dto.APIResponse{data=models.User} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, user)
}

// DeleteUser handles DELETE /users/:id
// @Summary Delete a user
// @Description Deletes a user account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, "User deleted")
}

// AssignRoles handles POST /users/:id/roles
// @Summary Assign roles
// @Description Adds roles to a user account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Param request body dto.AssignRolesRequest true "Roles details"
// @Success 200 {object} dto.APIResponse{data=models.User} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id}/roles [post]
func (c *UserController) AssignRoles(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	var req dto.AssignRolesRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.AssignRoles(ctx, id, req.Roles)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, user)
}

// RemoveRole handles DELETE /users/:id/roles/:role
// @Summary Remove a role
// @Description Removes a role from a user account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Param role path string true "Role"
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id}/roles/{role} [delete]
func (c *UserController) RemoveRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}

	role := models.RoleType(strings.ToUpper(ctx.Param("role")))
	if err := c.userService.RemoveRole(ctx, actor, id, role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, "Role removed")
}

// ListChildren handles GET /users/:id/students
// @Summary List parent students
// @Description Retrieves the students linked to a parent
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.User} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id}/students [get]
func (c *UserController) ListChildren(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Parent")
	if !ok {
		return
	}

	children, err := c.userService.ListChildren(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, children)
}

// AssignStudents handles POST /users/:id/students
// @Summary Link students to a parent
// @Description Links student accounts to a parent account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID" Format(int64) minimum(1)
// @Param request body dto.AssignStudentsRequest true "Students details"
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id}/students [post]
func (c *UserController) AssignStudents(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Parent")
	if !ok {
		return
	}

	var req dto.AssignStudentsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.userService.AssignStudents(ctx, id, req.StudentIDs); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, "Students assigned")
}

// RemoveStudent handles DELETE /users/:id/students/:studentId
// @Summary Unlink a student from a parent
// @Description Removes the link between a parent and a student
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID" Format(int64) minimum(1)
// @Param studentId path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{id}/students/{studentId} [delete]
func (c *UserController) RemoveStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Parent")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId", "Student")
	if !ok {
		return
	}

	if err := c.userService.RemoveStudent(ctx, id, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, "Student removed from parent")
}
