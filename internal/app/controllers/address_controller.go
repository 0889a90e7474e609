package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
)

// AddressService is what AddressController needs from the address service
type AddressService interface {
	List(ctx context.Context) ([]*models.Address, error)
	Get(ctx context.Context, id int64) (*models.Address, error)
	Create(ctx context.Context, name string) (*models.Address, error)
	Delete(ctx context.Context, id int64) error
	AssignTeachings(ctx context.Context, addressID int64, teachingIDs []int64) (*models.Address, error)
	RemoveTeaching(ctx context.Context, addressID, teachingID int64) error
}

// TeachingService is what AddressController needs from the teaching service
type TeachingService interface {
	List(ctx context.Context) ([]*models.Teaching, error)
	Get(ctx context.Context, id int64) (*models.Teaching, error)
	Create(ctx context.Context, name string) (*models.Teaching, error)
	Update(ctx context.Context, id int64, name string) (*models.Teaching, error)
	Delete(ctx context.Context, id int64) error
}

// AddressController handles addresses and the teachings offered by them
type AddressController struct {
	addressService  AddressService
	teachingService TeachingService
}

// NewAddressController creates a new AddressController
func NewAddressController(addressService AddressService, teachingService TeachingService) *AddressController {
	return &AddressController{
		addressService:  addressService,
		teachingService: teachingService,
	}
}

// ListAddresses handles GET /addresses
// @Summary List addresses
// @Description Retrieves every school address (course of study)
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Address} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses [get]
func (c *AddressController) ListAddresses(ctx *gin.Context) {
	addresses, err := c.addressService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, addresses)
}

// GetAddress handles GET /addresses/:id
// @Summary Get address details
// @Description Retrieves an address with its teachings
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Address} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses/{id} [get]
func (c *AddressController) GetAddress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Address")
	if !ok {
		return
	}

	address, err := c.addressService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, address)
}

// CreateAddress handles POST /addresses
// @Summary Create an address
// @Description Creates a new school address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddressRequest true "Address details"
// @Success 201 {object} dto.APIResponse{data=models.Address} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses [post]
func (c *AddressController) CreateAddress(ctx *gin.Context) {
	var req dto.AddressRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	address, err := c.addressService.Create(ctx, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, address)
}

// DeleteAddress handles DELETE /addresses/:id
// @Summary Delete an address
// @Description Deletes an address that has no classes left
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses/{id} [delete]
func (c *AddressController) DeleteAddress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Address")
	if !ok {
		return
	}

	if err := c.addressService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Address deleted")
}

// AssignTeachings handles POST /addresses/:id/teachings
// @Summary Assign teachings to an address
// @Description Links existing teachings to an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID" Format(int64) minimum(1)
// @Param request body dto.AssignTeachingsRequest true "Teachings details"
// @Success 200 {object} dto.APIResponse{data=models.Address} "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses/{id}/teachings [post]
func (c *AddressController) AssignTeachings(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Address")
	if !ok {
		return
	}

	var req dto.AssignTeachingsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	address, err := c.addressService.AssignTeachings(ctx, id, req.TeachingIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, address)
}

// RemoveTeaching handles DELETE /addresses/:id/teachings/:teachingId
// @Summary Remove a teaching from an address
// @Description Unlinks a teaching from an address
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID" Format(int64) minimum(1)
// @Param teachingId path int true "Teaching ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /addresses/{id}/teachings/{teachingId} [delete]
func (c *AddressController) RemoveTeaching(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Address")
	if !ok {
		return
	}
	teachingID, ok := pathID(ctx, "teachingId", "Teaching")
	if !ok {
		return
	}

	if err := c.addressService.RemoveTeaching(ctx, id, teachingID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Teaching removed from address")
}

// ListTeachings handles GET /teachings
// @Summary List teachings
// @Description Retrieves every teaching
// @Tags teachings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Teaching} "Retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachings [get]
func (c *AddressController) ListTeachings(ctx *gin.Context) {
	teachings, err := c.teachingService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, teachings)
}

// GetTeaching handles GET /teachings/:id
// @Summary Get teaching details
// @Description Retrieves a teaching by its ID
// @Tags teachings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teaching ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Teaching} "Retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachings/{id} [get]
func (c *AddressController) GetTeaching(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Teaching")
	if !ok {
		return
	}

	teaching, err := c.teachingService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, teaching)
}

// CreateTeaching handles POST /teachings
// @Summary Create a teaching
// @Description Creates a new teaching
// @Tags teachings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TeachingRequest true "Teaching details"
// @Success 201 {object} dto.APIResponse{data=models.Teaching} "Created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachings [post]
func (c *AddressController) CreateTeaching(ctx *gin.Context) {
	var req dto.TeachingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	teaching, err := c.teachingService.Create(ctx, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, teaching)
}

// UpdateTeaching handles PUT /teachings/:id
// @Summary Rename a teaching
// @Description Updates the name of a teaching
// @Tags teachings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teaching ID" Format(int64) minimum(1)
// @Param request body dto.TeachingRequest true "Teaching details"
// @Success 200 {object} dto.APIResponse{data=models.Teaching} "Updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachings/{id} [put]
func (c *AddressController) UpdateTeaching(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Teaching")
	if !ok {
		return
	}

	var req dto.TeachingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	teaching, err := c.teachingService.Update(ctx, id, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, teaching)
}

// DeleteTeaching handles DELETE /teachings/:id
// @Summary Delete a teaching
// @Description Deletes a teaching that nothing references
// @Tags teachings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teaching ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Operation completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicts with existing data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachings/{id} [delete]
func (c *AddressController) DeleteTeaching(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Teaching")
	if !ok {
		return
	}

	if err := c.teachingService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Teaching deleted")
}
