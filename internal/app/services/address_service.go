package services

import (
	"context"
	"strings"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
)

// AddressService manages courses of study and their teachings
type AddressService struct {
	addressRepo  repositories.IAddressRepository
	teachingRepo repositories.ITeachingRepository
}

// NewAddressService creates a new AddressService
func NewAddressService(addressRepo repositories.IAddressRepository, teachingRepo repositories.ITeachingRepository) *AddressService {
	return &AddressService{
		addressRepo:  addressRepo,
		teachingRepo: teachingRepo,
	}
}

// List returns all addresses
func (s *AddressService) List(ctx context.Context) ([]*models.Address, error) {
	return s.addressRepo.List(ctx)
}

// Get returns an address with its teachings
func (s *AddressService) Get(ctx context.Context, id int64) (*models.Address, error) {
	return s.addressRepo.GetByID(ctx, id)
}

// Create inserts an address
func (s *AddressService) Create(ctx context.Context, name string) (*models.Address, error) {
	address := &models.Address{Name: strings.TrimSpace(name)}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}
	address.Teachings = []models.Teaching{}
	return address, nil
}

// Delete removes an address that no class refers to
func (s *AddressService) Delete(ctx context.Context, id int64) error {
	return s.addressRepo.Delete(ctx, id)
}

// AssignTeachings links existing teachings to an address
func (s *AddressService) AssignTeachings(ctx context.Context, addressID int64, teachingIDs []int64) (*models.Address, error) {
	if _, err := s.addressRepo.GetByID(ctx, addressID); err != nil {
		return nil, err
	}
	for _, id := range teachingIDs {
		if _, err := s.teachingRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.addressRepo.AssignTeachings(ctx, addressID, teachingIDs); err != nil {
		return nil, err
	}
	return s.addressRepo.GetByID(ctx, addressID)
}

// RemoveTeaching unlinks a teaching from an address
func (s *AddressService) RemoveTeaching(ctx context.Context, addressID, teachingID int64) error {
	return s.addressRepo.RemoveTeaching(ctx, addressID, teachingID)
}
