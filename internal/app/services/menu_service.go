package services

import (
	"context"
	"strings"

	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
)

// MenuService manages the weekly menu of refreshment points
type MenuService struct {
	menuRepo   repositories.IMenuRepository
	siteRepo   repositories.ISiteRepository
	authorizer authz.Authorizer
}

// NewMenuService creates a new MenuService
func NewMenuService(menuRepo repositories.IMenuRepository, siteRepo repositories.ISiteRepository, authorizer authz.Authorizer) *MenuService {
	return &MenuService{
		menuRepo:   menuRepo,
		siteRepo:   siteRepo,
		authorizer: authorizer,
	}
}

// Week returns the saved days of a point's menu, Monday first
func (s *MenuService) Week(ctx context.Context, siteID int64) ([]models.MenuDay, error) {
	if _, err := s.point(ctx, siteID); err != nil {
		return nil, err
	}
	return s.menuRepo.Week(ctx, siteID)
}

// SaveDay replaces the menu of one weekday
func (s *MenuService) SaveDay(ctx context.Context, actor models.Actor, siteID int64, day int, items []string) (*models.MenuDay, error) {
	if err := s.manage(ctx, actor, siteID, day); err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, apperrors.NewValidationError(map[string]string{"items": "menu items cannot be blank"})
		}
		cleaned = append(cleaned, item)
	}

	menu := models.MenuDay{SiteID: siteID, DayOfWeek: day, Items: cleaned}
	if err := s.menuRepo.SaveDay(ctx, menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// DeleteDay clears the menu of one weekday
func (s *MenuService) DeleteDay(ctx context.Context, actor models.Actor, siteID int64, day int) error {
	if err := s.manage(ctx, actor, siteID, day); err != nil {
		return err
	}
	return s.menuRepo.DeleteDay(ctx, siteID, day)
}

func (s *MenuService) manage(ctx context.Context, actor models.Actor, siteID int64, day int) error {
	if day < 1 || day > 7 {
		return apperrors.NewValidationError(map[string]string{"day": "day must be between 1 (Monday) and 7 (Sunday)"})
	}
	site, err := s.point(ctx, siteID)
	if err != nil {
		return err
	}
	return s.authorizer.CanManagePoint(actor, site)
}

func (s *MenuService) point(ctx context.Context, siteID int64) (*models.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Kind != models.SiteRefreshmentPoint {
		return nil, apperrors.NewValidationError(map[string]string{"siteId": "only refreshment points have a menu"})
	}
	return site, nil
}
