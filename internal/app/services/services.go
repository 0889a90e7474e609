package services

import (
	"github.com/rs/zerolog"
	authz "github.com/yigit/agora/internal/app/auth"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/auth"
	"github.com/yigit/agora/internal/pkg/filestorage"
	"github.com/yigit/agora/internal/pkg/notifier"
)

// Options carries the collaborators shared by the services
type Options struct {
	Repos      *repositories.Repositories
	JWT        *auth.JWTService
	Authorizer authz.Authorizer
	Storage    filestorage.FileStorage
	Publisher  notifier.Publisher
	Lockout    LockoutPolicy
	Banners    BannerLimits
	Monitoring MonitoringDefaults
	Logger     zerolog.Logger
}

// Services holds every service of the application
type Services struct {
	Auth       *AuthService
	User       *UserService
	Address    *AddressService
	Teaching   *TeachingService
	Class      *ClassService
	Register   *RegisterService
	Note       *NoteService
	ReportCard *ReportCardService
	Monitoring *MonitoringService
	Enrollment *EnrollmentService

	Site       *SiteService
	Tag        *TagService
	Banner     *BannerService
	Feedback   *FeedbackService
	Convention *ConventionService
	Menu       *MenuService
	Tourist    *TouristService
	Preference *PreferenceService
	Statistics *StatisticsService
	News       *NewsService
}

// NewServices builds all services; each gets a logger tagged with its name
func NewServices(o Options) *Services {
	r := o.Repos
	log := func(name string) zerolog.Logger {
		return o.Logger.With().Str("service", name).Logger()
	}

	return &Services{
		Auth:       NewAuthService(r.UserRepository, r.TokenRepository, o.JWT, o.Lockout, log("auth")),
		User:       NewUserService(r.UserRepository, r.TokenRepository, log("user")),
		Address:    NewAddressService(r.AddressRepository, r.TeachingRepository),
		Teaching:   NewTeachingService(r.TeachingRepository),
		Class:      NewClassService(r.ClassRepository, r.AddressRepository, r.UserRepository, log("class")),
		Register:   NewRegisterService(r.RegisterRepository, r.ClassRepository, r.NoteRepository, r.UserRepository, o.Authorizer, o.Publisher, log("register")),
		Note:       NewNoteService(r.NoteRepository, r.ClassRepository, r.UserRepository, o.Authorizer, o.Publisher, log("note")),
		ReportCard: NewReportCardService(r.ReportCardRepository, r.ClassRepository, r.AddressRepository, o.Authorizer, log("reportcard")),
		Monitoring: NewMonitoringService(r.MonitoringRepository, r.UserRepository, o.Publisher, o.Monitoring, log("monitoring")),
		Enrollment: NewEnrollmentService(r.EnrollmentRepository, r.UserRepository, o.Publisher, log("enrollment")),

		Site:       NewSiteService(r.SiteRepository, r.UserRepository, o.Storage, o.Authorizer, log("site")),
		Tag:        NewTagService(r.TagRepository),
		Banner:     NewBannerService(r.BannerRepository, r.SiteRepository, o.Storage, o.Authorizer, o.Publisher, o.Banners, log("banner")),
		Feedback:   NewFeedbackService(r.FeedbackRepository, r.SiteRepository, o.Publisher, log("feedback")),
		Convention: NewConventionService(r.ConventionRepository, r.SiteRepository, r.UserRepository, o.Authorizer, o.Publisher, log("convention")),
		Menu:       NewMenuService(r.MenuRepository, r.SiteRepository, o.Authorizer),
		Tourist:    NewTouristService(r.TouristRepository, r.UserRepository, r.TokenRepository, log("tourist")),
		Preference: NewPreferenceService(r.PreferenceRepository, r.SiteRepository, r.FeedbackRepository),
		Statistics: NewStatisticsService(r.SiteRepository, o.Authorizer),
		News:       NewNewsService(r.NewsRepository, o.Publisher, log("news")),
	}
}
