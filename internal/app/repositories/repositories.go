package repositories

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	AddressRepository    *AddressRepository
	TeachingRepository   *TeachingRepository
	ClassRepository      *ClassRepository
	RegisterRepository   *RegisterRepository
	NoteRepository       *NoteRepository
	ReportCardRepository *ReportCardRepository
	MonitoringRepository *MonitoringRepository
	EnrollmentRepository *EnrollmentRepository

	SiteRepository       *SiteRepository
	TagRepository        *TagRepository
	BannerRepository     *BannerRepository
	FeedbackRepository   *FeedbackRepository
	ConventionRepository *ConventionRepository
	MenuRepository       *MenuRepository
	TouristRepository    *TouristRepository
	PreferenceRepository *PreferenceRepository
	NewsRepository       *NewsRepository
}

// NewRepositories initializes all repositories over db, usually a *pgxpool.Pool
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		AddressRepository:    NewAddressRepository(db),
		TeachingRepository:   NewTeachingRepository(db),
		ClassRepository:      NewClassRepository(db),
		RegisterRepository:   NewRegisterRepository(db),
		NoteRepository:       NewNoteRepository(db),
		ReportCardRepository: NewReportCardRepository(db),
		MonitoringRepository: NewMonitoringRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),

		SiteRepository:       NewSiteRepository(db),
		TagRepository:        NewTagRepository(db),
		BannerRepository:     NewBannerRepository(db),
		FeedbackRepository:   NewFeedbackRepository(db),
		ConventionRepository: NewConventionRepository(db),
		MenuRepository:       NewMenuRepository(db),
		TouristRepository:    NewTouristRepository(db),
		PreferenceRepository: NewPreferenceRepository(db),
		NewsRepository:       NewNewsRepository(db),
	}
}
