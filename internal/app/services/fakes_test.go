package services

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/filestorage"
	"github.com/yigit/agora/internal/pkg/geo"
	"github.com/yigit/agora/internal/pkg/notifier"
)

// Fakes embed the repository interface and override what the tests touch;
// an unexpected call panics on the nil embedded value.

type fakeUserRepo struct {
	repositories.IUserRepository

	users    map[int64]*models.User
	children map[int64][]int64 // parent -> students
	nextID   int64

	failures      map[int64]int
	revokedTokens map[int64]bool
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:    make(map[int64]*models.User),
		children: make(map[int64][]int64),
		failures: make(map[int64]int),
		nextID:   100,
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range r.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Login == u.Login {
			return apperrors.ErrLoginAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) LoginExists(_ context.Context, login string) (bool, error) {
	for _, u := range r.users {
		if u.Login == login {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.users[id].Password = hash
	return nil
}

func (r *fakeUserRepo) RecordLoginFailure(_ context.Context, id int64, max int, lockUntil time.Time) (bool, error) {
	r.failures[id]++
	if r.failures[id] >= max {
		r.failures[id] = 0
		r.users[id].LockedUntil = &lockUntil
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) RecordLoginSuccess(_ context.Context, id int64, at time.Time) error {
	r.failures[id] = 0
	r.users[id].LastLoginAt = &at
	return nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role models.RoleType) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if u.IsActive && u.HasRole(role) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListParents(_ context.Context, studentID int64) ([]*models.User, error) {
	var out []*models.User
	for parentID, kids := range r.children {
		for _, k := range kids {
			if k == studentID {
				out = append(out, r.users[parentID])
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AssignStudents(_ context.Context, parentID int64, studentIDs []int64) error {
	r.children[parentID] = append(r.children[parentID], studentIDs...)
	return nil
}

func (r *fakeUserRepo) AddRoles(_ context.Context, id int64, roles []models.RoleType) error {
	u := r.users[id]
	for _, role := range roles {
		if !u.HasRole(role) {
			u.Roles = append(u.Roles, role)
		}
	}
	return nil
}

func (r *fakeUserRepo) RemoveRole(_ context.Context, id int64, role models.RoleType) error {
	u := r.users[id]
	kept := u.Roles[:0]
	for _, held := range u.Roles {
		if held != role {
			kept = append(kept, held)
		}
	}
	u.Roles = kept
	return nil
}

type fakeTokenRepo struct {
	repositories.ITokenRepository

	tokens  map[string]int64
	revoked map[string]bool
	expires map[string]time.Time
	allFor  []int64
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		tokens:  make(map[string]int64),
		revoked: make(map[string]bool),
		expires: make(map[string]time.Time),
	}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, exp time.Time) error {
	r.tokens[token] = userID
	r.expires[token] = exp
	return nil
}

func (r *fakeTokenRepo) GetTokenByValue(_ context.Context, token string, now time.Time) (int64, error) {
	id, ok := r.tokens[token]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case r.revoked[token]:
		return 0, apperrors.ErrTokenRevoked
	case now.After(r.expires[token]):
		return 0, apperrors.ErrTokenExpired
	}
	return id, nil
}

func (r *fakeTokenRepo) RevokeToken(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return apperrors.ErrTokenNotFound
	}
	r.revoked[token] = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.allFor = append(r.allFor, userID)
	for t, id := range r.tokens {
		if id == userID {
			r.revoked[t] = true
		}
	}
	return nil
}

type fakeClassRepo struct {
	repositories.IClassRepository

	classes  map[int64]*models.Class
	students map[int64][]models.ClassMember
	teachers map[int64][]models.ClassTeacher
}

func newFakeClassRepo(classes ...*models.Class) *fakeClassRepo {
	r := &fakeClassRepo{
		classes:  make(map[int64]*models.Class),
		students: make(map[int64][]models.ClassMember),
		teachers: make(map[int64][]models.ClassTeacher),
	}
	for _, c := range classes {
		r.classes[c.ID] = c
	}
	return r
}

func (r *fakeClassRepo) GetByID(_ context.Context, id int64) (*models.Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("class not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClassRepo) ListStudents(_ context.Context, classID int64) ([]models.ClassMember, error) {
	return r.students[classID], nil
}

func (r *fakeClassRepo) IsStudentEnrolled(_ context.Context, classID, studentID int64) (bool, error) {
	for _, m := range r.students[classID] {
		if m.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeClassRepo) EnrollStudent(_ context.Context, classID, studentID int64) error {
	r.students[classID] = append(r.students[classID], models.ClassMember{StudentID: studentID})
	return nil
}

func (r *fakeClassRepo) AssignTeacher(_ context.Context, ct models.ClassTeacher) error {
	r.teachers[ct.ClassID] = append(r.teachers[ct.ClassID], ct)
	return nil
}

type fakeAddressRepo struct {
	repositories.IAddressRepository

	addresses map[int64]*models.Address
}

func (r *fakeAddressRepo) GetByID(_ context.Context, id int64) (*models.Address, error) {
	a, ok := r.addresses[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("address not found")
	}
	return a, nil
}

func (r *fakeAddressRepo) HasTeaching(_ context.Context, addressID, teachingID int64) (bool, error) {
	a, ok := r.addresses[addressID]
	if !ok {
		return false, nil
	}
	for _, t := range a.Teachings {
		if t.ID == teachingID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRegisterRepo struct {
	repositories.IRegisterRepository

	absences       map[int64]*models.Absence
	delays         map[int64]*models.Delay
	justifications map[int64]*models.Justification

	savedEntries []models.RegisterEntry
	nextID       int64
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{
		absences:       make(map[int64]*models.Absence),
		delays:         make(map[int64]*models.Delay),
		justifications: make(map[int64]*models.Justification),
	}
}

func (r *fakeRegisterRepo) ListDayAbsences(_ context.Context, classID int64, day time.Time) ([]models.Absence, error) {
	var out []models.Absence
	for _, a := range r.absences {
		if a.ClassID == classID && a.Date.Equal(day) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRegisterRepo) ListDayDelays(_ context.Context, classID int64, day time.Time) ([]models.Delay, error) {
	var out []models.Delay
	for _, d := range r.delays {
		if d.ClassID == classID && d.Date.Equal(day) {
			out = append(out, *d)
		}
	}
	return out, nil
}

// SaveDay only inserts absences, which is what the service depends on
func (r *fakeRegisterRepo) SaveDay(_ context.Context, class *models.Class, day time.Time, entries []models.RegisterEntry) (models.RegisterSaveResult, []models.Absence, error) {
	r.savedEntries = entries
	var added []models.Absence
	for _, e := range entries {
		if !e.Absent {
			continue
		}
		r.nextID++
		a := models.Absence{ID: r.nextID, StudentID: e.StudentID, ClassID: class.ID, Date: day, AcademicYear: class.AcademicYear}
		r.absences[a.ID] = &a
		added = append(added, a)
	}
	return models.RegisterSaveResult{AbsencesAdded: len(added)}, added, nil
}

func (r *fakeRegisterRepo) GetAbsence(_ context.Context, id int64) (*models.Absence, error) {
	a, ok := r.absences[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("absence not found")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRegisterRepo) GetDelay(_ context.Context, id int64) (*models.Delay, error) {
	d, ok := r.delays[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("delay not found")
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRegisterRepo) UpdateDelay(_ context.Context, id int64, entryTime string) error {
	r.delays[id].EntryTime = entryTime
	return nil
}

func (r *fakeRegisterRepo) CreateJustification(_ context.Context, j *models.Justification) error {
	r.nextID++
	j.ID = r.nextID
	r.justifications[j.ID] = j
	r.absences[j.AbsenceID].JustificationID = &j.ID
	return nil
}

func (r *fakeRegisterRepo) ListAbsences(_ context.Context, studentID int64, year int) ([]models.Absence, error) {
	var out []models.Absence
	for _, a := range r.absences {
		if a.StudentID == studentID && a.AcademicYear == year {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRegisterRepo) ListDelays(context.Context, int64, int) ([]models.Delay, error) {
	return nil, nil
}

type fakeNoteRepo struct {
	repositories.INoteRepository

	notes  map[int64]*models.Note
	counts map[int64]int
	nextID int64
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int64]*models.Note), counts: make(map[int64]int)}
}

func (r *fakeNoteRepo) CountByStudent(context.Context, int64, int) (map[int64]int, error) {
	return r.counts, nil
}

func (r *fakeNoteRepo) ListForStudent(_ context.Context, studentID int64, year int) ([]models.Note, error) {
	var out []models.Note
	for _, n := range r.notes {
		if n.StudentID == studentID && n.AcademicYear == year {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id int64) (*models.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("note not found")
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNoteRepo) Create(_ context.Context, n *models.Note) error {
	r.nextID++
	n.ID = r.nextID
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id int64) error {
	delete(r.notes, id)
	return nil
}

type fakeSiteRepo struct {
	repositories.ISiteRepository

	sites   map[int64]*models.Site
	deleted []int64
	urls    map[int64][]string
	box     repositories.BoundingBox
}

func newFakeSiteRepo(sites ...*models.Site) *fakeSiteRepo {
	r := &fakeSiteRepo{sites: make(map[int64]*models.Site), urls: make(map[int64][]string)}
	for _, s := range sites {
		r.sites[s.ID] = s
	}
	return r
}

func (r *fakeSiteRepo) GetByID(_ context.Context, id int64) (*models.Site, error) {
	s, ok := r.sites[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("site not found")
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSiteRepo) Create(_ context.Context, s *models.Site) error {
	s.ID = int64(len(r.sites) + 1)
	cp := *s
	r.sites[s.ID] = &cp
	return nil
}

func (r *fakeSiteRepo) Update(_ context.Context, s *models.Site) error {
	cp := *s
	r.sites[s.ID] = &cp
	return nil
}

func (r *fakeSiteRepo) Delete(_ context.Context, id int64) ([]string, error) {
	if _, ok := r.sites[id]; !ok {
		return nil, apperrors.NewResourceNotFoundError("site not found")
	}
	delete(r.sites, id)
	r.deleted = append(r.deleted, id)
	return r.urls[id], nil
}

func (r *fakeSiteRepo) WithinBox(_ context.Context, box repositories.BoundingBox, kind models.SiteKind) ([]*models.Site, error) {
	r.box = box
	var out []*models.Site
	for _, s := range r.sites {
		if kind != "" && s.Kind != kind {
			continue
		}
		inBox := geo.BoundingBox{MinLat: box.MinLat, MaxLat: box.MaxLat, MinLon: box.MinLon, MaxLon: box.MaxLon}.
			Contains(geo.Point{Lat: s.Latitude, Lon: s.Longitude})
		if inBox {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeStorage struct {
	filestorage.FileStorage

	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (s *fakeStorage) SaveBytes(_ []byte, filename, subPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "/uploads/" + subPath + "/" + filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeStorage) DeleteFile(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev notifier.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

func (p *fakePublisher) kinds() []notifier.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifier.Kind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

// fakeAuthorizer allows everything unless deny is set
type fakeAuthorizer struct {
	deny bool
}

func (a fakeAuthorizer) CanManageClass(context.Context, models.Actor, int64) error {
	if a.deny {
		return apperrors.NewForbiddenError("denied")
	}
	return nil
}

func (a fakeAuthorizer) CanViewStudent(context.Context, models.Actor, int64) error {
	if a.deny {
		return apperrors.NewForbiddenError("denied")
	}
	return nil
}

func (a fakeAuthorizer) CanManagePoint(models.Actor, *models.Site) error {
	if a.deny {
		return apperrors.NewForbiddenError("denied")
	}
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
