package services

import (
	"context"
	"io"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/geocoder"
)

type fakeBootcampRepo struct {
	mu        sync.Mutex
	nextID    int64
	bootcamps map[int64]*models.Bootcamp
	radius    []float64 // lng, lat, radius of the last radius search
}

func newFakeBootcampRepo() *fakeBootcampRepo {
	return &fakeBootcampRepo{bootcamps: map[int64]*models.Bootcamp{}}
}

func (r *fakeBootcampRepo) Create(_ context.Context, b *models.Bootcamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bootcamps {
		if existing.Name == b.Name {
			return apperrors.ErrDuplicateKey
		}
	}
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	if b.Photo == "" {
		b.Photo = models.DefaultPhoto
	}
	cp := *b
	r.bootcamps[b.ID] = &cp
	return nil
}

func (r *fakeBootcampRepo) GetByID(_ context.Context, id int64) (*models.Bootcamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bootcamps[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBootcampRepo) Update(_ context.Context, id int64, p *models.BootcampPatch) (*models.Bootcamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bootcamps[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Slug != nil {
		b.Slug = *p.Slug
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Careers != nil {
		b.Careers = p.Careers
	}
	if p.Housing != nil {
		b.Housing = *p.Housing
	}
	if p.Location != nil {
		b.Location = p.Location
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBootcampRepo) UpdatePhoto(_ context.Context, id int64, photo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bootcamps[id]
	if !ok {
		return apperrors.ErrResourceNotFound
	}
	b.Photo = photo
	return nil
}

func (r *fakeBootcampRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bootcamps[id]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(r.bootcamps, id)
	return nil
}

func (r *fakeBootcampRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bootcamps {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBootcampRepo) FindWithinRadius(_ context.Context, lng, lat, radius float64) ([]*models.Bootcamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.radius = []float64{lng, lat, radius}
	out := []*models.Bootcamp{}
	for _, b := range r.bootcamps {
		if b.Location != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]*models.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[int64]*models.Course{}}
}

func (r *fakeCourseRepo) Create(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) ListByBootcamp(_ context.Context, bootcampID int64) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Course{}
	for _, c := range r.courses {
		if c.BootcampID == bootcampID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCourseRepo) Update(_ context.Context, id int64, p *models.CoursePatch) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Tuition != nil {
		c.Tuition = *p.Tuition
	}
	if p.Weeks != nil {
		c.Weeks = *p.Weeks
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(r.courses, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrDuplicateKey
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, p *models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrResourceNotFound
	}
	u.Password = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*fakeToken{}}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &fakeToken{userID: userID, expiry: expiry}
	return nil
}

func (r *fakeTokenRepo) ConsumeToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, apperrors.ErrTokenExpired
	}
	t.revoked = true
	return t.userID, nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) active(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.userID == userID && !t.revoked {
			n++
		}
	}
	return n
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken // keyed by hash; revoked marks a used token
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*fakeToken{}}
}

func (r *fakeResetRepo) ReplaceToken(_ context.Context, userID int64, hash string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, t := range r.tokens {
		if t.userID == userID {
			delete(r.tokens, h)
		}
	}
	r.tokens[hash] = &fakeToken{userID: userID, expiry: expiry}
	return nil
}

func (r *fakeResetRepo) GetUserIDByToken(_ context.Context, hash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

func (r *fakeResetRepo) MarkTokenAsUsed(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (r *fakeResetRepo) DeleteTokensByUserID(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, t := range r.tokens {
		if t.userID == userID {
			delete(r.tokens, h)
		}
	}
	return nil
}

func (r *fakeResetRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type sentReset struct {
	to   string
	name string
	url  string
}

type fakeMailer struct {
	sent []sentReset
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, toEmail, toName, resetURL string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentReset{to: toEmail, name: toName, url: resetURL})
	return nil
}

type fakeGeocoder struct {
	locations []geocoder.Location
	err       error
	calls     []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) ([]geocoder.Location, error) {
	g.calls = append(g.calls, address)
	if g.err != nil {
		return nil, g.err
	}
	return g.locations, nil
}

type fakeStorage struct {
	saved   map[string][]byte
	deleted []string
}

func (s *fakeStorage) DeleteFile(filePath string) error {
	s.deleted = append(s.deleted, filePath)
	delete(s.saved, filePath)
	return nil
}

func (s *fakeStorage) SaveFileAs(fh *multipart.FileHeader, filename string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return "/uploads/" + filename, nil
}
