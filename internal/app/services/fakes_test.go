package services

import (
	"context"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/events"
	"github.com/monchobi/artschool/internal/pkg/helpers"
)

// memStore keeps classes, enrollments and payments behind one mutex, the way
// the database keeps them behind row locks.
type memStore struct {
	mu          sync.Mutex
	classes     map[string]*models.Class
	enrollments map[string]*models.Enrollment
	payments    map[string]*models.Payment
	archives    map[models.ClassStatus][]*models.ArchivedClass
	users       map[string]*models.User
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		classes:     map[string]*models.Class{},
		enrollments: map[string]*models.Enrollment{},
		payments:    map[string]*models.Payment{},
		archives:    map[models.ClassStatus][]*models.ArchivedClass{},
		users:       map[string]*models.User{},
	}
}

func (m *memStore) addClass(c models.Class) *models.Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Status == "" {
		c.Status = models.ClassStatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = helpers.NowUTC()
	}
	stored := c
	m.classes[c.ID] = &stored
	return &stored
}

func (m *memStore) seats(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classes[id].SeatsAvailable
}

// ---- ClassStore ----

func (m *memStore) Create(_ context.Context, class *models.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	c := *class
	m.classes[c.ID] = &c
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) List(_ context.Context, filter models.SubmissionFilter) ([]*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Class{}
	for _, c := range m.classes {
		if filter.InstructorEmail != "" && c.InstructorEmail != filter.InstructorEmail {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status models.ClassStatus) (*models.Class, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, false, apperrors.ErrClassNotFound
	}
	if c.Status == status {
		cp := *c
		return &cp, false, nil
	}
	c.Status = status
	c.UpdatedAt = helpers.NowUTC()
	snapshot := *c
	m.archives[status] = append([]*models.ArchivedClass{{
		ID:         "archive-" + id,
		ClassID:    id,
		Status:     status,
		Snapshot:   snapshot,
		ArchivedAt: helpers.NowUTC(),
	}}, m.archives[status]...)
	cp := *c
	return &cp, true, nil
}

func (m *memStore) UpdateFeedback(_ context.Context, id string, feedback string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	c.Feedback = &feedback
	cp := *c
	return &cp, nil
}

func (m *memStore) ListArchive(_ context.Context, status models.ClassStatus) ([]*models.ArchivedClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ArchivedClass{}, m.archives[status]...), nil
}

// enrollmentStore adapts memStore to EnrollmentStore; method names collide
// with ClassStore so it is a separate view.
type enrollmentStore struct{ *memStore }

func (e enrollmentStore) Reserve(_ context.Context, enrollment *models.Enrollment) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failWith != nil {
		return e.failWith
	}
	c, ok := e.classes[enrollment.ClassID]
	if !ok || c.Status != models.ClassStatusApproved {
		return apperrors.ErrClassNotFound
	}
	if c.SeatsAvailable <= 0 {
		return apperrors.ErrClassFull
	}
	c.SeatsAvailable--
	enrollment.ClassTitle = c.Title
	enrollment.Price = c.Price
	stored := *enrollment
	e.enrollments[stored.ID] = &stored
	return nil
}

func (e enrollmentStore) GetByID(_ context.Context, id string) (*models.Enrollment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en, ok := e.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *en
	return &cp, nil
}

func (e enrollmentStore) Delete(_ context.Context, id string, restoreSeat bool) (*models.Enrollment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en, ok := e.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	delete(e.enrollments, id)
	if c, ok := e.classes[en.ClassID]; ok && restoreSeat {
		c.SeatsAvailable++
	}
	return en, nil
}

func (e enrollmentStore) ListByEmail(_ context.Context, email string) ([]*models.Enrollment, error) {
	return e.filter(func(en *models.Enrollment) bool { return en.Email == email }), nil
}

func (e enrollmentStore) ListByClass(_ context.Context, classID string) ([]*models.Enrollment, error) {
	return e.filter(func(en *models.Enrollment) bool { return en.ClassID == classID }), nil
}

func (e enrollmentStore) filter(keep func(*models.Enrollment) bool) []*models.Enrollment {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []*models.Enrollment{}
	for _, en := range e.enrollments {
		if keep(en) {
			cp := *en
			out = append(out, &cp)
		}
	}
	return out
}

type paymentStore struct{ *memStore }

func (p paymentStore) Finalize(_ context.Context, payment *models.Payment, amount *int64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.payments {
		if existing.EnrollmentID == payment.EnrollmentID {
			return false, apperrors.ErrPaymentAlreadyRecorded
		}
	}

	en, deleted := p.enrollments[payment.EnrollmentID]
	switch {
	case amount != nil:
		payment.Amount = *amount
	case deleted:
		payment.Amount = en.Price
	default:
		return false, apperrors.ErrAmountRequired
	}
	if deleted {
		delete(p.enrollments, payment.EnrollmentID)
		payment.ClassID = en.ClassID
		payment.ClassTitle = en.ClassTitle
	}
	stored := *payment
	p.payments[stored.ID] = &stored
	return deleted, nil
}

func (p paymentStore) ListByEmail(_ context.Context, email string) ([]*models.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*models.Payment{}
	for _, pay := range p.payments {
		if pay.Email == email {
			out = append(out, pay)
		}
	}
	return out, nil
}

func (p paymentStore) ListByClass(_ context.Context, classID string) ([]*models.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*models.Payment{}
	for _, pay := range p.payments {
		if pay.ClassID == classID {
			out = append(out, pay)
		}
	}
	return out, nil
}

type userStore struct{ *memStore }

func (u userStore) Upsert(_ context.Context, user *models.User) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if existing, ok := u.users[user.Email]; ok {
		existing.Name = user.Name
		existing.PhotoURL = user.PhotoURL
		cp := *existing
		return &cp, nil
	}
	stored := *user
	u.users[user.Email] = &stored
	cp := stored
	return &cp, nil
}

func (u userStore) EnsureRole(_ context.Context, email string, role models.RoleType) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	existing, ok := u.users[email]
	if !ok {
		existing = &models.User{Email: email}
		u.users[email] = existing
	}
	existing.Role = role
	cp := *existing
	return &cp, nil
}

func (u userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	existing, ok := u.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *existing
	return &cp, nil
}

func (u userStore) SetRole(_ context.Context, email string, role models.RoleType) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	existing, ok := u.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	existing.Role = role
	cp := *existing
	return &cp, nil
}

func (u userStore) List(_ context.Context) ([]*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := []*models.User{}
	for _, usr := range u.users {
		cp := *usr
		out = append(out, &cp)
	}
	return out, nil
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *recorder) Publish(_ context.Context, env events.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, env)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func (r *recorder) count(eventType string) int {
	n := 0
	for _, t := range r.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

// mailbox records emails instead of sending them.
type mailbox struct {
	mu        sync.Mutex
	decisions []string
	feedback  []string
	receipts  []string
}

func (m *mailbox) SendReviewDecision(toEmail, _, _, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, toEmail+":"+status)
	return nil
}

func (m *mailbox) SendReviewFeedback(toEmail, _, _, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, toEmail+":"+feedback)
	return nil
}

func (m *mailbox) SendPaymentReceipt(toEmail, _ string, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, toEmail)
	return nil
}

// mapCache is an in-memory cache.Cache that counts deletions.
type mapCache struct {
	mu      sync.Mutex
	values  map[string]any
	deleted []string
}

func newMapCache() *mapCache {
	return &mapCache{values: map[string]any{}}
}

func (c *mapCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]*models.Class:
		*d = v.([]*models.Class)
	case *[]*models.ArchivedClass:
		*d = v.([]*models.ArchivedClass)
	case *models.Class:
		*d = *v.(*models.Class)
	default:
		return false, nil
	}
	return true, nil
}

func (c *mapCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

// stubStorage pretends to store images.
type stubStorage struct{}

func (stubStorage) SaveImage(_ context.Context, fh *multipart.FileHeader, subPath string) (string, error) {
	return "http://localhost/uploads/" + subPath + "/" + fh.Filename, nil
}
func (stubStorage) DeleteFile(string) error { return nil }
func (stubStorage) BasePath() string        { return "uploads" }
