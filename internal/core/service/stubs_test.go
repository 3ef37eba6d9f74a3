package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. All are safe for concurrent use so the
// capacity tests can drive them from several goroutines.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	seq     int
	findErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		r.put(u)
	}
	return r
}

func (r *stubUserRepo) put(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("user-%d", r.seq)
	}
	clone := *u
	r.byID[u.ID] = &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := *u
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	email = domain.NormalizeEmail(email)
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserListFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for _, u := range r.byID {
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Search)) {
			continue
		}
		clone := *u
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, upd ports.ProfileUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	before := *u
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	if upd.Birthdate != nil {
		u.Birthdate = *upd.Birthdate
	}
	if upd.CompanyName != nil {
		u.CompanyName = *upd.CompanyName
	}
	if upd.CompanyLogo != nil {
		u.CompanyLogo = *upd.CompanyLogo
	}
	return before != *u, nil
}

func (r *stubUserRepo) UpdatePackage(_ context.Context, email, name string, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == domain.NormalizeEmail(email) {
			u.Package = name
			u.PackageLimit = limit
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) ListHR(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.byID {
		if u.IsHR() {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubAssetRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Asset
	seq       int
	adjustErr error
	adjusts   int
}

func newStubAssetRepo(assets ...*domain.Asset) *stubAssetRepo {
	r := &stubAssetRepo{byID: make(map[string]*domain.Asset)}
	for _, a := range assets {
		clone := *a
		r.byID[a.ID] = &clone
	}
	return r
}

func (r *stubAssetRepo) quantity(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Quantity
}

func (r *stubAssetRepo) Create(_ context.Context, a *domain.Asset) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("asset-%d", r.seq)
	clone := *a
	clone.ID = id
	r.byID[id] = &clone
	return id, nil
}

func (r *stubAssetRepo) FindByID(_ context.Context, id string) (*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAssetRepo) List(_ context.Context, f ports.AssetListFilter) ([]*domain.Asset, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Asset
	for _, a := range r.byID {
		if f.Type != "" && string(a.Type) != f.Type {
			continue
		}
		if f.Search != "" && !strings.Contains(a.Name, strings.ToLower(f.Search)) {
			continue
		}
		clone := *a
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

func (r *stubAssetRepo) Update(_ context.Context, id string, p domain.AssetPatch) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return false, false, nil
	}
	before := *a
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Quantity != nil {
		a.Quantity = *p.Quantity
	}
	if p.Image != nil {
		a.Image = *p.Image
	}
	return true, before != *a, nil
}

func (r *stubAssetRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *stubAssetRepo) CountByType(_ context.Context) ([]domain.TypeCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range r.byID {
		counts[string(a.Type)]++
	}
	var out []domain.TypeCount
	for t, n := range counts {
		out = append(out, domain.TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// Adjust mirrors the guarded $inc of the Mongo ledger.
func (r *stubAssetRepo) Adjust(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adjustErr != nil {
		return r.adjustErr
	}
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAssetNotFound
	}
	if delta < 0 && a.Quantity < -delta {
		return domain.ErrInsufficientStock
	}
	a.Quantity += delta
	r.adjusts++
	return nil
}

type stubRequestRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.AssetRequest
	seq  int
}

func newStubRequestRepo(reqs ...*domain.AssetRequest) *stubRequestRepo {
	r := &stubRequestRepo{byID: make(map[string]*domain.AssetRequest)}
	for _, req := range reqs {
		clone := *req
		r.byID[req.ID] = &clone
	}
	return r
}

func (r *stubRequestRepo) status(id string) domain.RequestStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.AssetRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("req-%d", r.seq)
	clone := *req
	clone.ID = id
	r.byID[id] = &clone
	return id, nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.AssetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context, f ports.RequestListFilter) ([]*domain.AssetRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.AssetRequest
	for _, req := range r.byID {
		if f.Email != "" && req.Email != f.Email {
			continue
		}
		clone := *req
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

// Transition mirrors the conditional FindOneAndUpdate.
func (r *stubRequestRepo) Transition(_ context.Context, id string, t ports.Transition) (*domain.AssetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok || req.Status != t.From {
		return nil, domain.ErrStatusConflict
	}
	req.Status = t.To
	at := t.At
	switch t.To {
	case domain.StatusApproved:
		if t.From == domain.StatusReturned {
			req.ReturnedAt = nil
		} else {
			req.ApprovalDate = &at
			if t.Quantity > 0 {
				req.ApprovedQuantity = t.Quantity
			}
		}
	case domain.StatusReturned:
		req.ReturnedAt = &at
	case domain.StatusPending:
		req.ApprovalDate = nil
		req.ApprovedQuantity = 0
	}
	req.StatusHistory = append(req.StatusHistory, domain.StatusHistoryEntry{Status: t.To, Timestamp: at, Actor: t.Actor})
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *stubRequestRepo) TopRequested(_ context.Context, n int) ([]domain.NameCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, req := range r.byID {
		counts[req.AssetName]++
	}
	var out []domain.NameCount
	for name, c := range counts {
		out = append(out, domain.NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type stubAffiliationRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Affiliation
	seq       int
	ensureErr error
	// countDelay widens the window between counting and inserting.
	countDelay time.Duration
}

func newStubAffiliationRepo() *stubAffiliationRepo {
	return &stubAffiliationRepo{byID: make(map[string]*domain.Affiliation)}
}

func (r *stubAffiliationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *stubAffiliationRepo) Ensure(_ context.Context, a *domain.Affiliation) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensureErr != nil {
		return "", false, r.ensureErr
	}
	for id, existing := range r.byID {
		if existing.EmployeeID == a.EmployeeID && domain.CompanyKey(existing.CompanyName) == domain.CompanyKey(a.CompanyName) {
			return id, false, nil
		}
	}
	r.seq++
	id := fmt.Sprintf("aff-%d", r.seq)
	clone := *a
	clone.ID = id
	r.byID[id] = &clone
	return id, true, nil
}

func (r *stubAffiliationRepo) CountActive(_ context.Context, company string) (int64, error) {
	r.mu.Lock()
	var n int64
	for _, a := range r.byID {
		if a.Status == domain.AffiliationActive && domain.CompanyKey(a.CompanyName) == domain.CompanyKey(company) {
			n++
		}
	}
	r.mu.Unlock()
	if r.countDelay > 0 {
		time.Sleep(r.countDelay)
	}
	return n, nil
}

func (r *stubAffiliationRepo) ListByCompany(_ context.Context, f ports.AffiliationListFilter) ([]*domain.Affiliation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Affiliation
	for _, a := range r.byID {
		if domain.CompanyKey(a.CompanyName) != domain.CompanyKey(f.CompanyName) {
			continue
		}
		if f.Search != "" && !strings.Contains(a.EmployeeEmail, strings.ToLower(f.Search)) {
			continue
		}
		clone := *a
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

func (r *stubAffiliationRepo) DeleteForCompany(_ context.Context, id, company string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || domain.CompanyKey(a.CompanyName) != domain.CompanyKey(company) {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *stubAffiliationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// mutexLocker is a process-local Locker keyed like the Redis one.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	var once sync.Once
	return func() { once.Do(m.Unlock) }, nil
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, domain.ErrLockBusy
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.RequestEvent
}

func (a *recordingAuditor) Enqueue(e domain.RequestEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func paginate[T any](items []T, p ports.PageRequest) []T {
	p = p.Normalize()
	start := int(p.Skip())
	if start >= len(items) {
		return nil
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
