// Package memory provides map-backed repositories for tests and for running
// the service without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
)

// Store implements core.PropertyRepository and core.TxRunner directly and
// core.AuditRepository through Audits. Stored values are copied on the way in
// and out. All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	audits     map[string]*core.BatchAudit
	properties map[int64]*core.Property
	nextID     int64

	// FailSaveAll, when set, is returned by SaveAll without storing anything.
	FailSaveAll error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		audits:     make(map[string]*core.BatchAudit),
		properties: make(map[int64]*core.Property),
		nextID:     1,
	}
}

var (
	_ core.AuditRepository    = (*auditRepo)(nil)
	_ core.PropertyRepository = (*Store)(nil)
	_ core.TxRunner           = (*Store)(nil)
	_ core.TxRunner           = (*auditRepo)(nil)
	_ core.AuditRepository    = (*txAudits)(nil)
	_ core.PropertyRepository = (*txStore)(nil)
)

// Audits returns the store as an AuditRepository.
func (s *Store) Audits() core.AuditRepository { return (*auditRepo)(s) }

// Properties returns the store as a PropertyRepository.
func (s *Store) Properties() core.PropertyRepository { return s }

// InTx runs fn against a transaction view of the store. Writes made through
// the view are staged and applied only if fn succeeds; writes made elsewhere
// while fn runs are left untouched. Ids are drawn from the shared counter, so
// a rolled-back transaction leaves a gap like a database sequence would.
func (s *Store) InTx(ctx context.Context, fn func(core.AuditRepository, core.PropertyRepository) error) error {
	tx := &txStore{
		parent:     s,
		audits:     make(map[string]*core.BatchAudit),
		properties: make(map[int64]*core.Property),
	}
	if err := fn((*txAudits)(tx), tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tx.audits {
		s.audits[k] = v
	}
	for k, v := range tx.properties {
		s.properties[k] = v
	}
	return nil
}

// auditRepo exposes the audit methods of Store under the repository names.
type auditRepo Store

func (r *auditRepo) InTx(ctx context.Context, fn func(core.AuditRepository, core.PropertyRepository) error) error {
	return (*Store)(r).InTx(ctx, fn)
}

func (r *auditRepo) Save(ctx context.Context, audit *core.BatchAudit) error {
	return (*Store)(r).SaveAudit(ctx, audit)
}

func (r *auditRepo) FindByID(ctx context.Context, id string) (*core.BatchAudit, error) {
	return (*Store)(r).FindAuditByID(ctx, id)
}

func (r *auditRepo) FindByStatus(ctx context.Context, state core.AuditState) ([]*core.BatchAudit, error) {
	return (*Store)(r).FindAuditsByStatus(ctx, state)
}

// SaveAudit inserts or replaces an audit.
func (s *Store) SaveAudit(_ context.Context, audit *core.BatchAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits[audit.ID] = copyAudit(audit)
	return nil
}

// FindAuditByID returns core.ErrUploadNotFound for an unknown id.
func (s *Store) FindAuditByID(_ context.Context, id string) (*core.BatchAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.audits[id]
	if !ok {
		return nil, core.ErrUploadNotFound
	}
	return copyAudit(a), nil
}

// FindAuditsByStatus returns audits in state, oldest first.
func (s *Store) FindAuditsByStatus(_ context.Context, state core.AuditState) ([]*core.BatchAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*core.BatchAudit{}
	for _, a := range s.audits {
		if a.State == state {
			out = append(out, copyAudit(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Save inserts or replaces a property, assigning an id when it has none.
func (s *Store) Save(_ context.Context, p *core.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(p)
	return nil
}

// SaveAll stores every property, assigning ids where missing.
func (s *Store) SaveAll(_ context.Context, props []*core.Property) error {
	if s.FailSaveAll != nil {
		return s.FailSaveAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range props {
		s.put(p)
	}
	return nil
}

func (s *Store) put(p *core.Property) {
	s.assignID(p)
	s.properties[*p.ID] = copyProperty(p)
}

// assignID gives p the next id if it has none and keeps the counter ahead of
// every id seen. The caller holds s.mu.
func (s *Store) assignID(p *core.Property) {
	if p.ID == nil {
		id := s.nextID
		p.ID = &id
	}
	if *p.ID >= s.nextID {
		s.nextID = *p.ID + 1
	}
}

// FindByID returns core.ErrPropertyNotFound for an unknown id.
func (s *Store) FindByID(_ context.Context, id int64) (*core.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, core.ErrPropertyNotFound
	}
	return copyProperty(p), nil
}

// FindByStatus returns properties with the given status, ordered by id.
func (s *Store) FindByStatus(_ context.Context, status string) ([]*core.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*core.Property{}
	for _, p := range s.properties {
		if p.Status == status {
			out = append(out, copyProperty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

// PropertyCount returns the number of stored properties.
func (s *Store) PropertyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.properties)
}

func copyAudit(a *core.BatchAudit) *core.BatchAudit {
	c := *a
	c.Outcomes = make(map[int]core.RowOutcome, len(a.Outcomes))
	for k, v := range a.Outcomes {
		c.Outcomes[k] = v
	}
	return &c
}

func copyProperty(p *core.Property) *core.Property {
	c := *p
	c.Amenities = append([]string{}, p.Amenities...)
	return &c
}

// txStore stages the writes of one InTx call. Reads see staged values first
// and fall through to the parent store.
type txStore struct {
	parent     *Store
	mu         sync.Mutex
	audits     map[string]*core.BatchAudit
	properties map[int64]*core.Property
}

func (t *txStore) Save(ctx context.Context, p *core.Property) error {
	return t.SaveAll(ctx, []*core.Property{p})
}

func (t *txStore) SaveAll(_ context.Context, props []*core.Property) error {
	if t.parent.FailSaveAll != nil {
		return t.parent.FailSaveAll
	}

	t.parent.mu.Lock()
	for _, p := range props {
		t.parent.assignID(p)
	}
	t.parent.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range props {
		t.properties[*p.ID] = copyProperty(p)
	}
	return nil
}

func (t *txStore) FindByID(ctx context.Context, id int64) (*core.Property, error) {
	t.mu.Lock()
	p, ok := t.properties[id]
	t.mu.Unlock()
	if ok {
		return copyProperty(p), nil
	}
	return t.parent.FindByID(ctx, id)
}

func (t *txStore) FindByStatus(ctx context.Context, status string) ([]*core.Property, error) {
	committed, err := t.parent.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	out := []*core.Property{}
	for _, p := range committed {
		if _, staged := t.properties[*p.ID]; !staged {
			out = append(out, p)
		}
	}
	for _, p := range t.properties {
		if p.Status == status {
			out = append(out, copyProperty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

// txAudits exposes the audit side of a txStore.
type txAudits txStore

func (t *txAudits) Save(_ context.Context, audit *core.BatchAudit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.audits[audit.ID] = copyAudit(audit)
	return nil
}

func (t *txAudits) FindByID(ctx context.Context, id string) (*core.BatchAudit, error) {
	t.mu.Lock()
	a, ok := t.audits[id]
	t.mu.Unlock()
	if ok {
		return copyAudit(a), nil
	}
	return t.parent.FindAuditByID(ctx, id)
}

func (t *txAudits) FindByStatus(ctx context.Context, state core.AuditState) ([]*core.BatchAudit, error) {
	committed, err := t.parent.FindAuditsByStatus(ctx, state)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	out := []*core.BatchAudit{}
	for _, a := range committed {
		if _, staged := t.audits[a.ID]; !staged {
			out = append(out, a)
		}
	}
	for _, a := range t.audits {
		if a.State == state {
			out = append(out, copyAudit(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
