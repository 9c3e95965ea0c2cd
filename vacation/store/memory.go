// Package store provides the in-memory Store implementation.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/realcore/vacation-hub/vacation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (tests, dev, memory-resident mode)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	people      map[string]vacation.Person
	departments map[string]vacation.Department
	requests    map[string]vacation.LeaveRequest
	entries     map[string][]vacation.LedgerEntry
	settings    vacation.Settings
}

func NewMemory() *Memory {
	return &Memory{
		people:      make(map[string]vacation.Person),
		departments: make(map[string]vacation.Department),
		requests:    make(map[string]vacation.LeaveRequest),
		entries:     make(map[string][]vacation.LedgerEntry),
		settings:    vacation.DefaultSettings(),
	}
}

// =============================================================================
// PEOPLE
// =============================================================================

func (m *Memory) SavePerson(_ context.Context, p vacation.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ID] = p
	return nil
}

func (m *Memory) GetPerson(_ context.Context, id string) (*vacation.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPersonLocked(id)
}

func (m *Memory) getPersonLocked(id string) (*vacation.Person, error) {
	p, ok := m.people[id]
	if !ok {
		return nil, vacation.ErrPersonNotFound
	}
	return &p, nil
}

func (m *Memory) ListPeople(_ context.Context) ([]vacation.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPeopleLocked(), nil
}

func (m *Memory) listPeopleLocked() []vacation.Person {
	result := make([]vacation.Person, 0, len(m.people))
	for _, p := range m.people {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *Memory) DeletePerson(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.people[id]; !ok {
		return vacation.ErrPersonNotFound
	}
	delete(m.people, id)
	return nil
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (m *Memory) SaveDepartment(_ context.Context, d vacation.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = d
	return nil
}

func (m *Memory) GetDepartment(_ context.Context, id string) (*vacation.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[id]
	if !ok {
		return nil, vacation.ErrDepartmentNotFound
	}
	return &d, nil
}

func (m *Memory) ListDepartments(_ context.Context) ([]vacation.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]vacation.Department, 0, len(m.departments))
	for _, d := range m.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) SaveRequest(_ context.Context, r vacation.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (*vacation.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	return &r, nil
}

func (m *Memory) ListRequests(_ context.Context) ([]vacation.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]vacation.LeaveRequest, 0, len(m.requests))
	for _, r := range m.requests {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// LEDGER ENTRIES - Append-only
// =============================================================================

func (m *Memory) AppendEntry(_ context.Context, e vacation.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.PersonID] = append(m.entries[e.PersonID], e)
	return nil
}

func (m *Memory) EntriesFor(_ context.Context, personID string) ([]vacation.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]vacation.LedgerEntry, len(m.entries[personID]))
	copy(result, m.entries[personID])
	return result, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSettings(_ context.Context) (*vacation.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.settings
	return &s, nil
}

func (m *Memory) SaveSettings(_ context.Context, s vacation.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback on error
// =============================================================================

// WithTx executes fn against a view of the store under the write lock.
// On error the pre-transaction snapshot is restored, so partial writes
// are never observable.
func (m *Memory) WithTx(ctx context.Context, fn func(vacation.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	view := &txView{parent: m}

	if err := fn(view); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people = make(map[string]vacation.Person)
	m.departments = make(map[string]vacation.Department)
	m.requests = make(map[string]vacation.LeaveRequest)
	m.entries = make(map[string][]vacation.LedgerEntry)
	m.settings = vacation.DefaultSettings()
	return nil
}

type memorySnapshot struct {
	people      map[string]vacation.Person
	departments map[string]vacation.Department
	requests    map[string]vacation.LeaveRequest
	entries     map[string][]vacation.LedgerEntry
	settings    vacation.Settings
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		people:      make(map[string]vacation.Person, len(m.people)),
		departments: make(map[string]vacation.Department, len(m.departments)),
		requests:    make(map[string]vacation.LeaveRequest, len(m.requests)),
		entries:     make(map[string][]vacation.LedgerEntry, len(m.entries)),
		settings:    m.settings,
	}
	for k, v := range m.people {
		s.people[k] = v
	}
	for k, v := range m.departments {
		s.departments[k] = v
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	for k, v := range m.entries {
		s.entries[k] = append([]vacation.LedgerEntry{}, v...)
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.people = s.people
	m.departments = s.departments
	m.requests = s.requests
	m.entries = s.entries
	m.settings = s.settings
}

// txView runs against the parent while the parent's lock is already held.
// Its methods must not re-lock, so they touch the maps directly.
type txView struct {
	parent *Memory
}

func (v *txView) SavePerson(_ context.Context, p vacation.Person) error {
	v.parent.people[p.ID] = p
	return nil
}

func (v *txView) GetPerson(_ context.Context, id string) (*vacation.Person, error) {
	return v.parent.getPersonLocked(id)
}

func (v *txView) ListPeople(_ context.Context) ([]vacation.Person, error) {
	return v.parent.listPeopleLocked(), nil
}

func (v *txView) DeletePerson(_ context.Context, id string) error {
	if _, ok := v.parent.people[id]; !ok {
		return vacation.ErrPersonNotFound
	}
	delete(v.parent.people, id)
	return nil
}

func (v *txView) SaveDepartment(_ context.Context, d vacation.Department) error {
	v.parent.departments[d.ID] = d
	return nil
}

func (v *txView) GetDepartment(_ context.Context, id string) (*vacation.Department, error) {
	d, ok := v.parent.departments[id]
	if !ok {
		return nil, vacation.ErrDepartmentNotFound
	}
	return &d, nil
}

func (v *txView) ListDepartments(_ context.Context) ([]vacation.Department, error) {
	result := make([]vacation.Department, 0, len(v.parent.departments))
	for _, d := range v.parent.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (v *txView) SaveRequest(_ context.Context, r vacation.LeaveRequest) error {
	v.parent.requests[r.ID] = r
	return nil
}

func (v *txView) GetRequest(_ context.Context, id string) (*vacation.LeaveRequest, error) {
	r, ok := v.parent.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	return &r, nil
}

func (v *txView) ListRequests(_ context.Context) ([]vacation.LeaveRequest, error) {
	result := make([]vacation.LeaveRequest, 0, len(v.parent.requests))
	for _, r := range v.parent.requests {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (v *txView) AppendEntry(_ context.Context, e vacation.LedgerEntry) error {
	v.parent.entries[e.PersonID] = append(v.parent.entries[e.PersonID], e)
	return nil
}

func (v *txView) EntriesFor(_ context.Context, personID string) ([]vacation.LedgerEntry, error) {
	result := make([]vacation.LedgerEntry, len(v.parent.entries[personID]))
	copy(result, v.parent.entries[personID])
	return result, nil
}

func (v *txView) GetSettings(_ context.Context) (*vacation.Settings, error) {
	s := v.parent.settings
	return &s, nil
}

func (v *txView) SaveSettings(_ context.Context, s vacation.Settings) error {
	v.parent.settings = s
	return nil
}

// WithTx on a view is a no-op wrapper: the outer transaction already
// provides atomicity.
func (v *txView) WithTx(_ context.Context, fn func(vacation.Store) error) error {
	return fn(v)
}

func (v *txView) Reset(_ context.Context) error {
	v.parent.people = make(map[string]vacation.Person)
	v.parent.departments = make(map[string]vacation.Department)
	v.parent.requests = make(map[string]vacation.LeaveRequest)
	v.parent.entries = make(map[string][]vacation.LedgerEntry)
	v.parent.settings = vacation.DefaultSettings()
	return nil
}
