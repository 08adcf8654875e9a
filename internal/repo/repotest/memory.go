// Package repotest provides an in-memory repo.Repository for handler tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"Sixfoot/internal/calc/clearance"
	"Sixfoot/internal/repo"
)

var ErrDuplicateLogin = errors.New("duplicate login")

type user struct {
	id    int
	email string
	hash  string
}

type Memory struct {
	mu     sync.Mutex
	users  map[string]user
	calcs  map[int]repo.Calculation
	nextID int
	now    func() time.Time
}

func NewMemory() *Memory {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	return &Memory{
		users: make(map[string]user),
		calcs: make(map[int]repo.Calculation),
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		},
	}
}

func (m *Memory) id() int {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrDuplicateLogin
	}
	u := user{id: m.id(), email: email, hash: password}
	m.users[login] = u
	return u.id, nil
}

func (m *Memory) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return 0, "", repo.ErrNotFound
	}
	return u.id, u.hash, nil
}

func (m *Memory) SaveCalculation(_ context.Context, userID int, in clearance.Input, res clearance.Result) (repo.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := repo.Calculation{ID: m.id(), UserID: userID, Input: in, Result: res, CreatedAt: m.now()}
	m.calcs[c.ID] = c
	return c, nil
}

func (m *Memory) ListCalculations(_ context.Context, userID, limit int) ([]repo.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repo.Calculation{}
	for _, c := range m.calcs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetCalculation(_ context.Context, userID, id int) (repo.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calcs[id]
	if !ok || c.UserID != userID {
		return repo.Calculation{}, repo.ErrNotFound
	}
	return c, nil
}

func (m *Memory) DeleteCalculation(_ context.Context, userID, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calcs[id]
	if !ok || c.UserID != userID {
		return repo.ErrNotFound
	}
	delete(m.calcs, id)
	return nil
}
