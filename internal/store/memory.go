package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finsight-ai/finsight/internal/goal"
	"github.com/finsight-ai/finsight/internal/statement"
)

// MemoryStore implements Store with in-memory maps. It backs local
// development and tests; ad-hoc SQL queries are not supported.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[int64]*User
	usersByEmail map[string]*User
	statements   map[int64]*statement.Statement
	rows         map[int64][]statement.Row // keyed by statement ID
	goals        map[int64]*goal.Goal

	nextUserID      int64
	nextStatementID int64
	nextRowID       int64
	nextGoalID      int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*User),
		usersByEmail: make(map[string]*User),
		statements:   make(map[int64]*statement.Statement),
		rows:         make(map[int64][]statement.Row),
		goals:        make(map[int64]*goal.Goal),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateUser(_ context.Context, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := m.usersByEmail[key]; exists {
		return nil, ErrDuplicateEmail
	}
	m.nextUserID++
	u := &User{
		ID:           m.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.usersByEmail[key] = u
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) GetUser(_ context.Context, userID int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) UpsertStatement(_ context.Context, st *statement.Statement) (*statement.Statement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.statements {
		if existing.UserID == st.UserID && existing.SHA256 == st.SHA256 {
			existing.OriginalFilename = st.OriginalFilename
			existing.Kind = st.Kind
			existing.UploadedAt = time.Now()
			out := *existing
			return &out, nil
		}
	}

	m.nextStatementID++
	out := *st
	out.ID = m.nextStatementID
	out.UploadedAt = time.Now()
	m.statements[out.ID] = &out

	copied := out
	return &copied, nil
}

func (m *MemoryStore) GetStatementByHash(_ context.Context, userID int64, sha256 string) (*statement.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, st := range m.statements {
		if st.UserID == userID && st.SHA256 == sha256 {
			out := *st
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CountStatementRows(_ context.Context, userID, statementID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int
	for _, r := range m.rows[statementID] {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) WriteRows(_ context.Context, rows []statement.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range rows {
		m.nextRowID++
		r.ID = m.nextRowID
		m.rows[r.StatementID] = append(m.rows[r.StatementID], r)
	}
	return nil
}

// RowsForStatement returns a copy of the stored rows, used by tests and
// the memory-backed development server.
func (m *MemoryStore) RowsForStatement(statementID int64) []statement.Row {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]statement.Row, len(m.rows[statementID]))
	copy(out, m.rows[statementID])
	return out
}

func (m *MemoryStore) CreateGoal(_ context.Context, g *goal.Goal) (*goal.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextGoalID++
	out := *g
	out.ID = m.nextGoalID
	out.CreatedAt = time.Now()
	m.goals[out.ID] = &out

	copied := out
	return &copied, nil
}

func (m *MemoryStore) ListGoals(_ context.Context, userID int64) ([]*goal.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*goal.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			copied := *g
			out = append(out, &copied)
		}
	}
	sortGoals(out)
	return out, nil
}

func (m *MemoryStore) UpdateGoal(_ context.Context, g *goal.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return ErrNotFound
	}
	updated := *g
	updated.CreatedAt = existing.CreatedAt
	m.goals[g.ID] = &updated
	return nil
}

func (m *MemoryStore) DeleteGoal(_ context.Context, userID, goalID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.goals[goalID]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	delete(m.goals, goalID)
	return nil
}

func (m *MemoryStore) RunUserQuery(context.Context, string, int64) (*QueryResult, error) {
	return nil, ErrQueryUnsupported
}

func sortGoals(goals []*goal.Goal) {
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
}
