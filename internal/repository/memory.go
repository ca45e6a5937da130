package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/diarynotes/diary-go/internal/model"
)

// MemoryUserStore keeps accounts in process memory. Together with MemoryNoteStore it
// serves local development without MySQL and backs the end-to-end tests.
type MemoryUserStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{accounts: make(map[string]model.Account)}
}

// MemoryNoteStore keeps notes in process memory.
type MemoryNoteStore struct {
	mu    sync.RWMutex
	notes map[string]model.Note
}

// NewMemoryNoteStore creates an empty MemoryNoteStore.
func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{notes: make(map[string]model.Note)}
}

func (m *MemoryUserStore) Create(ctx context.Context, acct *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if acct.User.Email != "" && existing.User.Email == acct.User.Email {
			return ErrDuplicateEmail
		}
		if acct.SignupCode != "" && existing.SignupCode == acct.SignupCode {
			return ErrDuplicateEmail
		}
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	m.accounts[acct.User.ID] = *acct
	return nil
}

func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return m.findAccount(func(a model.Account) bool { return email != "" && a.User.Email == email })
}

func (m *MemoryUserStore) GetBySignupCode(ctx context.Context, code string) (*model.Account, error) {
	return m.findAccount(func(a model.Account) bool { return code != "" && a.SignupCode == code })
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return m.findAccount(func(a model.Account) bool { return a.User.ID == id })
}

func (m *MemoryUserStore) findAccount(match func(model.Account) bool) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if match(a) {
			acct := a
			return &acct, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryNoteStore) Insert(ctx context.Context, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[n.ID] = *n
	return nil
}

func (m *MemoryNoteStore) Update(ctx context.Context, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.notes[n.ID]
	if !ok || deref(existing.ProfileID) != deref(n.ProfileID) {
		return ErrNoteNotFound
	}
	existing.Title = n.Title
	existing.Description = n.Description
	existing.ImageID = n.ImageID
	existing.UpdatedAt = n.UpdatedAt
	m.notes[n.ID] = existing
	return nil
}

func (m *MemoryNoteStore) GetByID(ctx context.Context, profileID, noteID string) (*model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notes[noteID]
	if !ok || deref(n.ProfileID) != profileID {
		return nil, ErrNoteNotFound
	}
	return &n, nil
}

func (m *MemoryNoteStore) Delete(ctx context.Context, profileID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[noteID]
	if !ok || deref(n.ProfileID) != profileID {
		return ErrNoteNotFound
	}
	delete(m.notes, noteID)
	return nil
}

func (m *MemoryNoteStore) List(ctx context.Context, profileID string, limit, start int) ([]model.Note, error) {
	owned := m.owned(profileID)
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt != owned[j].CreatedAt {
			return owned[i].CreatedAt > owned[j].CreatedAt
		}
		return owned[i].ID < owned[j].ID
	})

	if start >= len(owned) {
		return []model.Note{}, nil
	}
	end := start + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], nil
}

func (m *MemoryNoteStore) Count(ctx context.Context, profileID string) (int, error) {
	return len(m.owned(profileID)), nil
}

func (m *MemoryNoteStore) owned(profileID string) []model.Note {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Note
	for _, n := range m.notes {
		if deref(n.ProfileID) == profileID {
			out = append(out, n)
		}
	}
	return out
}
