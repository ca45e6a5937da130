package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diarynotes/diary-go/internal/model"
	"github.com/diarynotes/diary-go/internal/repository"
	"github.com/google/uuid"
)

// MaxPageSize caps the limit accepted by List.
const MaxPageSize = 100

var (
	ErrTitleRequired = errors.New("title is required")
	ErrNoteNotFound  = errors.New("note not found")
)

// NoteStore is the note storage used by NoteService. Every lookup is scoped to a profile.
type NoteStore interface {
	Insert(ctx context.Context, n *model.Note) error
	Update(ctx context.Context, n *model.Note) error
	GetByID(ctx context.Context, profileID, noteID string) (*model.Note, error)
	Delete(ctx context.Context, profileID, noteID string) error
	List(ctx context.Context, profileID string, limit, start int) ([]model.Note, error)
	Count(ctx context.Context, profileID string) (int, error)
}

// NoteService handles note business logic.
type NoteService struct {
	repo NoteStore
	now  func() time.Time
}

// NewNoteService creates a new NoteService. A nil now uses time.Now.
func NewNoteService(repo NoteStore, now func() time.Time) *NoteService {
	if now == nil {
		now = time.Now
	}
	return &NoteService{repo: repo, now: now}
}

// Create stores a new note for profileID.
func (s *NoteService) Create(ctx context.Context, profileID string, req model.NoteRequest) (model.Note, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Note{}, ErrTitleRequired
	}

	ts := s.now().UnixMilli()
	note := model.Note{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ImageID:     optional(req.ImageID),
		ProfileID:   &profileID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.repo.Insert(ctx, &note); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// Update replaces the content of an existing note and returns the stored result.
func (s *NoteService) Update(ctx context.Context, profileID, noteID string, req model.NoteRequest) (model.Note, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Note{}, ErrTitleRequired
	}

	note := model.Note{
		ID:          noteID,
		Title:       req.Title,
		Description: req.Description,
		ImageID:     optional(req.ImageID),
		ProfileID:   &profileID,
		UpdatedAt:   s.now().UnixMilli(),
	}
	if err := s.repo.Update(ctx, &note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return model.Note{}, ErrNoteNotFound
		}
		return model.Note{}, err
	}
	return s.Get(ctx, profileID, noteID)
}

// Get returns a single note of profileID.
func (s *NoteService) Get(ctx context.Context, profileID, noteID string) (model.Note, error) {
	note, err := s.repo.GetByID(ctx, profileID, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return model.Note{}, ErrNoteNotFound
		}
		return model.Note{}, err
	}
	return *note, nil
}

// Delete removes a note of profileID.
func (s *NoteService) Delete(ctx context.Context, profileID, noteID string) error {
	err := s.repo.Delete(ctx, profileID, noteID)
	if errors.Is(err, repository.ErrNoteNotFound) {
		return ErrNoteNotFound
	}
	return err
}

// List returns one page of notes, newest first, with the pagination fields the client reads.
func (s *NoteService) List(ctx context.Context, profileID string, limit, start int) (model.NoteListData, error) {
	limit = clampLimit(limit)
	if start < 0 {
		start = 0
	}

	total, err := s.repo.Count(ctx, profileID)
	if err != nil {
		return model.NoteListData{}, err
	}

	notes, err := s.repo.List(ctx, profileID, limit, start)
	if err != nil {
		return model.NoteListData{}, err
	}
	if notes == nil {
		notes = []model.Note{}
	}

	return model.NoteListData{
		Results: notes,
		Limit:   limit,
		Start:   start,
		Total:   total,
		Size:    len(notes),
	}, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return model.DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
