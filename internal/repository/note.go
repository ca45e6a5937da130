package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/diarynotes/diary-go/internal/model"
)

var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `id, profile_id, title, description, image_id, image_url, created_at, updated_at`

// NoteRepository handles note persistence in MySQL. Every query is scoped to a profile.
type NoteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Insert stores a new note. ID and timestamps are set by the caller.
func (r *NoteRepository) Insert(ctx context.Context, n *model.Note) error {
	query := `INSERT INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, deref(n.ProfileID), n.Title, n.Description,
		nullPtr(n.ImageID), nullPtr(n.ImageURL), n.CreatedAt, n.UpdatedAt,
	)
	return err
}

// Update overwrites title, description, image and updated_at of an existing note.
func (r *NoteRepository) Update(ctx context.Context, n *model.Note) error {
	query := `UPDATE notes SET title = ?, description = ?, image_id = ?, updated_at = ?
		WHERE profile_id = ? AND id = ?`

	result, err := r.db.ExecContext(ctx, query,
		n.Title, n.Description, nullPtr(n.ImageID), n.UpdatedAt, deref(n.ProfileID), n.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// GetByID retrieves a note of a profile.
func (r *NoteRepository) GetByID(ctx context.Context, profileID, noteID string) (*model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE profile_id = ? AND id = ?`

	n, err := scanNote(r.db.QueryRowContext(ctx, query, profileID, noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return n, nil
}

// Delete removes a note of a profile.
func (r *NoteRepository) Delete(ctx context.Context, profileID, noteID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE profile_id = ? AND id = ?`, profileID, noteID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// List returns up to limit notes of a profile, newest first, skipping start.
func (r *NoteRepository) List(ctx context.Context, profileID string, limit, start int) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE profile_id = ?
		ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, profileID, limit, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// Count returns the number of notes of a profile.
func (r *NoteRepository) Count(ctx context.Context, profileID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE profile_id = ?`, profileID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var (
		n         model.Note
		profileID string
		imageID   sql.NullString
		imageURL  sql.NullString
	)
	if err := row.Scan(&n.ID, &profileID, &n.Title, &n.Description, &imageID, &imageURL, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.ProfileID = &profileID
	if imageID.Valid {
		n.ImageID = &imageID.String
	}
	if imageURL.Valid {
		n.ImageURL = &imageURL.String
	}
	return &n, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
