package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/diarynotes/diary-go/internal/dategroup"
	"github.com/diarynotes/diary-go/internal/model"
)

var (
	ErrSessionClosed = errors.New("notes session closed")
)

// Status is the loading state of a NotesSession.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Strategy says how a successful mutation reaches the local note set.
type Strategy int

const (
	// ServerConfirmed leaves the local set untouched; the caller refreshes to see the change.
	ServerConfirmed Strategy = iota
	// AppliedLocally patches the local set as soon as the server accepts the change.
	AppliedLocally
)

// Mutation strategies per operation.
const (
	CreateStrategy = ServerConfirmed
	UpdateStrategy = ServerConfirmed
	DeleteStrategy = AppliedLocally
)

// State is a snapshot of a NotesSession. Snapshots never share memory with the session.
type State struct {
	Status Status
	// Notes in the order they were fetched.
	Notes  []model.Note
	Groups []dategroup.Group
	Cursor model.PageCursor
	// TotalNotes is the server-side count, adjusted for local deletes.
	TotalNotes int
	// Err is the last failure. It survives until ClearError or the next success.
	Err error
}

// HasMore reports whether LoadMore would fetch another page.
func (s State) HasMore() bool {
	return s.Cursor.HasMore()
}

// NotesAPI is the notes part of the API client.
type NotesAPI interface {
	List(ctx context.Context, limit, start int) (model.NotePage, error)
	Create(ctx context.Context, title, description, imageID string) (model.Note, error)
	Update(ctx context.Context, noteID, title, description, imageID string) (model.Note, error)
	Get(ctx context.Context, noteID string) (model.Note, error)
	Delete(ctx context.Context, noteID string) error
}

// NotesSession owns one collection of notes for the presentation layer.
//
// Operations may overlap; each completion applies its own result, so the latest
// completion wins. All requests run under the session's lifetime: Close cancels
// them and results that arrive afterwards are dropped.
type NotesSession struct {
	api      NotesAPI
	log      *slog.Logger
	now      func() time.Time
	pageSize int
	onChange func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	inflight int
	closed   bool
	seq      uint64

	// notifyMu serializes observer calls; delivered is the seq of the last snapshot handed out.
	notifyMu  sync.Mutex
	delivered uint64
}

// NotesOption configures a NotesSession.
type NotesOption func(*NotesSession)

// WithOnChange registers an observer called with a snapshot after every state change.
// Calls are serialized and arrive in the order the changes were applied; a snapshot
// older than one already delivered is dropped. fn may read State but must not start
// another operation on the session before returning.
func WithOnChange(fn func(State)) NotesOption {
	return func(s *NotesSession) { s.onChange = fn }
}

// WithPageSize sets the number of notes requested per page.
func WithPageSize(n int) NotesOption {
	return func(s *NotesSession) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithClock sets the clock used to label date groups.
func WithClock(now func() time.Time) NotesOption {
	return func(s *NotesSession) { s.now = now }
}

// WithNotesLogger sets the logger.
func WithNotesLogger(log *slog.Logger) NotesOption {
	return func(s *NotesSession) { s.log = log }
}

// NewNotesSession creates an idle session over api.
func NewNotesSession(api NotesAPI, opts ...NotesOption) *NotesSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &NotesSession{
		api:      api,
		log:      slog.Default(),
		now:      time.Now,
		pageSize: model.DefaultPageSize,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = State{
		Status: StatusIdle,
		Notes:  []model.Note{},
		Groups: []dategroup.Group{},
		Cursor: model.PageCursor{Limit: s.pageSize},
	}
	return s
}

// State returns a snapshot of the session.
func (s *NotesSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Refresh fetches the first page and replaces the local notes with it.
func (s *NotesSession) Refresh(ctx context.Context) error {
	if err := s.begin(nil); err != nil {
		return err
	}

	ctx, done := s.bind(ctx)
	defer done()

	page, err := s.api.List(ctx, s.pageSize, 0)
	if err != nil {
		return s.fail("refresh", err)
	}

	return s.finish(func(st *State) {
		st.Notes = dedupe(nil, page.Notes)
		st.Cursor = page.Cursor
		st.TotalNotes = page.Cursor.Total
	})
}

// LoadMore fetches the page after the notes already held and appends it.
// It does nothing while a request is in flight or when the server has no more notes.
func (s *NotesSession) LoadMore(ctx context.Context) error {
	var start int
	skip := false
	err := s.begin(func(st *State) bool {
		if s.inflight > 0 || !st.Cursor.HasMore() {
			skip = true
			return false
		}
		start = len(st.Notes)
		return true
	})
	if err != nil || skip {
		return err
	}

	ctx, done := s.bind(ctx)
	defer done()

	page, err := s.api.List(ctx, s.pageSize, start)
	if err != nil {
		return s.fail("load more", err)
	}

	return s.finish(func(st *State) {
		st.Notes = dedupe(st.Notes, page.Notes)
		st.Cursor = page.Cursor
		st.TotalNotes = page.Cursor.Total
	})
}

// Create saves a new note. The local notes are not touched; refresh to see it.
func (s *NotesSession) Create(ctx context.Context, title, description, imageID string) (model.Note, error) {
	if err := validateNote(title, description); err != nil {
		return model.Note{}, err
	}

	var note model.Note
	err := s.mutate(ctx, "create note", CreateStrategy, func(ctx context.Context) error {
		var err error
		note, err = s.api.Create(ctx, title, description, imageID)
		return err
	}, nil)
	if err != nil {
		return model.Note{}, err
	}
	s.log.Info("note created", "note_id", note.ID)
	return note, nil
}

// Update saves new content for a note. The local notes are not touched; refresh to see it.
func (s *NotesSession) Update(ctx context.Context, noteID, title, description, imageID string) (model.Note, error) {
	if err := validateNote(title, description); err != nil {
		return model.Note{}, err
	}

	var note model.Note
	err := s.mutate(ctx, "update note", UpdateStrategy, func(ctx context.Context) error {
		var err error
		note, err = s.api.Update(ctx, noteID, title, description, imageID)
		return err
	}, nil)
	if err != nil {
		return model.Note{}, err
	}
	s.log.Info("note updated", "note_id", noteID)
	return note, nil
}

// Delete removes a note on the server and then from the local notes.
func (s *NotesSession) Delete(ctx context.Context, noteID string) error {
	return s.mutate(ctx, "delete note", DeleteStrategy, func(ctx context.Context) error {
		if err := s.api.Delete(ctx, noteID); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		return nil
	}, func(st *State) {
		kept := make([]model.Note, 0, len(st.Notes))
		for _, n := range st.Notes {
			if n.ID != noteID {
				kept = append(kept, n)
			}
		}
		st.Notes = kept
		st.TotalNotes = max(st.TotalNotes-1, 0)
	})
}

// mutate runs call and, for AppliedLocally, patches the local state with local once it succeeds.
func (s *NotesSession) mutate(ctx context.Context, op string, strategy Strategy, call func(context.Context) error, local func(*State)) error {
	if err := s.begin(nil); err != nil {
		return err
	}

	ctx, done := s.bind(ctx)
	defer done()

	if err := call(ctx); err != nil {
		return s.fail(op, err)
	}
	if strategy != AppliedLocally {
		local = nil
	}
	return s.finish(local)
}

// Get fetches one note for a detail view. It does not change the session state.
func (s *NotesSession) Get(ctx context.Context, noteID string) (model.Note, error) {
	if s.isClosed() {
		return model.Note{}, ErrSessionClosed
	}

	ctx, done := s.bind(ctx)
	defer done()

	note, err := s.api.Get(ctx, noteID)
	if s.isClosed() {
		return model.Note{}, ErrSessionClosed
	}
	return note, err
}

// ClearError forgets the last failure.
func (s *NotesSession) ClearError() {
	s.mu.Lock()
	if s.closed || s.state.Err == nil {
		s.mu.Unlock()
		return
	}
	s.state.Err = nil
	seq, snap := s.snapshot()
	s.mu.Unlock()
	s.notify(seq, snap)
}

// Close cancels in-flight requests. Results arriving later are discarded.
func (s *NotesSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// bind derives a context that is also cancelled when the session closes.
func (s *NotesSession) bind(ctx context.Context) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// begin marks a request as in flight. A guard returning false leaves the state untouched.
func (s *NotesSession) begin(guard func(*State) bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if guard != nil && !guard(&s.state) {
		s.mu.Unlock()
		return nil
	}
	s.inflight++
	s.state.Status = StatusLoading
	seq, snap := s.snapshot()
	s.mu.Unlock()

	s.notify(seq, snap)
	return nil
}

// finish applies a successful result and regroups the notes.
func (s *NotesSession) finish(apply func(*State)) error {
	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if apply != nil {
		apply(&s.state)
		s.state.Groups = dategroup.ByDay(s.state.Notes, s.now())
	}
	s.state.Err = nil
	s.settle(StatusLoaded)
	seq, snap := s.snapshot()
	s.mu.Unlock()

	s.notify(seq, snap)
	return nil
}

// fail records err while keeping the notes and cursor already held.
func (s *NotesSession) fail(op string, err error) error {
	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state.Err = err
	s.settle(StatusFailed)
	seq, snap := s.snapshot()
	s.mu.Unlock()

	s.log.Warn(op+" failed", "error", err)
	s.notify(seq, snap)
	return err
}

// settle sets the final status unless other requests are still in flight.
func (s *NotesSession) settle(status Status) {
	if s.inflight > 0 {
		s.state.Status = StatusLoading
		return
	}
	s.state.Status = status
}

func (s *NotesSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// snapshot numbers the current state. Callers hold s.mu.
func (s *NotesSession) snapshot() (uint64, State) {
	s.seq++
	return s.seq, s.state.clone()
}

func (s *NotesSession) notify(seq uint64, st State) {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq
	s.onChange(st)
}

func validateNote(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	return nil
}

// dedupe appends the notes of page to held, skipping ids already present.
func dedupe(held, page []model.Note) []model.Note {
	seen := make(map[string]struct{}, len(held)+len(page))
	out := make([]model.Note, 0, len(held)+len(page))
	for _, n := range held {
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	for _, n := range page {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (st State) clone() State {
	out := st
	out.Notes = cloneNotes(st.Notes)
	out.Groups = make([]dategroup.Group, len(st.Groups))
	for i, g := range st.Groups {
		out.Groups[i] = dategroup.Group{Label: g.Label, Notes: cloneNotes(g.Notes)}
	}
	return out
}

func cloneNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	for i, n := range notes {
		n.ImageID = cloneString(n.ImageID)
		n.ProfileID = cloneString(n.ProfileID)
		n.ImageURL = cloneString(n.ImageURL)
		out[i] = n
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
