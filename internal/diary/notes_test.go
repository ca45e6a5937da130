package diary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarynotes/diary-go/internal/api"
	"github.com/diarynotes/diary-go/internal/model"
)

var testNow = time.Date(2024, 8, 17, 12, 0, 0, 0, time.UTC)

type listCall struct {
	limit, start int
}

// fakeNotes serves notes from memory, newest first, and records every call.
type fakeNotes struct {
	mu      sync.Mutex
	notes   []model.Note
	lists   []listCall
	creates int
	updates int
	deletes []string
	listErr error
	saveErr error
	block   chan struct{}
}

func (f *fakeNotes) List(ctx context.Context, limit, start int) (model.NotePage, error) {
	f.mu.Lock()
	f.lists = append(f.lists, listCall{limit, start})
	block, listErr := f.block, f.listErr
	notes := append([]model.Note(nil), f.notes...)
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return model.NotePage{}, ctx.Err()
		}
	}
	if listErr != nil {
		return model.NotePage{}, listErr
	}

	end := min(start+limit, len(notes))
	page := []model.Note{}
	if start < end {
		page = notes[start:end]
	}
	return model.NotePage{
		Notes:  page,
		Cursor: model.PageCursor{Limit: limit, Start: start, Total: len(notes), Size: len(page)},
	}, nil
}

func (f *fakeNotes) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

func (f *fakeNotes) Create(ctx context.Context, title, description, imageID string) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.saveErr != nil {
		return model.Note{}, f.saveErr
	}
	return model.Note{ID: "new", Title: title, Description: description}, nil
}

func (f *fakeNotes) Update(ctx context.Context, noteID, title, description, imageID string) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.saveErr != nil {
		return model.Note{}, f.saveErr
	}
	return model.Note{ID: noteID, Title: title, Description: description}, nil
}

func (f *fakeNotes) Get(ctx context.Context, noteID string) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == noteID {
			return n, nil
		}
	}
	return model.Note{}, &api.StatusError{Code: 404}
}

func (f *fakeNotes) Delete(ctx context.Context, noteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, noteID)
	return f.saveErr
}

func notesAt(ago ...time.Duration) []model.Note {
	out := make([]model.Note, len(ago))
	for i, d := range ago {
		out[i] = model.Note{
			ID:        string(rune('a' + i)),
			Title:     "note",
			CreatedAt: testNow.Add(-d).UnixMilli(),
		}
	}
	return out
}

// gatedNotes answers the i-th List call with pages[i] once gates[i] is closed.
type gatedNotes struct {
	*fakeNotes
	mu    sync.Mutex
	calls int
	pages [][]model.Note
	gates []chan struct{}
}

func (g *gatedNotes) List(ctx context.Context, limit, start int) (model.NotePage, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	g.mu.Unlock()

	select {
	case <-g.gates[i]:
	case <-ctx.Done():
		return model.NotePage{}, ctx.Err()
	}
	notes := g.pages[i]
	return model.NotePage{
		Notes:  notes,
		Cursor: model.PageCursor{Limit: limit, Total: len(notes), Size: len(notes)},
	}, nil
}

func (g *gatedNotes) listCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newNotes(f *fakeNotes, opts ...NotesOption) *NotesSession {
	opts = append([]NotesOption{WithClock(func() time.Time { return testNow })}, opts...)
	return NewNotesSession(f, opts...)
}

func TestNotesSession_StartsIdle(t *testing.T) {
	s := newNotes(&fakeNotes{})
	st := s.State()
	assert.Equal(t, StatusIdle, st.Status)
	assert.Empty(t, st.Notes)
	assert.False(t, st.HasMore())
}

func TestNotesSession_Refresh(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0, 3*time.Hour, 26*time.Hour, 50*time.Hour)}
	var seen []Status
	s := newNotes(f, WithOnChange(func(st State) { seen = append(seen, st.Status) }))

	require.NoError(t, s.Refresh(context.Background()))

	st := s.State()
	assert.Equal(t, StatusLoaded, st.Status)
	assert.Len(t, st.Notes, 4)
	assert.Equal(t, 4, st.TotalNotes)
	require.Len(t, st.Groups, 3)
	assert.Equal(t, "Today", st.Groups[0].Label)
	assert.Equal(t, "Yesterday", st.Groups[1].Label)
	assert.Equal(t, "15 Aug", st.Groups[2].Label)

	assert.Equal(t, []listCall{{limit: 20, start: 0}}, f.lists)
	assert.Equal(t, []Status{StatusLoading, StatusLoaded}, seen)
}

func TestNotesSession_FailureKeepsData(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0, time.Hour)}
	s := newNotes(f)
	require.NoError(t, s.Refresh(context.Background()))

	f.listErr = &api.StatusError{Code: 500}
	err := s.Refresh(context.Background())
	require.ErrorIs(t, err, api.ErrServer)

	st := s.State()
	assert.Equal(t, StatusFailed, st.Status)
	assert.ErrorIs(t, st.Err, api.ErrServer)
	assert.Len(t, st.Notes, 2)
	assert.Equal(t, 2, st.Cursor.Total)

	s.ClearError()
	assert.NoError(t, s.State().Err)

	f.listErr = nil
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, StatusLoaded, s.State().Status)
}

func TestNotesSession_LoadMore(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0, time.Minute, 2*time.Minute, 3*time.Minute, 4*time.Minute)}
	s := newNotes(f, WithPageSize(2))

	require.NoError(t, s.LoadMore(context.Background()))
	assert.Empty(t, f.lists, "nothing to load before the first refresh")

	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.LoadMore(context.Background()))
	require.NoError(t, s.LoadMore(context.Background()))

	st := s.State()
	assert.Len(t, st.Notes, 5)
	assert.False(t, st.HasMore())
	assert.Equal(t, []listCall{{2, 0}, {2, 2}, {2, 4}}, f.lists)

	require.NoError(t, s.LoadMore(context.Background()))
	assert.Len(t, f.lists, 3, "no request once everything is loaded")
}

func TestNotesSession_LoadMoreDeduplicates(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0, time.Minute, 2*time.Minute, 3*time.Minute)}
	s := newNotes(f, WithPageSize(2))
	require.NoError(t, s.Refresh(context.Background()))

	require.NoError(t, s.Delete(context.Background(), "a"))

	// The held set shrank, so the next page starts at 1 and repeats "b".
	require.NoError(t, s.LoadMore(context.Background()))
	ids := []string{}
	for _, n := range s.State().Notes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"b", "c"}, ids)
}

func TestNotesSession_LoadMoreSkippedWhileLoading(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0, time.Minute, 2*time.Minute)}
	s := newNotes(f, WithPageSize(1))
	require.NoError(t, s.Refresh(context.Background()))

	f.mu.Lock()
	f.block = make(chan struct{})
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return f.listCalls() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, s.LoadMore(context.Background()))
	assert.Equal(t, 2, f.listCalls())

	close(f.block)
	require.NoError(t, <-done)
}

func TestNotesSession_ObserverSeesChangesInOrder(t *testing.T) {
	g := &gatedNotes{
		fakeNotes: &fakeNotes{},
		pages:     [][]model.Note{notesAt(0), notesAt(0, time.Minute)},
		gates:     []chan struct{}{make(chan struct{}), make(chan struct{})},
	}

	entered := make(chan struct{})
	hold := make(chan struct{})
	var mu sync.Mutex
	var last State
	s := NewNotesSession(g, WithClock(func() time.Time { return testNow }), WithOnChange(func(st State) {
		// The first refresh completes while the second is still running.
		if st.Status == StatusLoading && len(st.Notes) == 1 {
			close(entered)
			<-hold
		}
		mu.Lock()
		last = st
		mu.Unlock()
	}))

	first := make(chan error, 1)
	go func() { first <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.listCalls() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.listCalls() == 2 }, time.Second, time.Millisecond)

	close(g.gates[0])
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("observer did not see the first completion")
	}

	close(g.gates[1])
	require.Eventually(t, func() bool {
		st := s.State()
		return st.Status == StatusLoaded && len(st.Notes) == 2
	}, time.Second, time.Millisecond)

	close(hold)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, StatusLoaded, last.Status)
	assert.Len(t, last.Notes, 2)
}

func TestNotesSession_DeleteAppliesLocally(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0, 3*time.Hour, 26*time.Hour, 50*time.Hour)}
	s := newNotes(f)
	require.NoError(t, s.Refresh(context.Background()))
	before := s.State()

	require.NoError(t, s.Delete(context.Background(), "b"))
	after := s.State()

	assert.Equal(t, []string{"b"}, f.deletes)
	assert.Len(t, f.lists, 1, "delete does not refetch")
	assert.Len(t, after.Notes, len(before.Notes)-1)
	assert.Equal(t, before.TotalNotes-1, after.TotalNotes)
	assert.Equal(t, before.Cursor, after.Cursor)

	membership := func(st State) map[string]string {
		m := map[string]string{}
		for _, g := range st.Groups {
			for _, n := range g.Notes {
				m[n.ID] = g.Label
			}
		}
		return m
	}
	want := membership(before)
	delete(want, "b")
	assert.Equal(t, want, membership(after))
}

func TestNotesSession_DeleteFailureKeepsNote(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0)}
	s := newNotes(f)
	require.NoError(t, s.Refresh(context.Background()))

	f.saveErr = &api.StatusError{Code: 404}
	err := s.Delete(context.Background(), "a")
	require.ErrorIs(t, err, api.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to delete note: ")
	assert.ErrorIs(t, s.State().Err, api.ErrNotFound)
	assert.Len(t, s.State().Notes, 1)
	assert.Equal(t, 1, s.State().TotalNotes)
}

func TestNotesSession_TotalNeverNegative(t *testing.T) {
	s := newNotes(&fakeNotes{})
	require.NoError(t, s.Delete(context.Background(), "ghost"))
	assert.Equal(t, 0, s.State().TotalNotes)
}

func TestNotesSession_CreateAndUpdateAreServerConfirmed(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0)}
	s := newNotes(f)
	require.NoError(t, s.Refresh(context.Background()))

	note, err := s.Create(context.Background(), "Walk", "30 min", "")
	require.NoError(t, err)
	assert.Equal(t, "new", note.ID)
	assert.Len(t, s.State().Notes, 1, "create does not splice the note in")

	_, err = s.Update(context.Background(), "a", "Run", "5 km", "")
	require.NoError(t, err)
	assert.Equal(t, "note", s.State().Notes[0].Title, "update does not patch the note")

	assert.Equal(t, 1, f.creates)
	assert.Equal(t, 1, f.updates)
	assert.Equal(t, StatusLoaded, s.State().Status)
}

func TestNotesSession_SaveValidation(t *testing.T) {
	f := &fakeNotes{}
	s := newNotes(f)

	tests := []struct {
		name        string
		title       string
		description string
		field       string
	}{
		{name: "blank title", title: " ", description: "d", field: "title"},
		{name: "blank description", title: "t", description: "", field: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.title, tt.description, "")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			_, err = s.Update(context.Background(), "a", tt.title, tt.description, "")
			require.ErrorAs(t, err, &verr)
		})
	}
	assert.Zero(t, f.creates)
	assert.Zero(t, f.updates)
	assert.Equal(t, StatusIdle, s.State().Status)
}

func TestNotesSession_CloseCancelsInFlight(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0), block: make(chan struct{})}
	var mu sync.Mutex
	var changes int
	s := newNotes(f, WithOnChange(func(State) {
		mu.Lock()
		changes++
		mu.Unlock()
	}))

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return f.listCalls() == 1 }, time.Second, time.Millisecond)

	s.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("refresh did not return after Close")
	}

	st := s.State()
	assert.Equal(t, StatusLoading, st.Status, "late completion must not change state")
	assert.Empty(t, st.Notes)
	mu.Lock()
	assert.Equal(t, 1, changes)
	mu.Unlock()

	assert.ErrorIs(t, s.Refresh(context.Background()), ErrSessionClosed)
	_, err := s.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestNotesSession_SnapshotsAreIndependent(t *testing.T) {
	img := "img"
	f := &fakeNotes{notes: []model.Note{{ID: "a", Title: "t", ImageID: &img, CreatedAt: testNow.UnixMilli()}}}
	s := newNotes(f)
	require.NoError(t, s.Refresh(context.Background()))

	snap := s.State()
	snap.Notes[0].Title = "changed"
	*snap.Notes[0].ImageID = "changed"
	snap.Groups[0].Notes[0].Title = "changed"

	fresh := s.State()
	assert.Equal(t, "t", fresh.Notes[0].Title)
	assert.Equal(t, "img", *fresh.Notes[0].ImageID)
	assert.Equal(t, "t", fresh.Groups[0].Notes[0].Title)
}

func TestNotesSession_Get(t *testing.T) {
	f := &fakeNotes{notes: notesAt(0)}
	s := newNotes(f)

	note, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", note.ID)

	_, err = s.Get(context.Background(), "zzz")
	assert.True(t, errors.Is(err, api.ErrNotFound))
	assert.Equal(t, StatusIdle, s.State().Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
