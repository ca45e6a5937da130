package main

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarynotes/diary-go/internal/model"
	"github.com/diarynotes/diary-go/internal/repository"
	"github.com/diarynotes/diary-go/internal/server"
	"github.com/diarynotes/diary-go/internal/session"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestCLI_LoginAddListLogout(t *testing.T) {
	notes := repository.NewMemoryNoteStore()
	backend := server.New(repository.NewMemoryUserStore(), notes, server.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
	_, err := backend.Auth.Register(context.Background(), model.User{ID: "p1", Email: "ada@example.com"}, "AB12", "1234")
	require.NoError(t, err)

	srv := httptest.NewServer(backend.Router)
	t.Cleanup(srv.Close)

	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	t.Setenv("DIARY_API_URL", srv.URL)
	t.Setenv("DIARY_SESSION_FILE", sessionFile)
	store := session.NewStore(session.NewFileStorage(sessionFile), nil)

	require.Error(t, run(t, "notes", "list"), "listing before login fails")

	require.Error(t, run(t, "login", "--code", "AB1", "--pin", "1234"))
	assert.False(t, store.IsLoggedIn())

	require.NoError(t, run(t, "login", "--code", "AB12", "--pin", "1234"))
	assert.True(t, store.IsLoggedIn())

	require.NoError(t, run(t, "notes", "add", "--title", "Walk", "--description", "30 minutes"))
	count, err := notes.Count(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, run(t, "notes", "list", "--all"))
	require.NoError(t, run(t, "status"))

	require.NoError(t, run(t, "logout"))
	assert.False(t, store.IsLoggedIn())
	require.NoError(t, run(t, "logout"))
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Walk", want: "Walk"},
		{in: "  two\nlines  ", want: "two lines"},
		{in: "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijXYZ", want: "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefg..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, oneLine(tt.in))
	}
}
