package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diarynotes/diary-go/internal/crypto"
	"github.com/diarynotes/diary-go/internal/middleware"
	"github.com/diarynotes/diary-go/internal/model"
	"github.com/diarynotes/diary-go/internal/repository"
)

func newTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	b := New(repository.NewMemoryUserStore(), repository.NewMemoryNoteStore(), Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
	_, err := b.Auth.Register(context.Background(), model.User{ID: "p1", Email: "ada@example.com"}, "AB12", "1234")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	data, err := b.Auth.Login(context.Background(), model.CodeLogin("AB12", "1234"))
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	return b, data.Authorization
}

func serve(b *Backend, method, path, token string, body any) (*httptest.ResponseRecorder, model.Envelope) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(middleware.HeaderAuthToken, token)
	}
	rec := httptest.NewRecorder()
	b.Router.ServeHTTP(rec, req)

	var env model.Envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestLoginRoute(t *testing.T) {
	b, _ := newTestBackend(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "code login", body: model.CodeLogin("AB12", "1234"), wantStatus: http.StatusOK},
		{name: "email login", body: model.EmailLogin("ada@example.com", "1234"), wantStatus: http.StatusOK},
		{name: "wrong pin", body: model.CodeLogin("AB12", "9999"), wantStatus: http.StatusUnauthorized},
		{name: "unknown code", body: model.CodeLogin("ZZZZ", "1234"), wantStatus: http.StatusNotFound},
		{name: "malformed body", body: "not an object", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(b, http.MethodPost, "/v1/authenticate-by-signup-code-or-email", "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if env.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("success = %v for status %d", env.Success, rec.Code)
			}
		})
	}
}

func TestNotesRoutes_RequireMatchingProfile(t *testing.T) {
	b, token := newTestBackend(t)

	rec, _ := serve(b, http.MethodGet, "/v1/medical-profiles/p1/notes", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without token status = %d, want 401", rec.Code)
	}

	rec, _ = serve(b, http.MethodGet, "/v1/medical-profiles/p2/notes", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other profile status = %d, want 403", rec.Code)
	}
}

func TestNotesRoutes_RejectUnknownAccount(t *testing.T) {
	b, _ := newTestBackend(t)

	token, err := crypto.GenerateToken("ghost", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	rec, env := serve(b, http.MethodGet, "/v1/medical-profiles/ghost/notes", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if env.Success {
		t.Error("success = true for a token without an account")
	}
}

func TestNotesRoutes_CRUD(t *testing.T) {
	b, token := newTestBackend(t)
	base := "/v1/medical-profiles/p1/notes"

	rec, env := serve(b, http.MethodPost, base, token, model.NoteRequest{Title: "A", Description: "x"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}
	var created model.Note
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created note: %v", err)
	}

	rec, _ = serve(b, http.MethodPost, base, token, model.NoteRequest{Title: ""})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank title status = %d, want 422", rec.Code)
	}

	rec, _ = serve(b, http.MethodPut, base+"/"+created.ID, token, model.NoteRequest{Title: "B", Description: "y"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", rec.Code)
	}

	rec, env = serve(b, http.MethodGet, base+"/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var got model.Note
	json.Unmarshal(env.Data, &got)
	if got.Title != "B" || got.Description != "y" {
		t.Errorf("get after update = %+v", got)
	}

	rec, env = serve(b, http.MethodGet, base+"?limit=5&start=0", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var list model.NoteListData
	json.Unmarshal(env.Data, &list)
	if list.Total != 1 || list.Size != 1 || list.Limit != 5 {
		t.Errorf("unexpected list payload: %+v", list)
	}

	rec, _ = serve(b, http.MethodGet, base+"?limit=abc", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad limit status = %d, want 422", rec.Code)
	}

	rec, _ = serve(b, http.MethodDelete, base+"/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", rec.Code)
	}

	rec, env = serve(b, http.MethodGet, base+"/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound || env.Success {
		t.Errorf("get after delete status = %d success = %v, want 404 false", rec.Code, env.Success)
	}
}
