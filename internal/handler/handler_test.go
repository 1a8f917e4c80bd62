package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"private-scribe-server/internal/config"
	"private-scribe-server/internal/database"
	"private-scribe-server/internal/formatting"
	"private-scribe-server/internal/middleware"
	"private-scribe-server/internal/repository"
	"private-scribe-server/internal/service"
	"private-scribe-server/internal/session"
	"private-scribe-server/pkg/hash"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	hash.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fakeTranscriber struct{ text string }

func (f fakeTranscriber) Transcribe(context.Context, []byte) (string, error) { return f.text, nil }

type fakeTranscoder struct{}

func (fakeTranscoder) ToWAV(_ context.Context, audio []byte, _ string) ([]byte, error) {
	return audio, nil
}

type fakeFormatter struct{ err error }

func (f fakeFormatter) Format(context.Context, formatting.Prompt) (string, error) {
	return "```\n## Chief Complaint\ncough\n```", f.err
}

type testServer struct {
	t      *testing.T
	router *mux.Router
}

func newTestServer(t *testing.T, formatter formatting.Formatter) *testServer {
	t.Helper()
	return newTestServerWithSessions(t, formatter, session.NewStatelessStore())
}

func newTestServerWithSessions(t *testing.T, formatter formatting.Formatter, sessions session.Store) *testServer {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{Type: "sqlite", Name: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { database.Close(db) })

	if formatter == nil {
		formatter = fakeFormatter{}
	}

	logger := zerolog.Nop()
	uow := repository.NewUnitOfWork(db)
	svc := Services{
		Auth:          service.NewAuthService(uow, sessions, "handler-secret", time.Hour, 24*time.Hour, logger),
		Users:         service.NewUserService(uow),
		Notes:         service.NewNoteService(uow),
		Templates:     service.NewTemplateService(uow),
		Participants:  service.NewParticipantService(uow),
		Transcription: service.NewTranscriptionService(fakeTranscriber{text: "patient has a cough"}, fakeTranscoder{}, logger),
		Formatting:    service.NewFormattingService(uow, formatter, logger),
	}

	reg := prometheus.NewRegistry()
	router := NewRouter(svc, RouterConfig{
		CORS:           config.CORSConfig{AllowedOrigins: "http://localhost:3000", AllowedMethods: "GET,POST,PUT", AllowedHeaders: "Content-Type,Authorization"},
		MaxUploadBytes: 1 << 20,
		HealthCheck:    func() error { return database.Ping(db) },
		Metrics:        middleware.NewMetrics("scribe", reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, logger)

	return &testServer{t: t, router: router}
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type authSession struct {
	userID       string
	accessToken  string
	refreshToken string
}

func (s *testServer) signupAndLogin(email string) authSession {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"email": email, "firstName": "A", "lastName": "B", "password": "pw",
	})
	require.Equal(s.t, http.StatusCreated, code)

	code, env := s.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(s.t, http.StatusOK, code)

	var login struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decodeData(s.t, env, &login)
	return authSession{userID: login.User.ID, accessToken: login.AccessToken, refreshToken: login.RefreshToken}
}

type noteBody struct {
	ID                 string  `json:"id"`
	Version            int64   `json:"version"`
	IsDeleted          bool    `json:"isDeleted"`
	IsDeletedTimestamp *string `json:"isDeletedTimestamp"`
	TemplateID         *string `json:"templateId"`
	Participants       []struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
	} `json:"participants"`
	ParticipantIDs []string `json:"participantIds"`
}

func TestExampleScenario(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"email": "a@x.com", "firstName": "A", "lastName": "B", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, string(env.Data), "password")

	code, env = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	code, env = s.do(http.MethodPost, "/api/templates", login.AccessToken, map[string]string{
		"name": "SOAP", "content": "## S\n{{subjective}}",
	})
	require.Equal(t, http.StatusCreated, code)
	var tpl struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &tpl)

	code, env = s.do(http.MethodPost, "/api/notes", login.AccessToken, map[string]interface{}{
		"authorName":          "Dr. A",
		"noteDate":            "2024-01-15",
		"noteContentRaw":      "raw",
		"noteContentMarkdown": "## md",
		"templateId":          tpl.ID,
		"participants":        []map[string]string{{"firstName": "Jane", "lastName": "Doe"}},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var note noteBody
	decodeData(t, env, &note)
	assert.Equal(t, int64(1), note.Version)
	require.Len(t, note.Participants, 1)

	code, env = s.do(http.MethodPut, "/api/notes/"+note.ID+"/delete", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &note)
	assert.True(t, note.IsDeleted)
	assert.NotNil(t, note.IsDeletedTimestamp)

	code, env = s.do(http.MethodPut, "/api/notes/"+note.ID+"/restore", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &note)
	assert.False(t, note.IsDeleted)
	assert.Nil(t, note.IsDeletedTimestamp)
	assert.Equal(t, int64(1), note.Version)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.signupAndLogin("a@x.com")

	code, env := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"email": "a@x.com", "firstName": "A", "lastName": "B", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = s.do(http.MethodPost, "/api/signup", "", map[string]string{"email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email", env.Details["email"])
	assert.Equal(t, "required", env.Details["firstName"])

	code, _ = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/validateToken", sess.accessToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/validateToken", sess.refreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodGet, "/api/validateToken", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, "/api/refresh", "", map[string]string{"refresh_token": sess.refreshToken})
	require.Equal(t, http.StatusOK, code)
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &refreshed)
	code, _ = s.do(http.MethodGet, "/api/users", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodPost, "/api/refresh", sess.refreshToken, nil)
	assert.Equal(t, http.StatusOK, code, "refresh token accepted from the Authorization header")
	code, _ = s.do(http.MethodPost, "/api/refresh", "", map[string]string{"refresh_token": sess.accessToken})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, env = s.do(http.MethodPost, "/api/refresh", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "required", env.Details["refresh_token"])

	code, _ = s.do(http.MethodPost, "/api/logout", "", map[string]string{"refresh_token": sess.refreshToken})
	assert.Equal(t, http.StatusOK, code)
}

type failingRevokeStore struct{ session.StatelessStore }

func (failingRevokeStore) Revoke(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestLogoutWhenRevokeFails(t *testing.T) {
	s := newTestServerWithSessions(t, nil, failingRevokeStore{})
	sess := s.signupAndLogin("a@x.com")

	code, env := s.do(http.MethodPost, "/api/logout", "", map[string]string{"refresh_token": sess.refreshToken})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestUnmatchedRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)

	code, env = s.do(http.MethodDelete, "/api/notes/abc", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.False(t, env.Success)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `scribe_requests_total{method="GET",path="unmatched",status_code="404"} 1`)
	assert.Contains(t, body, `scribe_requests_total{method="DELETE",path="unmatched",status_code="405"} 1`)
}

func TestNoteOwnership(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.signupAndLogin("owner@x.com")
	intruder := s.signupAndLogin("intruder@x.com")

	code, env := s.do(http.MethodPost, "/api/notes", owner.accessToken, map[string]interface{}{
		"authorName": "Dr. O", "noteDate": "2024-01-15", "noteContentRaw": "raw", "noteContentMarkdown": "md",
	})
	require.Equal(t, http.StatusCreated, code)
	var note noteBody
	decodeData(t, env, &note)

	code, _ = s.do(http.MethodGet, "/api/notes/"+note.ID, intruder.accessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPut, "/api/notes/"+note.ID, intruder.accessToken, map[string]string{"noteContentMarkdown": "mine"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPut, "/api/notes/"+note.ID+"/delete", intruder.accessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/notes/user/"+owner.userID, intruder.accessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/notes/does-not-exist", intruder.accessToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/notes/"+note.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPut, "/api/notes/"+note.ID, owner.accessToken, map[string]interface{}{
		"noteContentMarkdown": "## edited",
		"participants":        []map[string]string{{"id": "X", "firstName": "A"}},
	})
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &note)
	assert.Equal(t, int64(2), note.Version)

	code, env = s.do(http.MethodGet, "/api/notes/user/"+owner.userID, owner.accessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var list []noteBody
	decodeData(t, env, &list)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"X"}, list[0].ParticipantIDs)
	assert.Empty(t, list[0].Participants, "list projection carries ids only")
}

func TestNoteCreateErrors(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.signupAndLogin("a@x.com")

	code, _ := s.do(http.MethodPost, "/api/notes", sess.accessToken, map[string]interface{}{
		"authorName": "Dr. A", "noteDate": "2024-01-15", "noteContentRaw": "raw", "noteContentMarkdown": "md",
		"templateId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, env := s.do(http.MethodPost, "/api/notes", sess.accessToken, map[string]interface{}{
		"noteDate": "2024-01-15", "noteContentRaw": "raw", "noteContentMarkdown": "md",
		"participants": []map[string]string{{"firstName": "J", "email": "bad"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Details, "authorName")
	assert.Contains(t, env.Details, "participants[0].email")

	code, env = s.do(http.MethodPost, "/api/notes", sess.accessToken, map[string]interface{}{
		"authorName": "Dr. A", "noteDate": "2024-01-15", "noteContentRaw": "raw", "noteContentMarkdown": "md",
		"participants": []map[string]string{{"id": "ghost"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Details, "participants[0].id")

	other := s.signupAndLogin("b@x.com")
	code, env = s.do(http.MethodPost, "/api/participants", other.accessToken, map[string]string{"firstName": "Theirs"})
	require.Equal(t, http.StatusCreated, code)
	var theirs struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &theirs)
	for _, p := range []map[string]string{{"id": theirs.ID}, {"id": theirs.ID, "firstName": "Hijack"}} {
		code, _ = s.do(http.MethodPost, "/api/notes", sess.accessToken, map[string]interface{}{
			"authorName": "Dr. A", "noteDate": "2024-01-15", "noteContentRaw": "raw", "noteContentMarkdown": "md",
			"participants": []map[string]string{p},
		})
		assert.Equal(t, http.StatusForbidden, code)
	}

	code, env = s.do(http.MethodGet, "/api/notes/user/"+sess.userID, sess.accessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestTemplateAndParticipantEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.signupAndLogin("a@x.com")
	other := s.signupAndLogin("b@x.com")

	code, env := s.do(http.MethodPost, "/api/templates", sess.accessToken, map[string]string{"name": "T", "content": "[summary]"})
	require.Equal(t, http.StatusCreated, code)
	var tpl struct {
		ID      string `json:"id"`
		Version int64  `json:"version"`
		Name    string `json:"name"`
	}
	decodeData(t, env, &tpl)

	code, env = s.do(http.MethodPut, "/api/templates/"+tpl.ID, sess.accessToken, map[string]string{"name": "T2"})
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &tpl)
	assert.Equal(t, int64(2), tpl.Version)
	assert.Equal(t, "T2", tpl.Name)

	code, _ = s.do(http.MethodPut, "/api/templates/"+tpl.ID+"/delete", sess.accessToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPut, "/api/templates/"+tpl.ID+"/restore", sess.accessToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/templates/"+tpl.ID, other.accessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(http.MethodGet, "/api/templates/user/"+sess.userID, sess.accessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var templates []json.RawMessage
	decodeData(t, env, &templates)
	assert.Len(t, templates, 1)

	code, _ = s.do(http.MethodPost, "/api/participants", sess.accessToken, map[string]string{"firstName": "Jane", "email": "j@x.com"})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/participants", sess.accessToken, map[string]string{"firstName": "Jim", "email": "j@x.com"})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/participants", sess.accessToken, map[string]string{"lastName": "NoFirst"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, "/api/participants/"+sess.userID, sess.accessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var participants []json.RawMessage
	decodeData(t, env, &participants)
	assert.Len(t, participants, 2)
	code, _ = s.do(http.MethodGet, "/api/participants/"+sess.userID, other.accessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func multipartUpload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		part.Write(data)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTranscribe(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.signupAndLogin("a@x.com")

	req := multipartUpload(t, "visit.webm", []byte("audio"))
	req.Header.Set("Authorization", "Bearer "+sess.accessToken)
	code, env := s.serve(req)
	require.Equal(t, http.StatusOK, code)
	var out struct {
		RawNote string `json:"raw_note"`
	}
	decodeData(t, env, &out)
	assert.Equal(t, "patient has a cough", out.RawNote)

	req = multipartUpload(t, "", nil)
	req.Header.Set("Authorization", "Bearer "+sess.accessToken)
	code, env = s.serve(req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "required", env.Details["file"])

	req = multipartUpload(t, "huge.wav", bytes.Repeat([]byte("a"), 2<<20))
	req.Header.Set("Authorization", "Bearer "+sess.accessToken)
	code, _ = s.serve(req)
	assert.True(t, code == http.StatusRequestEntityTooLarge || code == http.StatusBadRequest, "got %d", code)
}

func TestGetMarkdown(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.signupAndLogin("a@x.com")

	code, env := s.do(http.MethodPost, "/api/getMarkdown", sess.accessToken, map[string]interface{}{
		"raw_note":     "patient has a cough",
		"note_details": map[string]string{"note_date": "2024-01-15", "author_name": "Dr. A"},
	})
	require.Equal(t, http.StatusOK, code)
	var out struct {
		FormattedMarkdown string `json:"formatted_markdown"`
	}
	decodeData(t, env, &out)
	assert.Equal(t, "## Chief Complaint\ncough", out.FormattedMarkdown)

	code, _ = s.do(http.MethodPost, "/api/getMarkdown", sess.accessToken, map[string]interface{}{
		"raw_note":     "x",
		"note_details": map[string]string{"template_id": "missing"},
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodPost, "/api/getMarkdown", sess.accessToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Details, "raw_note")
}

func TestGetMarkdownUpstreamFailure(t *testing.T) {
	s := newTestServer(t, fakeFormatter{err: errors.New("model offline")})
	sess := s.signupAndLogin("a@x.com")

	code, env := s.do(http.MethodPost, "/api/getMarkdown", sess.accessToken, map[string]interface{}{"raw_note": "x"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.NotContains(t, env.Error, "model offline")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	s.do(http.MethodGet, "/api/users", "", nil)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scribe_requests_total{method="GET",path="/api/users",status_code="401"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
