package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/cache"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/database/memstore"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/proctor_service"
	"github.com/tcp_snm/deepshift/internal/service/question_service"
	"github.com/tcp_snm/deepshift/internal/service/registration_service"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
	"github.com/tcp_snm/deepshift/middleware"
)

var secret = []byte("test-secret")

type fixture struct {
	store   *memstore.Store
	api     *Api
	server  *httptest.Server
	contest database.Contest
	student uuid.UUID
	admin   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	users := &user_service.UserService{DB: store}
	contests := &contest_service.ContestService{DB: store, Now: time.Now}
	questions := &question_service.QuestionService{
		DB:                   store,
		Cache:                cache.NewQuestionCache(8, time.Minute),
		ContestServiceConfig: contests,
	}
	submissions := &submission_service.SubmissionService{
		DB:                    store,
		ContestServiceConfig:  contests,
		QuestionServiceConfig: questions,
	}
	manager := &proctor_service.Manager{Submitter: submissions, TickInterval: 10 * time.Millisecond}
	manager.Start()

	f := &fixture{
		store:   store,
		student: uuid.New(),
		admin:   uuid.New(),
		api: &Api{
			UserServiceConfig:     users,
			ContestServiceConfig:  contests,
			QuestionServiceConfig: questions,
			RegistrationServiceConfig: &registration_service.RegistrationService{
				DB:                   store,
				ContestServiceConfig: contests,
				UserServiceConfig:    users,
			},
			SubmissionServiceConfig: submissions,
			ProctorManager:          manager,
		},
	}

	ctx := context.Background()
	var err error
	now := time.Now()
	f.contest, err = store.CreateContest(ctx, database.CreateContestParams{
		Title:     "live quiz",
		Type:      database.QuestionTypeMCQ,
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(time.Hour),
		Duration:  70,
	})
	if err != nil {
		t.Fatalf("contest: %v", err)
	}
	answer := "B"
	if _, err := store.CreateQuestion(ctx, database.CreateQuestionParams{
		ContestID: f.contest.ID, Type: database.QuestionTypeMCQ, QuestionText: "pick B",
		Options: []string{"A", "B"}, CorrectAnswer: &answer, Marks: 4, Order: 1,
	}); err != nil {
		t.Fatalf("question: %v", err)
	}

	auth := &middleware.Auth{Secret: secret}
	router := chi.NewRouter()
	router.Get("/contests/{id}", auth.OptionalJWTMiddleware(f.api.HandlerGetContest))
	router.Post("/student/register/{contestId}", auth.JWTMiddleware(f.api.HandlerRegister, database.RoleStudent))
	router.Post("/student/contests/{contestId}/submit", auth.JWTMiddleware(f.api.HandlerSubmit, database.RoleStudent))
	router.Get("/student/contests/{contestId}/session", auth.JWTMiddleware(f.api.HandlerProctorSession, database.RoleStudent))
	router.Post("/admin/payments/{id}/approve", auth.JWTMiddleware(f.api.HandlerApprovePayment, database.RoleAdmin))
	router.Delete("/admin/contests/{id}", auth.JWTMiddleware(f.api.HandlerDeleteContest, database.RoleAdmin))
	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) token(t *testing.T, id uuid.UUID, role database.UserRole) string {
	t.Helper()
	tok, err := service.IssueToken(secret, id, role, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (f *fixture) approve(t *testing.T) {
	t.Helper()
	student := f.token(t, f.student, database.RoleStudent)
	resp, reg := f.do(t, http.MethodPost, "/student/register/"+f.contest.ID.String(), student, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %v", resp.StatusCode, reg)
	}
	admin := f.token(t, f.admin, database.RoleAdmin)
	resp, body := f.do(t, http.MethodPost, fmt.Sprintf("/admin/payments/%s/approve", reg["id"]), admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: %d %v", resp.StatusCode, body)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w, x", app_errors.ErrInvalidInput), http.StatusBadRequest},
		{app_errors.ErrInvalidRequestCredentials, http.StatusUnauthorized},
		{app_errors.ErrUnAuthorized, http.StatusForbidden},
		{app_errors.ErrNotRegistered, http.StatusForbidden},
		{app_errors.ErrContestNotStarted, http.StatusForbidden},
		{app_errors.ErrContestEnded, http.StatusForbidden},
		{app_errors.ErrNotFound, http.StatusNotFound},
		{app_errors.ErrAlreadyRegistered, http.StatusConflict},
		{app_errors.ErrEntityAlreadyExist, http.StatusConflict},
		{app_errors.ErrInsufficientBalance, http.StatusBadRequest},
		{app_errors.ErrInternal, http.StatusInternalServerError},
		{errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHandlerErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handlerError(fmt.Errorf("%w, pq: relation results does not exist", app_errors.ErrInternal), rec)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != app_errors.ErrInternal.Error() {
		t.Fatalf("internal detail leaked: %q", body.Message)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var req submission_service.SubmissionRequest
	if err := decodeJsonBody(strings.NewReader(`{"answers":{},"score":100}`), &req); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if err := decodeJsonBody(strings.NewReader(""), &req); err != nil {
		t.Fatalf("empty body should decode, got %v", err)
	}
}

func TestRegisterTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, f.student, database.RoleStudent)
	path := "/student/register/" + f.contest.ID.String()

	if resp, body := f.do(t, http.MethodPost, path, tok, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first register: %d %v", resp.StatusCode, body)
	}
	resp, body := f.do(t, http.MethodPost, path, tok, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if !strings.Contains(body["message"].(string), "already registered") {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestSubmitDistinguishesGateFailures(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, f.student, database.RoleStudent)
	path := fmt.Sprintf("/student/contests/%s/submit", f.contest.ID)

	resp, body := f.do(t, http.MethodPost, path, tok, map[string]any{"answers": map[string]string{}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if !strings.Contains(body["message"].(string), app_errors.ErrNotRegistered.Error()) {
		t.Fatalf("expected not registered reason, got %v", body["message"])
	}

	if resp, _ := f.do(t, http.MethodPost, path, "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, f.student, database.RoleStudent)
	resp, _ := f.do(t, http.MethodDelete, "/admin/contests/"+f.contest.ID.String(), tok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestMalformedIDIsBadRequest(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/contests/not-a-uuid", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %v", resp.StatusCode, body)
	}
}

func TestGetContestAttachesRegistration(t *testing.T) {
	f := newFixture(t)
	f.approve(t)

	resp, body := f.do(t, http.MethodGet, "/contests/"+f.contest.ID.String(), f.token(t, f.student, database.RoleStudent), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != string(database.ContestStatusLive) {
		t.Fatalf("expected computed live status, got %v", body["status"])
	}
	if body["registration"] == nil {
		t.Fatalf("expected caller registration in %v", body)
	}

	_, anon := f.do(t, http.MethodGet, "/contests/"+f.contest.ID.String(), "", nil)
	if anon["registration"] != nil {
		t.Fatalf("anonymous caller must not get a registration")
	}
}

func readPush(t *testing.T, conn *websocket.Conn, want proctor_service.PushType) proctor_service.Push {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var p proctor_service.Push
		if err := conn.ReadJSON(&p); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if p.Type == want {
			return p
		}
	}
}

func TestProctorSessionSubmitsOverWebsocket(t *testing.T) {
	f := newFixture(t)
	f.approve(t)
	questions, err := f.store.ListQuestionsByContest(context.Background(), f.contest.ID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}

	tok := f.token(t, f.student, database.RoleStudent)
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") +
		fmt.Sprintf("/student/contests/%s/session?token=%s", f.contest.ID, tok)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if p := readPush(t, conn, proctor_service.PushState); p.State != proctor_service.StateAwaitingFullscreen {
		t.Fatalf("expected awaiting fullscreen, got %s", p.State)
	}

	for _, ev := range []proctor_service.Event{
		{Type: proctor_service.EventFullscreenGranted},
		{Type: proctor_service.EventVisibilityHidden},
		{Type: proctor_service.EventVisibilityVisible},
		{Type: proctor_service.EventAnswer, QuestionID: questions[0].ID.String(), Value: "B"},
		{Type: proctor_service.EventSubmit},
	} {
		if err := conn.WriteJSON(ev); err != nil {
			t.Fatalf("write %s: %v", ev.Type, err)
		}
	}

	p := readPush(t, conn, proctor_service.PushSubmitted)
	if p.Result == nil || p.Result.Score != 4 || p.Result.TabSwitchCount != 1 {
		t.Fatalf("unexpected result %+v", p.Result)
	}
	if p.State != proctor_service.StateSubmitted {
		t.Fatalf("expected submitted state, got %s", p.State)
	}

	// a finished attempt cannot open a new session
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a submitted attempt, got %v %v", resp, err)
	}
}

func TestProctorSessionRefusesUnapproved(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, f.student, database.RoleStudent)
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") +
		fmt.Sprintf("/student/contests/%s/session?token=%s", f.contest.ID, tok)

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before upgrade, got %v %v", resp, err)
	}
}
