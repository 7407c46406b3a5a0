package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories/memory"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

const (
	testBaseURL  = "http://localhost:8080"
	testPassword = "s3cret-pass"
)

type testServer struct {
	router *gin.Engine
	repo   *memory.Repository
	events *events.MockEventPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.New()
	publisher := events.NewMockEventPublisher()

	sm := services.NewServiceManager(repo, publisher, logger, validator.New(), services.ServiceManagerConfig{
		BaseURL:             testBaseURL,
		SecretKey:           "test-secret",
		VerificationTimeout: 72 * time.Hour,
		DefaultTimeout:      time.Second,
	})
	require.NoError(t, sm.Initialize(context.Background()))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	appLogger := utils.NewSlogLogger(logger)
	auth := NewSessionAuthMiddleware(cache.NewSessionStore(client, time.Hour), sm.Account(), false, appLogger)

	router := gin.New()
	SetupMiddleware(router, appLogger, true, []string{testBaseURL})
	NewHandlerManager(sm, auth, appLogger).SetupRoutes(router)

	return &testServer{router: router, repo: repo, events: publisher}
}

func (s *testServer) account(t *testing.T, username string, role models.UserRole, active bool) *models.Account {
	t.Helper()
	a := &models.Account{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, a.SetPassword(testPassword))
	require.NoError(t, s.repo.Account().Create(context.Background(), nil, a))
	return a
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://localhost:8080"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := s.do(t, http.MethodPost, "/login/", gin.H{"username": username, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie in login response")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHostNormalization(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		url      string
		wantCode int
		wantLoc  string
	}{
		{"keeps port and query", http.MethodGet, "http://127.0.0.1:8000/questions/?q=x", http.StatusFound, "http://localhost:8000/questions/?q=x"},
		{"drops default port", http.MethodGet, "http://127.0.0.1:80/", http.StatusFound, "http://localhost/"},
		{"ignores post", http.MethodPost, "http://127.0.0.1:8000/logout/", http.StatusFound, "/login/"},
		{"ignores localhost", http.MethodGet, "http://localhost:8000/", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
		})
	}
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "stud", models.RoleStudent, true)
	s.account(t, "teach", models.RoleTeacher, true)
	student := s.login(t, "stud")
	teacher := s.login(t, "teach")

	t.Run("anonymous goes to login", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/questions/", nil, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))
	})

	t.Run("student denied grading list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/questions/submissions/", nil, student)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, LandingPath, w.Header().Get("Location"))
	})

	t.Run("teacher denied admin pages", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/admin/users/", nil, teacher)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, LandingPath, w.Header().Get("Location"))
	})

	t.Run("student creates no questions", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/questions/add/", gin.H{"question_text": "x"}, student)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, LandingPath, w.Header().Get("Location"))
	})

	t.Run("dashboard redirect by role", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/dashboard/", nil, teacher)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard/teacher/", w.Header().Get("Location"))
	})

	t.Run("logout ends session", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/logout/", nil, student)
		assert.Equal(t, http.StatusFound, w.Code)

		w = s.do(t, http.MethodGet, "/questions/", nil, student)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))
	})
}

func TestRegisterVerifyLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/register/", gin.H{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  testPassword,
		"user_type": "student",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// unverified accounts are told to verify first
	w = s.do(t, http.MethodPost, "/login/", gin.H{"username": "alice", "password": testPassword}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]interface{}{"resend_available": true}, body["details"])

	requested := s.events.OfType(events.TypeVerificationRequested)
	require.Len(t, requested, 1)
	var payload events.VerificationRequested
	require.NoError(t, requested[0].Decode(&payload))
	path := strings.TrimPrefix(payload.Link, testBaseURL)

	w = s.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// links are single use
	w = s.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/login/", gin.H{"username": "alice@example.com", "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "/dashboard/student/", data["redirect_to"])
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "bob", models.RoleTeacher, true)

	w := s.do(t, http.MethodPost, "/login/", gin.H{"username": "bob", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/login/", gin.H{"username": "bob", "password": testPassword, "role": "admin"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not an admin account.", decode(t, w)["message"])

	w = s.do(t, http.MethodPost, "/resend-verification/", gin.H{"username_or_email": "nobody"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGradeAndExport(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "alice", models.RoleStudent, true)
	s.account(t, "teach", models.RoleTeacher, true)
	student := s.login(t, "alice")
	teacher := s.login(t, "teach")

	w := s.do(t, http.MethodPost, "/questions/add/", gin.H{"question_text": "2+2?", "subject": "Math"}, teacher)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	question := decode(t, w)["data"].(map[string]interface{})
	qid := int(question["id"].(float64))

	w = s.do(t, http.MethodGet, "/questions/take/999/", nil, student)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/questions/take/"+strconv.Itoa(qid)+"/", gin.H{"answer_text": "4"}, student)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sid := int(decode(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = s.do(t, http.MethodPost, "/questions/grade/"+strconv.Itoa(sid)+"/", gin.H{"score": 7, "feedback": "ok"}, teacher)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/questions/export/performance.csv", nil, teacher)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="performance.csv"`, w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Student,Question ID,Score,Graded,Submitted At", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "alice,"+strconv.Itoa(qid)+",7,true,"), lines[1])

	w = s.do(t, http.MethodGet, "/questions/export/performance.xlsx", nil, teacher)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodGet, "/questions/leaderboard/", nil, student)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["data"].([]interface{})
	require.Len(t, entries, 1)
}

func TestAdminDeleteSelfIsNoop(t *testing.T) {
	s := newTestServer(t)
	admin := s.account(t, "root", models.RoleAdmin, true)
	cookie := s.login(t, "root")

	w := s.do(t, http.MethodPost, "/admin/users/delete/"+strconv.Itoa(int(admin.ID))+"/", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/users/", w.Header().Get("Location"))

	_, err := s.repo.Account().GetByID(context.Background(), nil, admin.ID)
	assert.NoError(t, err)

	w = s.do(t, http.MethodPost, "/admin/users/delete/4242/", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSAllowedOrigins(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
		wantCreds  string
	}{
		{"listed origin is echoed", testBaseURL, testBaseURL, "true"},
		{"foreign origin gets nothing", "https://evil.example", "", ""},
		{"sibling port gets nothing", "http://localhost:9999", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range []string{http.MethodGet, http.MethodOptions} {
				req := httptest.NewRequest(method, testBaseURL+"/questions/leaderboard/", nil)
				req.Header.Set("Origin", tt.origin)
				w := httptest.NewRecorder()
				s.router.ServeHTTP(w, req)

				assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"), method)
				assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"), method)
			}
		})
	}
}

func TestDashboardAccess(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "stud", models.RoleStudent, true)
	s.account(t, "teach", models.RoleTeacher, true)
	s.account(t, "root", models.RoleAdmin, true)
	student := s.login(t, "stud")
	teacher := s.login(t, "teach")
	admin := s.login(t, "root")

	for _, cookie := range []*http.Cookie{student, teacher, admin} {
		w := s.do(t, http.MethodGet, "/dashboard/student/", nil, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(t, http.MethodGet, "/dashboard/teacher/", nil, student)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LandingPath, w.Header().Get("Location"))

	w = s.do(t, http.MethodGet, "/dashboard/admin/", nil, teacher)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LandingPath, w.Header().Get("Location"))
}

func TestQuestionsHideAuthorDetails(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "stud", models.RoleStudent, true)
	s.account(t, "teach", models.RoleTeacher, true)
	student := s.login(t, "stud")
	teacher := s.login(t, "teach")

	w := s.do(t, http.MethodPost, "/questions/add/", gin.H{"question_text": "2+2?"}, teacher)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	qid := int(decode(t, w)["data"].(map[string]interface{})["id"].(float64))

	for _, path := range []string{"/questions/", "/questions/take/" + strconv.Itoa(qid) + "/", "/dashboard/student/"} {
		w = s.do(t, http.MethodGet, path, nil, student)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"author":"teach"`, path)
		assert.NotContains(t, w.Body.String(), "teach@example.com", path)
		assert.NotContains(t, w.Body.String(), "last_login_at", path)
	}
}
