package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/course-marketplace/internal/account"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	handler "github.com/vasiliy-maslov/course-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
	"github.com/vasiliy-maslov/course-marketplace/internal/storage"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) SignUp(ctx context.Context, input account.SignUpInput) (*account.Account, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) SignIn(ctx context.Context, email, password string) (*account.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) Create(ctx context.Context, creatorID uuid.UUID, input course.CreateInput) (*course.Course, error) {
	args := m.Called(ctx, creatorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseService) Update(ctx context.Context, creatorID, courseID uuid.UUID, patch course.Patch) (*course.Course, error) {
	args := m.Called(ctx, creatorID, courseID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseService) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]course.Course, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]course.Course), args.Error(1)
}

func (m *MockCourseService) List(ctx context.Context) ([]course.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]course.Course), args.Error(1)
}

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Purchase(ctx context.Context, userID, courseID uuid.UUID) (*purchase.Purchase, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseService) ListByUser(ctx context.Context, userID uuid.UUID) ([]purchase.Detail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchase.Detail), args.Error(1)
}

type MockImageSigner struct {
	mock.Mock
}

func (m *MockImageSigner) PresignCourseImage(ctx context.Context, contentType string) (*storage.Upload, error) {
	args := m.Called(ctx, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Upload), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type testServer struct {
	router    http.Handler
	users     *MockAccountService
	admins    *MockAccountService
	courses   *MockCourseService
	purchases *MockPurchaseService
	images    *MockImageSigner
	tokens    *auth.TokenManager
}

func newTestServer(t *testing.T, showErrorDetail bool) *testServer {
	t.Helper()

	tokens, err := auth.NewTokenManager("user-secret", "admin-secret", "course-marketplace-test", time.Hour)
	require.NoError(t, err)

	s := &testServer{
		users:     new(MockAccountService),
		admins:    new(MockAccountService),
		courses:   new(MockCourseService),
		purchases: new(MockPurchaseService),
		images:    new(MockImageSigner),
		tokens:    tokens,
	}
	s.router = handler.NewRouter(handler.RouterDeps{
		Users:              s.users,
		Admins:             s.admins,
		Courses:            s.courses,
		Purchases:          s.purchases,
		Tokens:             tokens,
		Images:             s.images,
		DB:                 stubPinger{},
		CORSAllowedOrigins: []string{"*"},
		ShowErrorDetail:    showErrorDetail,
	})
	return s
}

func (s *testServer) token(t *testing.T, scope auth.Scope, id uuid.UUID) string {
	t.Helper()
	token, _, err := s.tokens.Issue(scope, id, scope.String()+"@example.com")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "Failed to decode response body")
	return v
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}
