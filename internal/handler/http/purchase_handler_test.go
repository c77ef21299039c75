package http_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	handler "github.com/vasiliy-maslov/course-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
	"github.com/vasiliy-maslov/course-marketplace/internal/storage"
)

func TestPurchaseHandler_handlePurchase(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	courseID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name        string
		serviceErr  error
		wantStatus  int
		wantMessage string
	}{
		{name: "success", wantStatus: http.StatusCreated, wantMessage: "Course purchased"},
		{name: "already_purchased", serviceErr: purchase.ErrAlreadyPurchased, wantStatus: http.StatusBadRequest, wantMessage: "Course already purchased"},
		{name: "unknown_course", serviceErr: purchase.ErrCourseNotFound, wantStatus: http.StatusNotFound, wantMessage: "Course not found"},
		{name: "deleted_user", serviceErr: purchase.ErrUserNotFound, wantStatus: http.StatusUnauthorized, wantMessage: "You are not signed in"},
		{name: "unexpected", serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantMessage: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, false)

			if tt.serviceErr == nil {
				s.purchases.On("Purchase", mock.Anything, userID, courseID).
					Return(&purchase.Purchase{ID: uuid.Must(uuid.NewV4()), UserID: userID, CourseID: courseID}, nil).
					Once()
			} else {
				s.purchases.On("Purchase", mock.Anything, userID, courseID).Return(nil, tt.serviceErr).Once()
			}

			rr := s.do(t, http.MethodPost, "/course/purchase", handler.PurchaseRequest{CourseID: courseID.String()}, s.token(t, auth.ScopeUser, userID))

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.serviceErr == nil {
				resp := decodeBody[handler.PurchaseResponse](t, rr)
				assert.Equal(t, tt.wantMessage, resp.Message)
				assert.Equal(t, courseID, resp.CourseID)
				assert.False(t, resp.PurchaseID.IsNil())
			} else {
				assert.Equal(t, tt.wantMessage, decodeBody[handler.MessageResponse](t, rr).Message)
			}
			s.purchases.AssertExpectations(t)
		})
	}
}

func TestPurchaseHandler_UserRoutesRejectAdminTokens(t *testing.T) {
	s := newTestServer(t, false)
	adminToken := s.token(t, auth.ScopeAdmin, uuid.Must(uuid.NewV4()))

	rr := s.do(t, http.MethodPost, "/course/purchase", handler.PurchaseRequest{CourseID: uuid.Must(uuid.NewV4()).String()}, adminToken)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodGet, "/user/purchases", nil, adminToken)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	s.purchases.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
	s.purchases.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestPurchaseHandler_AcceptsBareToken(t *testing.T) {
	s := newTestServer(t, false)
	userID := uuid.Must(uuid.NewV4())

	s.purchases.On("ListByUser", mock.Anything, userID).Return([]purchase.Detail{}, nil).Once()

	req := newRequest(t, http.MethodGet, "/user/purchases")
	req.Header.Set("Authorization", s.token(t, auth.ScopeUser, userID))
	rr := serve(s, req)

	require.Equal(t, http.StatusOK, rr.Code)
	s.purchases.AssertExpectations(t)
}

func TestPurchaseHandler_handleListPurchases(t *testing.T) {
	s := newTestServer(t, false)
	userID := uuid.Must(uuid.NewV4())
	purchasedAt := time.Now().UTC().Truncate(time.Second)

	c := course.Course{ID: uuid.Must(uuid.NewV4()), Title: "SQL", Price: 12}
	details := []purchase.Detail{{
		Purchase: purchase.Purchase{ID: uuid.Must(uuid.NewV4()), UserID: userID, CourseID: c.ID, CreatedAt: purchasedAt},
		Course:   c,
	}}
	s.purchases.On("ListByUser", mock.Anything, userID).Return(details, nil).Once()

	rr := s.do(t, http.MethodGet, "/user/purchases", nil, s.token(t, auth.ScopeUser, userID))
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[handler.PurchasesResponse](t, rr)
	require.Len(t, resp.Purchases, 1)
	assert.Equal(t, details[0].ID, resp.Purchases[0].ID)
	assert.Equal(t, c.ID, resp.Purchases[0].CourseID)
	assert.Equal(t, "SQL", resp.Purchases[0].Course.Title)
	assert.True(t, purchasedAt.Equal(resp.Purchases[0].PurchasedAt))
	s.purchases.AssertExpectations(t)
}

func TestUploadHandler_handleCreateUploadURL(t *testing.T) {
	s := newTestServer(t, false)
	adminToken := s.token(t, auth.ScopeAdmin, uuid.Must(uuid.NewV4()))

	upload := &storage.Upload{
		UploadURL: "https://s3.example.com/courses/x.png?X-Amz-Signature=abc",
		ImageURL:  "https://cdn.example.com/courses/x.png",
		ExpiresAt: time.Now().Add(storage.UploadURLTTL),
	}
	s.images.On("PresignCourseImage", mock.Anything, "image/png").Return(upload, nil).Once()

	rr := s.do(t, http.MethodPost, "/admin/course/image", handler.ImageUploadRequest{ContentType: "image/png"}, adminToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[handler.ImageUploadResponse](t, rr)
	assert.Equal(t, upload.UploadURL, resp.UploadURL)
	assert.Equal(t, upload.ImageURL, resp.ImageURL)

	rr = s.do(t, http.MethodPost, "/admin/course/image", handler.ImageUploadRequest{ContentType: "image/gif"}, adminToken)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	s.images.AssertExpectations(t)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, false)

	rr := s.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	down := handler.NewRouter(handler.RouterDeps{
		Users:     s.users,
		Admins:    s.admins,
		Courses:   s.courses,
		Purchases: s.purchases,
		Tokens:    s.tokens,
		DB:        stubPinger{err: errors.New("connection refused")},
	})
	rr = serve(&testServer{router: down}, newRequest(t, http.MethodGet, "/health"))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	// image route is only mounted when storage is configured
	rr = serve(&testServer{router: down}, newRequest(t, http.MethodPost, "/admin/course/image"))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
