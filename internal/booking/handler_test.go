package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitclub/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RegisterForClass(ctx context.Context, memberID, classID int) (*ClassRegistration, error) {
	args := m.Called(ctx, memberID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassRegistration), args.Error(1)
}

func (m *MockService) SchedulePTSession(ctx context.Context, req ScheduleRequest) (*PTSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PTSession), args.Error(1)
}

// setupRouter mounts the handler behind a fake auth step acting as the given principal.
func setupRouter(svc Service, role string, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	})

	h := NewHandler(svc)
	r.POST("/members/:memberID/classes/:classID/register", h.RegisterForClass)
	r.POST("/members/:memberID/classes/register", h.RegisterForClassByBody)
	r.POST("/members/:memberID/pt-sessions", h.SchedulePTSession)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandler_RegisterForClass(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		role           string
		userID         int
		setupMock      func(*MockService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "registered",
			path:   "/members/3/classes/12/register",
			role:   "member",
			userID: 3,
			setupMock: func(m *MockService) {
				m.On("RegisterForClass", mock.Anything, 3, 12).Return(&ClassRegistration{ID: 1, MemberID: 3, ClassID: 12}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "class full",
			path:   "/members/3/classes/12/register",
			role:   "member",
			userID: 3,
			setupMock: func(m *MockService) {
				m.On("RegisterForClass", mock.Anything, 3, 12).
					Return(nil, &ConflictError{Reason: ErrCapacityExceeded, Resource: ResourceKey{Kind: KindClass, ID: 12}})
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CAPACITY_EXCEEDED",
		},
		{
			name:   "class missing",
			path:   "/members/3/classes/12/register",
			role:   "member",
			userID: 3,
			setupMock: func(m *MockService) {
				m.On("RegisterForClass", mock.Anything, 3, 12).
					Return(nil, &NotFoundError{Resource: ResourceKey{Kind: KindClass, ID: 12}})
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:   "storage failure hides details",
			path:   "/members/3/classes/12/register",
			role:   "member",
			userID: 3,
			setupMock: func(m *MockService) {
				m.On("RegisterForClass", mock.Anything, 3, 12).
					Return(nil, &InfrastructureError{Op: "insert", Err: errors.New("pq: password authentication failed")})
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INFRASTRUCTURE_ERROR",
		},
		{
			name:           "other member",
			path:           "/members/4/classes/12/register",
			role:           "member",
			userID:         3,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "admin on behalf of member",
			path:   "/members/4/classes/12/register",
			role:   "admin",
			userID: 1,
			setupMock: func(m *MockService) {
				m.On("RegisterForClass", mock.Anything, 4, 12).Return(&ClassRegistration{ID: 2, MemberID: 4, ClassID: 12}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad class id",
			path:           "/members/3/classes/abc/register",
			role:           "member",
			userID:         3,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			router := setupRouter(svc, tt.role, tt.userID)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, resp.Code)
				assert.NotContains(t, resp.Error, "password")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_RegisterForClassByBody(t *testing.T) {
	svc := new(MockService)
	svc.On("RegisterForClass", mock.Anything, 3, 12).Return(&ClassRegistration{ID: 1, MemberID: 3, ClassID: 12}, nil)
	router := setupRouter(svc, "member", 3)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/members/3/classes/register", bytes.NewBufferString(`{"class_id": 12}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/members/3/classes/register", bytes.NewBufferString(`{"class_id": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "RegisterForClass", 1)
}

func TestHandler_SchedulePTSession(t *testing.T) {
	body := `{"trainer_id": 5, "room_id": 2, "start_time": "2025-11-03T10:30:00Z", "end_time": "2025-11-03T11:30:00Z"}`
	expectedReq := ScheduleRequest{MemberID: 3, TrainerID: 5, RoomID: 2, StartTime: at(10, 30), EndTime: at(11, 30)}

	t.Run("scheduled", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SchedulePTSession", mock.Anything, mock.MatchedBy(func(r ScheduleRequest) bool {
			return r.MemberID == 3 && r.TrainerID == 5 && r.RoomID == 2 &&
				r.StartTime.Equal(expectedReq.StartTime) && r.EndTime.Equal(expectedReq.EndTime)
		})).Return(&PTSession{ID: 9, MemberID: 3, TrainerID: 5, RoomID: 2, StartTime: at(10, 30), EndTime: at(11, 30)}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/members/3/pt-sessions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, "member", 3).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var session PTSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, 9, session.ID)
	})

	t.Run("trainer busy", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SchedulePTSession", mock.Anything, mock.Anything).
			Return(nil, &ConflictError{Reason: ErrTrainerUnavailable, Resource: ResourceKey{Kind: KindTrainer, ID: 5}, SessionID: 1})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/members/3/pt-sessions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, "member", 3).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "TRAINER_UNAVAILABLE", decodeError(t, w).Code)
	})

	t.Run("invalid interval", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SchedulePTSession", mock.Anything, mock.Anything).
			Return(nil, &ValidationError{Field: "end_time", Err: ErrInvalidInterval})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/members/3/pt-sessions",
			bytes.NewBufferString(`{"trainer_id": 5, "room_id": 2, "start_time": "2025-11-03T11:30:00Z", "end_time": "2025-11-03T10:30:00Z"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, "member", 3).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INTERVAL", decodeError(t, w).Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockService)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/members/3/pt-sessions", bytes.NewBufferString(`{"room_id": 2}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, "member", 3).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SchedulePTSession", mock.Anything, mock.Anything)
	})
}
