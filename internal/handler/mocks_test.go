package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cajachica/internal/middleware"
	"cajachica/internal/model"
	"cajachica/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- service mocks ---

type mockWorkflow struct{ mock.Mock }

func (m *mockWorkflow) Submit(ctx context.Context, actor service.Actor, in service.SubmitFundRequestInput) (*service.FundRequestResponse, error) {
	args := m.Called(ctx, actor, in)
	resp, _ := args.Get(0).(*service.FundRequestResponse)
	return resp, args.Error(1)
}

func (m *mockWorkflow) Transition(ctx context.Context, actor service.Actor, id uuid.UUID, in service.TransitionInput) (*service.TransitionResult, error) {
	args := m.Called(ctx, actor, id, in)
	res, _ := args.Get(0).(*service.TransitionResult)
	return res, args.Error(1)
}

type mockFundRequests struct{ mock.Mock }

func (m *mockFundRequests) Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*service.FundRequestResponse, error) {
	args := m.Called(ctx, actor, id)
	resp, _ := args.Get(0).(*service.FundRequestResponse)
	return resp, args.Error(1)
}

func (m *mockFundRequests) List(ctx context.Context, actor service.Actor, f service.FundRequestFilter) ([]service.FundRequestResponse, int64, error) {
	args := m.Called(ctx, actor, f)
	items, _ := args.Get(0).([]service.FundRequestResponse)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockFundRequests) Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockCashFunds struct{ mock.Mock }

func (m *mockCashFunds) List(ctx context.Context, actor service.Actor, f service.CashFundFilter) ([]service.CashFundResponse, int64, error) {
	args := m.Called(ctx, actor, f)
	items, _ := args.Get(0).([]service.CashFundResponse)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockCashFunds) Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*service.CashFundResponse, error) {
	args := m.Called(ctx, actor, id)
	resp, _ := args.Get(0).(*service.CashFundResponse)
	return resp, args.Error(1)
}

func (m *mockCashFunds) Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, in service.LoginInput) (*service.LoginResponse, error) {
	args := m.Called(ctx, in)
	resp, _ := args.Get(0).(*service.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) Me(ctx context.Context, actor service.Actor) (*service.MeResponse, error) {
	args := m.Called(ctx, actor)
	resp, _ := args.Get(0).(*service.MeResponse)
	return resp, args.Error(1)
}

type mockAreas struct{ mock.Mock }

func (m *mockAreas) List(ctx context.Context) ([]service.AreaSummary, error) {
	args := m.Called(ctx)
	areas, _ := args.Get(0).([]service.AreaSummary)
	return areas, args.Error(1)
}

type mockAudits struct{ mock.Mock }

func (m *mockAudits) List(ctx context.Context, actor service.Actor, f service.AuditFilter) ([]service.AuditLogResponse, int64, error) {
	args := m.Called(ctx, actor, f)
	logs, _ := args.Get(0).([]service.AuditLogResponse)
	return logs, args.Get(1).(int64), args.Error(2)
}

type mockRoles struct{ mock.Mock }

func (m *mockRoles) ListRoles(ctx context.Context) ([]service.RoleResponse, error) {
	args := m.Called(ctx)
	roles, _ := args.Get(0).([]service.RoleResponse)
	return roles, args.Error(1)
}

// --- helpers ---

// fakeAuthn trusts the X-Test-User and X-Test-Role headers
func fakeAuthn(c *gin.Context) {
	id, err := uuid.Parse(c.GetHeader("X-Test-User"))
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(middleware.ContextUserID, id)
	c.Set(middleware.ContextUserRole, model.RoleName(c.GetHeader("X-Test-Role")))
	c.Next()
}

type envelope struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Error      string            `json:"error"`
	Errors     map[string]string `json:"errors"`
}

func doRequest(t *testing.T, r http.Handler, method, path string, actor *service.Actor, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("X-Test-User", actor.ID.String())
		req.Header.Set("X-Test-Role", string(actor.Role))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}
