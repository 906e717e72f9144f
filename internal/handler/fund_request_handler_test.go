package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"cajachica/internal/model"
	"cajachica/internal/service"
	"cajachica/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newFundRequestRouter(log *zap.Logger) (*gin.Engine, *mockWorkflow, *mockFundRequests) {
	wf := new(mockWorkflow)
	queries := new(mockFundRequests)
	r := gin.New()
	NewFundRequestHandler(wf, queries, log).RegisterRoutes(r.Group(""), fakeAuthn)
	return r, wf, queries
}

func TestSubmitFundRequest(t *testing.T) {
	r, wf, _ := newFundRequestRouter(zap.NewNop())
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAreaHead}

	wf.On("Submit", mock.Anything, actor, mock.MatchedBy(func(in service.SubmitFundRequestInput) bool {
		return in.RequestType == model.RequestOpening && in.RequestedAmount != nil && in.RequestedAmount.String() == "1500.5"
	})).Return(&service.FundRequestResponse{ID: uuid.NewString(), Code: "SOL-00007"}, nil)

	w, env := doRequest(t, r, http.MethodPost, "/api/fund-requests", &actor, map[string]interface{}{
		"request_type":     "Apertura",
		"area_id":          uuid.NewString(),
		"detail_reason":    "gastos",
		"requested_amount": "1500.50",
		"priority":         "Media",
		"expense_lines":    []map[string]interface{}{{"description": "Movilidad", "estimated_amount": 1500.5}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Solicitud de fondo creada exitosamente. Código: SOL-00007", env.Message)
	wf.AssertExpectations(t)
}

func TestSubmitFundRequestErrors(t *testing.T) {
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAreaHead}

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperror.ValidationField("requested_amount", "must be greater than 0"), http.StatusUnprocessableEntity},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden},
		{"conflict", apperror.ModificationConflict("pending"), http.StatusConflict},
		{"internal", apperror.Internal("db down", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, wf, _ := newFundRequestRouter(zap.NewNop())
			wf.On("Submit", mock.Anything, actor, mock.Anything).Return(nil, tc.err)

			w, env := doRequest(t, r, http.MethodPost, "/api/fund-requests", &actor, map[string]interface{}{"request_type": "Apertura"})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "error", env.Status)
			if tc.status == http.StatusUnprocessableEntity {
				assert.Equal(t, "must be greater than 0", env.Errors["requested_amount"])
			}
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, env.Error, "boom")
			}
		})
	}
}

func TestSubmitMalformedPayload(t *testing.T) {
	r, wf, _ := newFundRequestRouter(zap.NewNop())
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAreaHead}

	w, _ := doRequest(t, r, http.MethodPost, "/api/fund-requests", &actor, `{"request_type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	wf.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionFundRequest(t *testing.T) {
	r, wf, _ := newFundRequestRouter(zap.NewNop())
	actor := service.Actor{ID: uuid.New(), Role: model.RoleGeneralManager}
	id := uuid.New()

	wf.On("Transition", mock.Anything, actor, id, service.TransitionInput{TargetState: model.StateApproved}).
		Return(&service.TransitionResult{
			Message:   "¡Éxito! Solicitud de Apertura aprobada. Fondo asignado: FNRO-00001",
			Milestone: model.StateApproved,
			LiveState: model.StateApproved,
			Fund:      &service.CashFundResponse{Code: "FNRO-00001"},
		}, nil)

	w, env := doRequest(t, r, http.MethodPut, "/api/fund-requests/"+id.String()+"/state", &actor,
		map[string]string{"target_state": "Aprobada"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "¡Éxito! Solicitud de Apertura aprobada. Fondo asignado: FNRO-00001", env.Message)

	var result service.TransitionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, model.StateApproved, result.LiveState)
	assert.Equal(t, "FNRO-00001", result.Fund.Code)
}

func TestTransitionErrorStatuses(t *testing.T) {
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAdminHead}
	id := uuid.New()

	for err, status := range map[error]int{
		apperror.InvalidTransition("terminal"):  http.StatusConflict,
		apperror.NotFound("missing"):           http.StatusNotFound,
		apperror.FundNotFound("fund vanished"): http.StatusInternalServerError,
	} {
		core, logs := observer.New(zapcore.ErrorLevel)
		r, wf, _ := newFundRequestRouter(zap.New(core))
		wf.On("Transition", mock.Anything, actor, id, mock.Anything).Return(nil, err)

		w, _ := doRequest(t, r, http.MethodPut, "/api/fund-requests/"+id.String()+"/state", &actor,
			map[string]string{"target_state": "Aprobada ADM"})
		assert.Equal(t, status, w.Code, err.Error())
		if status == http.StatusInternalServerError {
			assert.Equal(t, 1, logs.Len())
		} else {
			assert.Zero(t, logs.Len())
		}
	}
}

func TestTransitionBadID(t *testing.T) {
	r, wf, _ := newFundRequestRouter(zap.NewNop())
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAdminHead}

	w, env := doRequest(t, r, http.MethodPut, "/api/fund-requests/not-a-uuid/state", &actor,
		map[string]string{"target_state": "Aprobada ADM"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "id")
	wf.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListFundRequests(t *testing.T) {
	r, _, queries := newFundRequestRouter(zap.NewNop())
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAdminHead}

	queries.On("List", mock.Anything, actor, mock.MatchedBy(func(f service.FundRequestFilter) bool {
		return f.State == model.StatePendingAdminApproval &&
			f.RequesterName == "ana" &&
			f.Page == 2 && f.Limit == 5 &&
			f.DateFrom != nil && f.DateFrom.Day() == 1 &&
			f.DateTo == nil
	})).Return([]service.FundRequestResponse{{Code: "SOL-00001"}}, int64(6), nil)

	w, env := doRequest(t, r, http.MethodGet,
		"/api/fund-requests?state=Pendiente+Aprobaci%C3%B3n+ADM&requester_name=ana&date_from=2026-03-01&page=2&limit=5", &actor, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var paged struct {
		Items []service.FundRequestResponse `json:"items"`
		Total int64                         `json:"total"`
		Page  int                           `json:"page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &paged))
	assert.Equal(t, int64(6), paged.Total)
	assert.Equal(t, 2, paged.Page)
	require.Len(t, paged.Items, 1)
	queries.AssertExpectations(t)
}

func TestListFundRequestsBadDate(t *testing.T) {
	r, _, queries := newFundRequestRouter(zap.NewNop())
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAdminHead}

	w, env := doRequest(t, r, http.MethodGet, "/api/fund-requests?date_to=03/01/2026", &actor, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "date_to")
	queries.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetFundRequestRequiresAuth(t *testing.T) {
	r, _, _ := newFundRequestRouter(zap.NewNop())
	w, _ := doRequest(t, r, http.MethodGet, "/api/fund-requests/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteFundRequestRole(t *testing.T) {
	r, _, queries := newFundRequestRouter(zap.NewNop())
	id := uuid.New()
	super := service.Actor{ID: uuid.New(), Role: model.RoleSuperAdmin}
	admin := service.Actor{ID: uuid.New(), Role: model.RoleAdminHead}
	queries.On("Delete", mock.Anything, super, id).Return(nil).Once()

	w, env := doRequest(t, r, http.MethodDelete, "/api/fund-requests/"+id.String(), &super, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Solicitud de fondo eliminada exitosamente.", env.Message)

	w, _ = doRequest(t, r, http.MethodDelete, "/api/fund-requests/"+id.String(), &admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	queries.AssertExpectations(t)
}
