package handler

import (
	"encoding/json"
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
)

func newCashFundRouter() (*gin.Engine, *mockCashFunds) {
	funds := new(mockCashFunds)
	r := gin.New()
	NewCashFundHandler(funds, zap.NewNop()).RegisterRoutes(r.Group(""), fakeAuthn)
	return r, funds
}

func TestListCashFunds(t *testing.T) {
	r, funds := newCashFundRouter()
	actor := service.Actor{ID: uuid.New(), Role: model.RoleGeneralManager}
	areaID := uuid.New()

	funds.On("List", mock.Anything, actor, mock.MatchedBy(func(f service.CashFundFilter) bool {
		return f.AreaID != nil && *f.AreaID == areaID && f.State == model.FundActive
	})).Return([]service.CashFundResponse{{Code: "FNRO-00001", ApprovedAmount: "1500.00"}}, int64(1), nil)

	w, env := doRequest(t, r, http.MethodGet, "/api/cash-funds?state=Activo&area_id="+areaID.String(), &actor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fondos de efectivo obtenidos exitosamente.", env.Message)

	w, env = doRequest(t, r, http.MethodGet, "/api/cash-funds?area_id=xyz", &actor, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "area_id")
	funds.AssertNumberOfCalls(t, "List", 1)
}

func TestGetCashFund(t *testing.T) {
	r, funds := newCashFundRouter()
	actor := service.Actor{ID: uuid.New(), Role: model.RoleAreaHead}
	id := uuid.New()
	other := uuid.New()

	funds.On("Get", mock.Anything, actor, id).Return(&service.CashFundResponse{ID: id.String(), Code: "FNRO-00002"}, nil)
	funds.On("Get", mock.Anything, actor, other).Return(nil, apperror.Forbidden("not yours"))

	w, env := doRequest(t, r, http.MethodGet, "/api/cash-funds/"+id.String(), &actor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fund service.CashFundResponse
	require.NoError(t, json.Unmarshal(env.Data, &fund))
	assert.Equal(t, "FNRO-00002", fund.Code)

	w, env = doRequest(t, r, http.MethodGet, "/api/cash-funds/"+other.String(), &actor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not yours", env.Error)
}

func TestDeleteCashFund(t *testing.T) {
	r, funds := newCashFundRouter()
	super := service.Actor{ID: uuid.New(), Role: model.RoleSuperAdmin}
	id := uuid.New()
	funds.On("Delete", mock.Anything, super, id).Return(apperror.Forbidden("only closed cash funds can be deleted")).Once()

	w, _ := doRequest(t, r, http.MethodDelete, "/api/cash-funds/"+id.String(), &super, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	collaborator := service.Actor{ID: uuid.New(), Role: model.RoleCollaborator}
	w, _ = doRequest(t, r, http.MethodDelete, "/api/cash-funds/"+id.String(), &collaborator, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	funds.AssertExpectations(t)
}
