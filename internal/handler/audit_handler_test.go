package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"cajachica/internal/model"
	"cajachica/internal/service"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListAuditLogs(t *testing.T) {
	audits := new(mockAudits)
	r := gin.New()
	NewAuditHandler(audits, zap.NewNop()).RegisterRoutes(r.Group(""), fakeAuthn)

	admin := service.Actor{ID: uuid.New(), Role: model.RoleAdminHead}
	audits.On("List", mock.Anything, admin, service.AuditFilter{EntityID: "abc", Page: 2, Limit: 5}).
		Return([]service.AuditLogResponse{{Action: model.ActionSubmitFundRequest, Username: "Ana Torres"}}, int64(6), nil)

	w, env := doRequest(t, r, http.MethodGet, "/api/audit-logs?entity_id=abc&page=2&limit=5", &admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Registros de auditoría obtenidos exitosamente.", env.Message)

	var page response.Paged
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 6, page.Total)
	assert.Equal(t, 2, page.Page)

	manager := service.Actor{ID: uuid.New(), Role: model.RoleGeneralManager}
	w, _ = doRequest(t, r, http.MethodGet, "/api/audit-logs", &manager, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	audits.AssertNumberOfCalls(t, "List", 1)
}
