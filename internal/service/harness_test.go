package service

import (
	"context"
	"testing"
	"time"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type harness struct {
	db    *gorm.DB
	clock fixedClock

	requests repository.FundRequestRepository
	funds    repository.CashFundRepository
	history  repository.StateHistoryRepository
	users    repository.UserRepository
	audits   repository.AuditRepository

	lifecycle FundLifecycleManager
	engine    WorkflowEngine
	queries   FundRequestService
	cashFunds CashFundService

	area *model.Area

	areaHead     *model.User
	collaborator *model.User
	admin        *model.User
	admin2       *model.User
	manager      *model.User
	manager2     *model.User
	super        *model.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{
		db:       db,
		clock:    fixedClock{t: time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)},
		requests: repository.NewFundRequestRepository(db),
		funds:    repository.NewCashFundRepository(db),
		history:  repository.NewStateHistoryRepository(db),
		users:    repository.NewUserRepository(db),
		audits:   repository.NewAuditRepository(db),
	}
	tx := repository.NewTransactionManager(db)
	log := zap.NewNop()
	codes := NewCodeGenerator(db, h.requests, h.funds, log)

	h.lifecycle = NewFundLifecycleManager(tx, h.funds, h.audits, codes, h.clock, log)
	h.engine = NewWorkflowEngine(WorkflowDeps{
		Tx:        tx,
		Requests:  h.requests,
		History:   h.history,
		Funds:     h.funds,
		Users:     h.users,
		Areas:     repository.NewAreaRepository(db),
		Audits:    h.audits,
		Codes:     codes,
		Lifecycle: h.lifecycle,
		Clock:     h.clock,
		Log:       log,
	})
	h.queries = NewFundRequestService(tx, h.requests, h.funds, h.users, h.audits, log)
	h.cashFunds = NewCashFundService(tx, h.funds, h.users, h.audits, log)

	h.area = testutil.CreateArea(t, db, "Operaciones")
	h.areaHead = testutil.CreateUser(t, db, model.RoleAreaHead, "Ana", h.area)
	h.collaborator = testutil.CreateUser(t, db, model.RoleCollaborator, "Carlos", h.area)
	h.collaborator.AreaLeadID = &h.areaHead.ID
	require.NoError(t, db.Model(h.collaborator).Update("area_lead_id", h.areaHead.ID).Error)
	h.admin = testutil.CreateUser(t, db, model.RoleAdminHead, "Adriana", nil)
	h.admin2 = testutil.CreateUser(t, db, model.RoleAdminHead, "Alberto", nil)
	h.manager = testutil.CreateUser(t, db, model.RoleGeneralManager, "Gustavo", nil)
	h.manager2 = testutil.CreateUser(t, db, model.RoleGeneralManager, "Gabriela", nil)
	h.super = testutil.CreateUser(t, db, model.RoleSuperAdmin, "Sofia", nil)
	return h
}

func actorOf(u *model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func openingInput(h *harness, amt string) SubmitFundRequestInput {
	return SubmitFundRequestInput{
		RequestType:     model.RequestOpening,
		AreaID:          h.area.ID,
		DetailReason:    "Caja chica para gastos menores del área",
		RequestedAmount: amount(amt),
		Priority:        model.PriorityMedium,
		ExpenseLines: []ExpenseLineInput{
			{Description: "Movilidad", EstimatedAmount: decimal.RequireFromString("500")},
			{Description: "Útiles de oficina", EstimatedAmount: decimal.RequireFromString("1000")},
		},
	}
}

func modificationInput(h *harness, typ model.RequestType, originalID string, amt string) SubmitFundRequestInput {
	id := uuid.MustParse(originalID)
	in := SubmitFundRequestInput{
		RequestType:       typ,
		AreaID:            h.area.ID,
		DetailReason:      "Ajuste del fondo",
		RequestedAmount:   amount(amt),
		Priority:          model.PriorityHigh,
		OriginalRequestID: &id,
	}
	if typ.HasExpenseLines() {
		in.ExpenseLines = []ExpenseLineInput{{Description: "Movilidad", EstimatedAmount: decimal.RequireFromString("100")}}
	}
	return in
}

func (h *harness) submit(t *testing.T, actor *model.User, in SubmitFundRequestInput) *FundRequestResponse {
	t.Helper()
	resp, err := h.engine.Submit(context.Background(), actorOf(actor), in)
	require.NoError(t, err)
	return resp
}

func (h *harness) transition(t *testing.T, actor *model.User, requestID string, in TransitionInput) *TransitionResult {
	t.Helper()
	res, err := h.engine.Transition(context.Background(), actorOf(actor), uuid.MustParse(requestID), in)
	require.NoError(t, err)
	return res
}

func (h *harness) tryTransition(actor *model.User, requestID string, target model.RequestState) error {
	_, err := h.engine.Transition(context.Background(), actorOf(actor), uuid.MustParse(requestID), TransitionInput{
		TargetState:          target,
		ObservationReason:    "observación",
		RebuttalReason:       "descargo",
		FinalRejectionReason: "rechazo",
	})
	return err
}

// openFund runs an opening request by the area head through both approval
// tiers and returns the request and the fund it created.
func (h *harness) openFund(t *testing.T, amt string) (*FundRequestResponse, *CashFundResponse) {
	t.Helper()
	req := h.submit(t, h.areaHead, openingInput(h, amt))
	h.transition(t, h.admin, req.ID, TransitionInput{TargetState: model.StateApprovedByAdmin})
	res := h.transition(t, h.manager, req.ID, TransitionInput{TargetState: model.StateApproved})
	require.NotNil(t, res.Fund)
	return res.Request, res.Fund
}

func (h *harness) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(m).Count(&n).Error)
	return n
}
