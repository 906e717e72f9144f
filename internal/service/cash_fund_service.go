package service

import (
	"context"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CashFundFilter struct {
	State           model.FundState
	Code            string
	AreaID          *uuid.UUID
	ResponsibleName string
	Page            int
	Limit           int
}

// CashFundService exposes funds for reading. Funds are only created and
// changed through approved fund requests.
type CashFundService interface {
	List(ctx context.Context, actor Actor, filter CashFundFilter) ([]CashFundResponse, int64, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*CashFundResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type cashFundService struct {
	tx     repository.TransactionManager
	funds  repository.CashFundRepository
	users  repository.UserRepository
	audits repository.AuditRepository
	log    *zap.Logger
}

func NewCashFundService(
	tx repository.TransactionManager,
	funds repository.CashFundRepository,
	users repository.UserRepository,
	audits repository.AuditRepository,
	log *zap.Logger,
) CashFundService {
	if log == nil {
		log = zap.NewNop()
	}
	return &cashFundService{tx: tx, funds: funds, users: users, audits: audits, log: log}
}

func (s *cashFundService) List(ctx context.Context, actor Actor, f CashFundFilter) ([]CashFundResponse, int64, error) {
	filter := repository.CashFundFilter{
		State:           f.State,
		CodeContains:    f.Code,
		ResponsibleName: f.ResponsibleName,
	}
	switch actor.Tier() {
	case model.TierSuperAdmin, model.TierAdmin, model.TierManager:
		filter.AreaID = f.AreaID
	case model.TierArea:
		filter.ResponsibleID = &actor.ID
	default:
		return nil, 0, apperror.Forbidden("Acceso denegado. Su rol no puede listar fondos de efectivo.")
	}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		filter.Offset = (page - 1) * f.Limit
		filter.Limit = f.Limit
	}

	funds, total, err := s.funds.List(ctx, filter)
	if err != nil {
		return nil, 0, internalErr("failed to list cash funds", err)
	}
	result := make([]CashFundResponse, 0, len(funds))
	for i := range funds {
		result = append(result, *toCashFundResponse(&funds[i]))
	}
	return result, total, nil
}

func (s *cashFundService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*CashFundResponse, error) {
	fund, err := s.funds.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "cash fund not found", "failed to load cash fund")
	}
	ok, err := s.canView(ctx, actor, fund)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Forbidden("Acceso denegado. No tiene permiso para ver este fondo.")
	}
	return toCashFundResponse(fund), nil
}

func (s *cashFundService) canView(ctx context.Context, actor Actor, fund *model.CashFund) (bool, error) {
	switch actor.Tier() {
	case model.TierSuperAdmin, model.TierAdmin, model.TierManager:
		return true, nil
	}
	if fund.ResponsibleUserID == actor.ID {
		return true, nil
	}
	if actor.Role != model.RoleAreaHead {
		return false, nil
	}
	// area heads also see the funds of their own area
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return false, translateRepoErr(err, "user not found", "failed to load user")
	}
	return user.AreaID != nil && *user.AreaID == fund.AreaID, nil
}

// Delete removes a closed fund. Active funds can only be retired through a
// Closure request.
func (s *cashFundService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsSuperAdmin() {
		return apperror.Forbidden("Acceso denegado. Solo el Super Admin puede eliminar fondos.")
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		fund, err := s.funds.FindByID(txCtx, id)
		if err != nil {
			return translateRepoErr(err, "cash fund not found", "failed to load cash fund")
		}
		if fund.IsActive() {
			return apperror.Forbidden("Solo se pueden eliminar fondos cerrados.")
		}
		if err := s.funds.Delete(txCtx, fund.ID); err != nil {
			return translateRepoErr(err, "cash fund not found", "failed to delete cash fund")
		}
		return recordAudit(txCtx, s.audits, &actor.ID, model.ActionDeleteCashFund, fund.ID.String(), fund.Code,
			map[string]interface{}{"state": fund.State})
	})
}
