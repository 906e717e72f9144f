package service

import (
	"context"
	"errors"
	"time"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FundRequestFilter struct {
	State         model.RequestState
	RequestType   model.RequestType
	Code          string
	RequesterName string
	DateFrom      *time.Time // inclusive, by creation day
	DateTo        *time.Time // inclusive, by creation day
	Page          int
	Limit         int
}

// FundRequestService answers read queries and administrative deletes.
// State changes go through WorkflowEngine.
type FundRequestService interface {
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*FundRequestResponse, error)
	List(ctx context.Context, actor Actor, filter FundRequestFilter) ([]FundRequestResponse, int64, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type fundRequestService struct {
	tx       repository.TransactionManager
	requests repository.FundRequestRepository
	funds    repository.CashFundRepository
	users    repository.UserRepository
	audits   repository.AuditRepository
	log      *zap.Logger
}

func NewFundRequestService(
	tx repository.TransactionManager,
	requests repository.FundRequestRepository,
	funds repository.CashFundRepository,
	users repository.UserRepository,
	audits repository.AuditRepository,
	log *zap.Logger,
) FundRequestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &fundRequestService{tx: tx, requests: requests, funds: funds, users: users, audits: audits, log: log}
}

func (s *fundRequestService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*FundRequestResponse, error) {
	req, err := s.requests.FindDetailed(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "fund request not found", "failed to load fund request")
	}
	if !canView(actor, req) {
		return nil, apperror.Forbidden("Acceso denegado. No tiene permiso para ver esta solicitud.")
	}
	return toFundRequestResponse(req), nil
}

// canView: super admin and administration see everything, the requester sees
// their own, an area head sees requests of users they lead, and the general
// manager sees the manager queue plus what they approved.
func canView(actor Actor, req *model.FundRequest) bool {
	if actor.ID == req.RequesterID {
		return true
	}
	switch actor.Role {
	case model.RoleSuperAdmin, model.RoleAdminHead:
		return true
	case model.RoleAreaHead:
		return req.Requester != nil && req.Requester.AreaLeadID != nil && *req.Requester.AreaLeadID == actor.ID
	case model.RoleGeneralManager:
		if req.State == model.StatePendingManagerApproval || req.State == model.StateRebuttalSubmittedToManager {
			return true
		}
		return req.ManagerApproverID != nil && *req.ManagerApproverID == actor.ID
	}
	return false
}

func (s *fundRequestService) List(ctx context.Context, actor Actor, f FundRequestFilter) ([]FundRequestResponse, int64, error) {
	filter := repository.FundRequestFilter{
		State:         f.State,
		RequestType:   f.RequestType,
		CodeContains:  f.Code,
		RequesterName: f.RequesterName,
	}
	if f.DateFrom != nil {
		from := startOfDay(*f.DateFrom)
		filter.CreatedFrom = &from
	}
	if f.DateTo != nil {
		before := startOfDay(*f.DateTo).AddDate(0, 0, 1)
		filter.CreatedBefore = &before
	}

	switch actor.Tier() {
	case model.TierSuperAdmin, model.TierAdmin:
	case model.TierManager:
		filter.ManagerID = &actor.ID
	case model.TierArea:
		filter.RequesterID = &actor.ID
	default:
		return nil, 0, apperror.Forbidden("Acceso denegado. Su rol no puede listar solicitudes de fondo.")
	}

	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		filter.Offset = (page - 1) * f.Limit
		filter.Limit = f.Limit
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, internalErr("failed to list fund requests", err)
	}

	result := make([]FundRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *toFundRequestResponse(&requests[i]))
	}
	return result, total, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Delete removes a request with all of its dependents. Only a super admin may
// delete, and never while the request's fund is still active.
func (s *fundRequestService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsSuperAdmin() {
		return apperror.Forbidden("Acceso denegado. Solo el Super Admin puede eliminar solicitudes.")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return translateRepoErr(err, "fund request not found", "failed to load fund request")
		}

		if req.RequestType == model.RequestOpening {
			fund, err := s.funds.FindByOpeningRequest(txCtx, req.ID, true)
			switch {
			case err == nil && fund.IsActive():
				return apperror.Forbidden("El fondo " + fund.Code + " está activo; ciérrelo antes de eliminar su solicitud de apertura.")
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return internalErr("failed to load fund", err)
			}
		}

		if err := s.requests.DeleteCascade(txCtx, req.ID); err != nil {
			return translateRepoErr(err, "fund request not found", "failed to delete fund request")
		}
		return recordAudit(txCtx, s.audits, &actor.ID, model.ActionDeleteFundRequest, req.ID.String(), req.Code,
			map[string]interface{}{"request_type": req.RequestType, "state": req.State})
	})
	if err != nil {
		return err
	}

	s.log.Info("fund request deleted", zap.String("request_id", id.String()), zap.String("actor", actor.ID.String()))
	return nil
}
