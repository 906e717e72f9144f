package service

import (
	"context"
	"errors"
	"fmt"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FundLifecycleManager creates and mutates cash funds from approved requests.
// Both operations join the caller's transaction when one is open.
type FundLifecycleManager interface {
	// CreateFromOpeningRequest returns the fund of the opening request,
	// creating it on first call. Repeated calls return the same fund.
	CreateFromOpeningRequest(ctx context.Context, req *model.FundRequest) (*model.CashFund, error)
	// ApplyModification applies an approved Increase, Decrease or Closure to
	// the fund created by req.OriginalRequestID.
	ApplyModification(ctx context.Context, req *model.FundRequest) (*model.CashFund, error)
}

type fundLifecycleManager struct {
	tx     repository.TransactionManager
	funds  repository.CashFundRepository
	audits repository.AuditRepository
	codes  CodeGenerator
	clock  Clock
	log    *zap.Logger
}

func NewFundLifecycleManager(
	tx repository.TransactionManager,
	funds repository.CashFundRepository,
	audits repository.AuditRepository,
	codes CodeGenerator,
	clock Clock,
	log *zap.Logger,
) FundLifecycleManager {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &fundLifecycleManager{tx: tx, funds: funds, audits: audits, codes: codes, clock: clock, log: log}
}

func (m *fundLifecycleManager) CreateFromOpeningRequest(ctx context.Context, req *model.FundRequest) (*model.CashFund, error) {
	if req.RequestType != model.RequestOpening {
		return nil, apperror.Internal(fmt.Sprintf("cannot open a fund from a %s request", req.RequestType), nil)
	}

	var fund *model.CashFund
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := m.funds.FindByOpeningRequest(txCtx, req.ID, true)
		if err == nil {
			fund = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internalErr("failed to look up fund", err)
		}

		code, err := m.codes.Next(txCtx, PrefixCashFund)
		if err != nil {
			return err
		}
		fund = &model.CashFund{
			Code:              code,
			ApprovedAmount:    req.RequestedAmount,
			OpeningDate:       m.clock.Now(),
			State:             model.FundActive,
			OpeningRequestID:  req.ID,
			ResponsibleUserID: req.RequesterID,
			AreaID:            req.AreaID,
		}
		if err := m.funds.Create(txCtx, fund); err != nil {
			return translateRepoErr(err, "fund not found", "failed to create fund")
		}

		return recordAudit(txCtx, m.audits, req.ManagerApproverID, model.ActionCreateCashFund, fund.ID.String(), fund.Code,
			map[string]interface{}{
				"opening_request": req.Code,
				"approved_amount": formatAmount(fund.ApprovedAmount),
			})
	})
	if err != nil {
		return nil, err
	}
	return fund, nil
}

func (m *fundLifecycleManager) ApplyModification(ctx context.Context, req *model.FundRequest) (*model.CashFund, error) {
	if !req.RequestType.IsModification() {
		return nil, apperror.Internal(fmt.Sprintf("cannot modify a fund from a %s request", req.RequestType), nil)
	}
	if req.OriginalRequestID == nil {
		return nil, apperror.FundNotFound(fmt.Sprintf("request %s has no original request", req.Code))
	}

	var fund *model.CashFund
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		fund, err = m.funds.FindByOpeningRequest(txCtx, *req.OriginalRequestID, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.FundNotFound(fmt.Sprintf("no fund for original request of %s", req.Code))
		}
		if err != nil {
			return internalErr("failed to look up fund", err)
		}

		previous := fund.ApprovedAmount
		action := model.ActionUpdateCashFund
		switch req.RequestType {
		case model.RequestIncrease, model.RequestDecrease:
			// requested amount is the new total, not a delta
			fund.ApprovedAmount = req.RequestedAmount
		case model.RequestClosure:
			now := m.clock.Now()
			reason := req.DetailReason
			fund.State = model.FundClosed
			fund.ClosureDate = &now
			fund.ClosureReason = &reason
			fund.ApprovedAmount = decimal.Zero
			action = model.ActionCloseCashFund
		}

		if err := m.funds.Update(txCtx, fund); err != nil {
			return internalErr("failed to update fund", err)
		}

		return recordAudit(txCtx, m.audits, req.ManagerApproverID, action, fund.ID.String(), fund.Code,
			map[string]interface{}{
				"request":         req.Code,
				"request_type":    req.RequestType,
				"previous_amount": formatAmount(previous),
				"approved_amount": formatAmount(fund.ApprovedAmount),
				"state":           fund.State,
			})
	})
	if err != nil {
		return nil, err
	}

	m.log.Debug("fund modified", zap.String("fund", fund.Code), zap.String("request", req.Code))
	return fund, nil
}
