package repository

import (
	"context"
	"testing"

	"cajachica/internal/model"
	"cajachica/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := testutil.NewPostgresMock(t)
	repo := NewFundRequestRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "fund_requests" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "state"}).
			AddRow(id.String(), "SOL-00007", string(model.StatePendingAdminApproval)))
	mock.ExpectCommit()

	err := NewTransactionManager(db).RunInTx(context.Background(), func(txCtx context.Context) error {
		req, err := repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		assert.Equal(t, "SOL-00007", req.Code)
		assert.Equal(t, model.StatePendingAdminApproval, req.State)
		return nil
	})
	require.NoError(t, err)
}

func TestFindCashFundForUpdate_LocksRow(t *testing.T) {
	db, mock := testutil.NewPostgresMock(t)
	repo := NewCashFundRepository(db)
	requestID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "cash_funds" WHERE opening_request_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "state", "opening_request_id"}).
			AddRow(uuid.NewString(), "FNRO-00003", string(model.FundActive), requestID.String()))

	fund, err := repo.FindByOpeningRequest(context.Background(), requestID, true)
	require.NoError(t, err)
	assert.Equal(t, "FNRO-00003", fund.Code)
	assert.Equal(t, requestID, fund.OpeningRequestID)
}
