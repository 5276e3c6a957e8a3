package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementRepo_Create_Conversion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	tx := beginMockTx(t, mock)

	to := 4
	m := &domain.Movement{
		ID:                uuid.New(),
		Kind:              domain.MovementKindConversion,
		Address:           "a1b2",
		CurrencyID:        1,
		CounterCurrencyID: &to,
		Gross:             decimal.NewFromInt(100),
		Fee:               decimal.NewFromInt(2),
		Net:               decimal.NewFromInt(98),
		Credited:          decimal.NewFromInt(196),
		FeeRate:           decimal.RequireFromString("0.02"),
		Rate:              decimal.NewNullDecimal(decimal.NewFromInt(2)),
		CreatedAt:         time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO movements").
		WithArgs(m.ID, "CONVERSION", m.Address, m.CounterpartyAddress, 1, m.CounterCurrencyID,
			m.Gross, m.Fee, m.Net, m.Credited, m.FeeRate, m.Rate, m.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), tx, m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	tx := beginMockTx(t, mock)

	anyArgs := make([]interface{}, 13)
	for i := range anyArgs {
		anyArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO movements").
		WithArgs(anyArgs...).
		WillReturnError(errors.New("foreign key violation"))

	err = repo.Create(context.Background(), tx, &domain.Movement{ID: uuid.New(), Kind: domain.MovementKindDeposit})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert movement")
}
