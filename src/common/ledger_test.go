package common

import (
	"log"
	"testing"
	"time"
	"uems/src/models"
	"uems/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockdb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockdb,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	t.Cleanup(func() { mockdb.Close() })
	return gormDB, mock
}

func openEvent() *models.Event {
	return &models.Event{ID: 1, AreaID: 1, Status: types.EVENT_OPEN}
}

func pricingFor(seatIDs ...uint) []SeatPricing {
	pricing := make([]SeatPricing, 0, len(seatIDs))
	for _, id := range seatIDs {
		pricing = append(pricing, SeatPricing{SeatID: id, Category: "standard"})
	}
	return pricing
}

func TestTryHoldRejectsVisiblyTakenSeats(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "seat_id" FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(42))

	ids, err := TryHold(gormDB, openEvent(), 9, pricingFor(42, 43), nil, nil)
	assert.Nil(t, ids)
	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryHoldLosesInsertRace(t *testing.T) {
	gormDB, mock := newMockDB(t)

	// pre-check sees nothing: the competing hold lands in the race window
	mock.ExpectQuery(`SELECT "seat_id" FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	// the first ticket of the batch is taken back
	mock.ExpectExec(`DELETE FROM "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ids, err := TryHold(gormDB, openEvent(), 9, pricingFor(42, 43), nil, nil)
	assert.Nil(t, ids)
	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryHoldInsertFailureIsNotAConflict(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "seat_id" FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnError(gorm.ErrInvalidDB)

	ids, err := TryHold(gormDB, openEvent(), 9, pricingFor(42), nil, nil)
	assert.Nil(t, ids)
	assert.ErrorIs(t, err, ErrSettlementFailed)
	assert.NotErrorIs(t, err, ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryHoldClaimsWholeBatch(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "seat_id" FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	reference := uuid.NewString()
	expiresAt := time.Now().Add(time.Hour)
	ids, err := TryHold(gormDB, openEvent(), 9, pricingFor(42, 43), &reference, &expiresAt)
	require.NoError(t, err)
	assert.Equal(t, []uint{11, 12}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteMovesEveryHold(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := Promote(gormDB, []uint{11, 12}, uuid.New(), time.Now())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteFailsWhenAHoldIsGone(t *testing.T) {
	gormDB, mock := newMockDB(t)

	// one of the holds was swept or released in the meantime
	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := Promote(gormDB, []uint{11, 12}, uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrSettlementFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseIsIdempotent(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	released, err := Release(gormDB, []uint{11, 12})
	require.NoError(t, err)
	assert.EqualValues(t, 2, released)

	released, err = Release(gormDB, []uint{11, 12})
	require.NoError(t, err)
	assert.EqualValues(t, 0, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseWithNothingToReleaseTouchesNothing(t *testing.T) {
	gormDB, mock := newMockDB(t)

	released, err := Release(gormDB, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}
