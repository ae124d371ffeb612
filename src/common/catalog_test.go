package common

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seatRows(id, areaID uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "area_id", "row", "number"}).
		AddRow(id, areaID, "A", id)
}

func configRows(eventID, seatID uint, category, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "event_id", "seat_id", "category", "status"}).
		AddRow(1, eventID, seatID, category, status)
}

func priceRows(eventID uint, category, amount string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "event_id", "category", "amount", "currency", "active"}).
		AddRow(1, eventID, category, amount, "usd", true)
}

func TestResolveSeatUnknownSeat(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := ResolveSeat(gormDB, openEvent(), 42)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSeatWrongArea(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnRows(seatRows(42, 7))

	_, err := ResolveSeat(gormDB, openEvent(), 42)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSeatNotConfigured(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnRows(seatRows(42, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "seat_configurations"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := ResolveSeat(gormDB, openEvent(), 42)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSeatNotForSale(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnRows(seatRows(42, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "seat_configurations"`).
		WillReturnRows(configRows(1, 42, "standard", "unavailable"))

	_, err := ResolveSeat(gormDB, openEvent(), 42)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSeatNoActivePrice(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnRows(seatRows(42, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "seat_configurations"`).
		WillReturnRows(configRows(1, 42, "standard", "available"))
	mock.ExpectQuery(`SELECT (.+) FROM "category_prices"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := ResolveSeat(gormDB, openEvent(), 42)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSeatsUnknownEvent(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, _, _, err := ValidateSeats(gormDB, 1, []uint{42})
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSeatsEventNotOpen(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "status"}).
			AddRow(1, 1, "draft"))

	_, _, _, err := ValidateSeats(gormDB, 1, []uint{42})
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSeatsRejectsDuplicates(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "status"}).
			AddRow(1, 1, "open"))

	_, _, _, err := ValidateSeats(gormDB, 1, []uint{42, 42})
	assert.ErrorIs(t, err, ErrInvalidSeat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSeatsTotalsMixedCategories(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "area_id", "status"}).
			AddRow(1, 1, "open"))
	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnRows(seatRows(42, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "seat_configurations"`).
		WillReturnRows(configRows(1, 42, "standard", "available"))
	mock.ExpectQuery(`SELECT (.+) FROM "category_prices"`).
		WillReturnRows(priceRows(1, "standard", "100.00"))
	mock.ExpectQuery(`SELECT (.+) FROM "seats"`).
		WillReturnRows(seatRows(43, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "seat_configurations"`).
		WillReturnRows(configRows(1, 43, "vip", "available"))
	mock.ExpectQuery(`SELECT (.+) FROM "category_prices"`).
		WillReturnRows(priceRows(1, "vip", "250.50"))

	event, pricing, total, err := ValidateSeats(gormDB, 1, []uint{42, 43})
	require.NoError(t, err)
	assert.EqualValues(t, 1, event.ID)
	require.Len(t, pricing, 2)
	assert.Equal(t, "standard", pricing[0].Category)
	assert.Equal(t, "vip", pricing[1].Category)
	assert.Equal(t, "350.5", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
