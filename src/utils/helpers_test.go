package utils

import (
	"encoding/hex"
	"strings"
	"testing"
	"uems/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	encrypted, err := EncryptMessage(key, "hello world")
	require.NoError(t, err)
	assert.NotEqual(t, "hello world", encrypted)

	decrypted, err := DecryptMessage(key, encrypted)
	require.NoError(t, err)
	assert.Equal(t, "hello world", *decrypted)
}

func TestDecryptRejectsTamperedMessage(t *testing.T) {
	key := testKey(t)

	encrypted, err := EncryptMessage(key, "hello world")
	require.NoError(t, err)

	tampered := encrypted[:len(encrypted)-2] + "00"
	_, err = DecryptMessage(key, tampered)
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	key := testKey(t)

	_, err := DecryptMessage(key, "deadbeef")
	assert.Error(t, err)
}

func TestOrderReferenceRoundTrip(t *testing.T) {
	t.Setenv("API_REF_SECRET", strings.Repeat("cd", 32))

	descriptor := types.SettlementDescriptor{
		Reference: uuid.NewString(),
		UserID:    9,
		EventID:   1,
		SeatIDs:   []uint{42, 43},
		TicketIDs: []uint{7, 8},
		Amount:    "350.50",
		Currency:  "usd",
	}
	opaque, err := EncodeOrderReference(&descriptor)
	require.NoError(t, err)

	decoded, err := DecodeOrderReference(opaque)
	require.NoError(t, err)
	assert.Equal(t, descriptor, *decoded)
}

func TestOrderReferenceIsOpaque(t *testing.T) {
	t.Setenv("API_REF_SECRET", strings.Repeat("cd", 32))

	descriptor := types.SettlementDescriptor{Reference: "ref-1", UserID: 9, TicketIDs: []uint{7}}
	opaque, err := EncodeOrderReference(&descriptor)
	require.NoError(t, err)
	assert.NotContains(t, opaque, "ref-1")

	// sealed under a different key the reference does not decode
	t.Setenv("API_REF_SECRET", strings.Repeat("ef", 32))
	_, err = DecodeOrderReference(opaque)
	assert.Error(t, err)
}

func TestTicketCodeRoundTrip(t *testing.T) {
	t.Setenv("API_QRC_SECRET", strings.Repeat("ab", 32))

	billId := uuid.New()
	code, err := EncodeTicketCode(7, billId)
	require.NoError(t, err)

	ticketId, decodedBillId, err := DecodeTicketCode(code)
	require.NoError(t, err)
	assert.EqualValues(t, 7, ticketId)
	assert.Equal(t, billId, decodedBillId)
}
