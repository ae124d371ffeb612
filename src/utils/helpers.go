package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"uems/src/types"

	"github.com/google/uuid"
)

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("cipher text is too short")
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

func secretKeyFromEnv(envName string) ([]byte, error) {
	keyEnv := os.Getenv(envName)
	key, err := hex.DecodeString(keyEnv)
	if err != nil {
		return nil, fmt.Errorf("could not read key from %s: %s", envName, err.Error())
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%s is not set", envName)
	}
	return key, nil
}

// EncodeOrderReference seals a settlement descriptor into the opaque order
// reference handed to the payment gateway.
func EncodeOrderReference(descriptor *types.SettlementDescriptor) (string, error) {
	key, err := secretKeyFromEnv("API_REF_SECRET")
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(descriptor)
	if err != nil {
		return "", err
	}
	return EncryptMessage(key, string(raw))
}

func DecodeOrderReference(opaque string) (*types.SettlementDescriptor, error) {
	key, err := secretKeyFromEnv("API_REF_SECRET")
	if err != nil {
		return nil, err
	}
	message, err := DecryptMessage(key, opaque)
	if err != nil {
		return nil, err
	}
	var descriptor types.SettlementDescriptor
	if err := json.Unmarshal([]byte(*message), &descriptor); err != nil {
		return nil, err
	}
	return &descriptor, nil
}

// EncodeTicketCode produces the payload rendered into a ticket's QR image
// and presented again at the admission desk.
func EncodeTicketCode(ticketID uint, billID uuid.UUID) (string, error) {
	key, err := secretKeyFromEnv("API_QRC_SECRET")
	if err != nil {
		return "", err
	}
	rawData := map[string]any{
		"ticketId": ticketID,
		"billId":   billID.String(),
	}
	rawBytes, _ := json.Marshal(rawData)
	return EncryptMessage(key, string(rawBytes))
}

func DecodeTicketCode(code string) (uint, uuid.UUID, error) {
	key, err := secretKeyFromEnv("API_QRC_SECRET")
	if err != nil {
		return 0, uuid.Nil, err
	}
	message, err := DecryptMessage(key, code)
	if err != nil {
		return 0, uuid.Nil, err
	}
	var rawData map[string]any
	if err := json.Unmarshal([]byte(*message), &rawData); err != nil {
		return 0, uuid.Nil, err
	}
	ticketIdKey, ok := rawData["ticketId"].(float64)
	if !ok {
		return 0, uuid.Nil, errors.New("invalid ticket code payload")
	}
	billIdKey, _ := rawData["billId"].(string)
	billID, err := uuid.Parse(billIdKey)
	if err != nil {
		return 0, uuid.Nil, errors.New("invalid ticket code payload")
	}
	return uint(ticketIdKey), billID, nil
}
