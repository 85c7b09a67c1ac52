package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
	// TpinCost is the bcrypt cost for transaction PINs. PINs are short and
	// rate-limited upstream, a lower cost keeps pay latency reasonable.
	TpinCost = 10
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashTpin hashes a transaction PIN using bcrypt
func HashTpin(tpin string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(tpin), TpinCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash tpin: %w", err)
	}
	return string(bytes), nil
}

// CheckTpin compares a transaction PIN with a hash
func CheckTpin(tpin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(tpin)) == nil
}

// GenerateRandomToken generates a random token of specified length in bytes
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateTempPassword generates a 16-character temporary password used by
// admin-initiated partner password resets.
func GenerateTempPassword() (string, error) {
	return GenerateRandomToken(8)
}
