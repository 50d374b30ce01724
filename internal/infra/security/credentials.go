package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"github.com/Natsdon/CECOS-Connect/internal/core/domain"
)

// Role discriminators embedded in generated CCL IDs.
var cclRoleCodes = map[domain.Role]string{
	domain.RoleStudent:  "S",
	domain.RoleFaculty:  "F",
	domain.RoleAdmin:    "A",
	domain.RoleEPRAdmin: "E",
}

// GenerateNumericCode returns a random numeric string of the given length.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	digits := make([]byte, length)
	for i, b := range buf {
		digits[i] = '0' + (b % 10)
	}

	return string(digits), nil
}

// GenerateCCLID builds a college identifier for a new account: the admission
// year, a role discriminator, and a random numeric tail.
// Example: CCL-2026-S-48215
func GenerateCCLID(role domain.Role, at time.Time) (string, error) {
	code, ok := cclRoleCodes[role]
	if !ok {
		return "", fmt.Errorf("generate ccl id: unknown role %q", role)
	}

	tail, err := GenerateNumericCode(5)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("CCL-%d-%s-%s", at.Year(), code, tail), nil
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"

// GenerateInitialPassword produces a random password for freshly provisioned
// accounts. The alphabet omits easily confused characters.
func GenerateInitialPassword(length int) (string, error) {
	if length < 8 {
		length = 12
	}

	out := make([]byte, length)
	alphabetSize := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}

	return string(out), nil
}

// GenerateSecureToken returns a base64 URL-safe random string using the
// specified number of random bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
