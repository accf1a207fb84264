package application

import (
	"golang.org/x/crypto/bcrypt"
)

// pinHashCost fixes the bcrypt work factor for kiosk PINs. Ten rounds keeps
// the linear verification scan tolerable for single-organization worker
// counts.
const pinHashCost = 10

// HashPIN produces a salted bcrypt hash of the PIN. Every call salts
// independently, so hashing the same PIN twice yields different strings.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPIN reports whether the candidate PIN matches the stored hash.
// Mismatches and malformed hashes both return false, never an error.
func VerifyPIN(pin, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pin)) == nil
}

// ValidPINFormat reports whether the PIN is four to six ASCII digits.
func ValidPINFormat(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
