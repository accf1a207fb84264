package application

import "golang.org/x/crypto/bcrypt"

// passwordHashCost matches the PIN work factor for admin dashboard passwords.
const passwordHashCost = 10

// HashPassword produces a salted bcrypt hash for an admin password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the candidate password matches the stored hash.
func VerifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
