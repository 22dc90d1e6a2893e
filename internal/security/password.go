package security

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor. Fixed at 10, the cost the existing user table was
// hashed with. Changing it only affects newly stored hashes.
const bcryptCost = 10

// HashPassword hashes a plain text password with bcrypt. The salt is
// generated per call and embedded in the returned hash string.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
