package auth

import "golang.org/x/crypto/bcrypt"

// PasscodeVerifier compares a stored hash against a candidate passcode.
type PasscodeVerifier interface {
	// Compare returns nil on match, an error otherwise.
	Compare(hashedPasscode, passcode string) error
}

// BcryptVerifier implements PasscodeVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the PasscodeVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPasscode, passcode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPasscode), []byte(passcode))
}
