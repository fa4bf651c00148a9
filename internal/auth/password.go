package auth

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/inventory-pos/internal/apperr"
)

// PasswordSymbols is the punctuation set a password must draw from.
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

const minPasswordLen = 6

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, clamped to the range
// bcrypt accepts. A zero cost selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt digest of plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.ErrWeakPassword.WithDetails(map[string]any{"failed": []string{"max_length"}})
		}
		return "", err
	}
	return string(b), nil
}

// Verify compares plain against digest. A mismatch is (false, nil); a
// digest that is not a bcrypt hash yields apperr.ErrInvalidDigest.
func (h *PasswordHasher) Verify(plain, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperr.Wrap(apperr.KindValidation, apperr.ErrInvalidDigest.Reason, apperr.ErrInvalidDigest.Message, err)
	}
}

// CheckPasswordPolicy validates plain against the password rules and
// reports every rule it breaks.
func CheckPasswordPolicy(plain string) error {
	var failed, msgs []string
	if utf8.RuneCountInString(plain) < minPasswordLen {
		failed = append(failed, "min_length")
		msgs = append(msgs, "Password must be at least 6 characters long")
	}
	if !strings.ContainsFunc(plain, unicode.IsLetter) {
		failed = append(failed, "letter")
		msgs = append(msgs, "Password must contain at least one letter")
	}
	if !strings.ContainsFunc(plain, unicode.IsDigit) {
		failed = append(failed, "digit")
		msgs = append(msgs, "Password must contain at least one number")
	}
	if !strings.ContainsAny(plain, PasswordSymbols) {
		failed = append(failed, "symbol")
		msgs = append(msgs, "Password must contain at least one special character")
	}
	if len(failed) == 0 {
		return nil
	}
	return apperr.ErrWeakPassword.
		WithMessage(strings.Join(msgs, "; ")).
		WithDetails(map[string]any{"failed": failed})
}
