package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/pquerna/otp"
)

// ResetTokenSize is the number of random bytes behind a password reset token.
// Hex encoding doubles it, so tokens are 48 characters long.
const ResetTokenSize = 24

// GenerateOTP returns a uniformly distributed numeric code of the given width,
// left-padded with zeros.
func GenerateOTP(digits otp.Digits) (string, error) {
	n := digits.Length()
	if n < 4 || n > 9 {
		return "", fmt.Errorf("otp width must be between 4 and 9 digits, got %d", n)
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	return digits.Format(int32(v.Int64())), nil // #nosec G115 - bounded by 10^9
}

// GenerateResetToken returns a hex encoded random token suitable for use in a
// password reset link.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MatchFingerprint reports whether value fingerprints to the stored digest,
// comparing in constant time.
func MatchFingerprint(value, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(FingerprintToken(value)), []byte(digest)) == 1
}
