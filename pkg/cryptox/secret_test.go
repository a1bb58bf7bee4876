package cryptox

import (
	"encoding/hex"
	"strconv"
	"testing"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for _, digits := range []otp.Digits{otp.DigitsSix, otp.DigitsEight} {
		t.Run(digits.String(), func(t *testing.T) {
			for range 50 {
				code, err := GenerateOTP(digits)
				require.NoError(t, err)
				require.Len(t, code, digits.Length())

				_, err = strconv.Atoi(code)
				require.NoError(t, err, "otp should be numeric")
			}
		})
	}
}

func TestGenerateOTP_InvalidWidth(t *testing.T) {
	for _, n := range []int{0, 3, 10} {
		code, err := GenerateOTP(otp.Digits(n))
		require.Error(t, err)
		require.Empty(t, code)
	}
}

func TestGenerateOTP_Spread(t *testing.T) {
	seen := make(map[string]struct{})
	for range 200 {
		code, err := GenerateOTP(otp.DigitsSix)
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 200 draws from a million values collide rarely.
	require.Greater(t, len(seen), 190)
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)
	require.Len(t, token, ResetTokenSize*2)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, ResetTokenSize)

	other, err := GenerateResetToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestMatchFingerprint(t *testing.T) {
	digest := FingerprintToken("123456")
	require.True(t, MatchFingerprint("123456", digest))
	require.False(t, MatchFingerprint("123457", digest))
	require.False(t, MatchFingerprint("", digest))
}
