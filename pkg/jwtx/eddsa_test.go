package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestEdDSASignAndVerify(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewEdDSA(pemKey, jwtx.VerifyOptions{Issuer: exampleIssuer})
	require.NoError(t, err)
	require.Equal(t, "EdDSA", signer.Alg())
	require.Len(t, signer.PublicKey(), 32)

	claims := jwtx.NewSessionClaims("user-456", "e@example.com", exampleIssuer, 5*time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	parsed, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Issuer, parsed.Issuer)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.NotEmpty(t, parsed.ID)
}

func TestEdDSAVerifyFailsForOtherKey(t *testing.T) {
	pem1, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	pem2, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer1, err := jwtx.NewEdDSA(pem1, jwtx.VerifyOptions{})
	require.NoError(t, err)
	signer2, err := jwtx.NewEdDSA(pem2, jwtx.VerifyOptions{})
	require.NoError(t, err)

	token, err := signer1.Sign(jwtx.NewSessionClaims("user-1", "", "", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = signer2.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestEdDSAVerifyFailsForHS256Token(t *testing.T) {
	hs, err := jwtx.NewHS256(testSecret, jwtx.VerifyOptions{})
	require.NoError(t, err)
	token, err := hs.Sign(jwtx.NewSessionClaims("user-1", "", "", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	ed, err := jwtx.NewEdDSA(pemKey, jwtx.VerifyOptions{})
	require.NoError(t, err)

	_, err = ed.Verify(token)
	require.Error(t, err)
}

func TestEdDSAFailsForInvalidKey(t *testing.T) {
	_, err := jwtx.NewEdDSA([]byte("not-a-pem-key"), jwtx.VerifyOptions{})
	require.ErrorIs(t, err, jwtx.ErrInvalidKey)
	require.Contains(t, err.Error(), "invalid PEM")
}
