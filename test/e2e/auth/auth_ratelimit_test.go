//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that credential endpoints carry the
// strict limit of 10 requests per minute per address.
func TestRateLimitLoginEndpoint(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))
	ctx := t.Context()

	for i := range 10 {
		_, err := client.Login(ctx, authsdk.LoginRequest{Email: "ghost@example.com", Password: testPassword})
		assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
		require.False(t, authsdk.IsCode(err, authsdk.ErrorCodeRateLimited), "request %d should not be limited", i+1)
	}

	_, err := client.Login(ctx, authsdk.LoginRequest{Email: "ghost@example.com", Password: testPassword})
	assertAPIError(t, err, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)
}

// TestRateLimitHealthEndpoints verifies that health probes get the lenient limit.
func TestRateLimitHealthEndpoints(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))

	for range 50 {
		health, err := client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
	}
}
