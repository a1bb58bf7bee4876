/*
Package authsdk is a client for the Tally authentication service, and the home
of the request and response types the service speaks.

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Sign up, then confirm the emailed code to get a session.
	_, err := client.Signup(ctx, authsdk.SignupRequest{
		DisplayName: "Ada",
		Email:       "ada@example.com",
		Password:    "correct horse",
	})
	session, err := client.VerifySignup(ctx, "ada@example.com", code)

	// Later logins.
	resp, err := client.Login(ctx, authsdk.LoginRequest{Email: email, Password: password})
	me, err := client.Me(ctx, resp.Token)

Failed calls return *APIError; use IsCode to branch on a specific error code:

	if authsdk.IsCode(err, authsdk.ErrorCodeInvalidOTP) {
		// ask for the code again
	}

Sessions are plain bearer tokens valid until ExpiresAt, or until the password
is changed or reset.
*/
package authsdk
