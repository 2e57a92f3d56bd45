package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() Credentials {
	return Credentials{
		TenantID:     "contoso-tenant",
		ClientID:     "client-1",
		ClientSecret: "s3cret",
		Resource:     "https://graph.microsoft.com",
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"appid": "client-1",
		"exp":   exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestTokenExchangeSendsClientCredentialsForm(t *testing.T) {
	accessToken := signedToken(t, time.Now().Add(time.Hour))

	var gotPath string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotForm = map[string]string{
			"resource":      r.PostFormValue("resource"),
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"grant_type":    r.PostFormValue("grant_type"),
			"scope":         r.PostFormValue("scope"),
		}
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_on":"253370764800"}`, accessToken)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	tok, err := client.Token(context.Background(), testCredentials())
	require.NoError(t, err)

	assert.Equal(t, "/contoso-tenant/oauth2/token", gotPath)
	assert.Equal(t, map[string]string{
		"resource":      "https://graph.microsoft.com",
		"client_id":     "client-1",
		"client_secret": "s3cret",
		"grant_type":    "client_credentials",
		"scope":         "openid",
	}, gotForm)
	assert.Equal(t, "Bearer "+accessToken, tok.Authorization())
}

func TestTokenExchangeRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := client.Token(context.Background(), testCredentials())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpectedStatusCode)
	assert.Contains(t, err.Error(), "invalid_client")
}

func TestTokenExchangeRejectsEmptyAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"token_type":"Bearer"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := client.Token(context.Background(), testCredentials())
	require.ErrorIs(t, err, errEmptyToken)
}

func TestTokenExchangeRejectsExpiredToken(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer"}`, expired)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := client.Token(context.Background(), testCredentials())
	require.ErrorIs(t, err, errTokenExpired)
}

func TestTokenExchangeAcceptsOpaqueToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"access_token":"not-a-jwt","token_type":"Bearer"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	tok, err := client.Token(context.Background(), testCredentials())
	require.NoError(t, err)
	assert.Equal(t, "Bearer not-a-jwt", tok.Authorization())
}

func TestTokenExchangeTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, zerolog.Nop())
	_, err := client.Token(context.Background(), testCredentials())
	require.Error(t, err)
}
