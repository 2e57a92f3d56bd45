// Package auth exchanges tenant application credentials for a Graph bearer
// token via the OAuth2 client-credentials flow.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"tenantmove/internal/model"
)

var (
	errUnexpectedStatusCode = errors.New("unexpected token endpoint status code")
	errEmptyToken           = errors.New("token endpoint returned an empty access token")
	errTokenExpired         = errors.New("token endpoint returned an already expired token")
)

type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Resource     string
}

type Client struct {
	http     *http.Client
	loginURL string
	log      zerolog.Logger
}

func NewClient(loginURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if loginURL == "" {
		loginURL = model.LoginBaseURL
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		loginURL: strings.TrimRight(loginURL, "/"),
		log:      log,
	}
}

// Token performs the client-credentials exchange. Called exactly once per
// run; any transport or non-2xx failure is fatal to the run.
func (c *Client) Token(ctx context.Context, creds Credentials) (model.Token, error) {
	data := url.Values{}
	data.Set("resource", creds.Resource)
	data.Set("client_id", creds.ClientID)
	data.Set("client_secret", creds.ClientSecret)
	data.Set("grant_type", "client_credentials")
	data.Set("scope", "openid")

	endpoint := fmt.Sprintf("%s/%s/oauth2/token", c.loginURL, creds.TenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return model.Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Token{}, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return model.Token{}, fmt.Errorf("%w: %d, response: %s",
			errUnexpectedStatusCode, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok model.Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return model.Token{}, fmt.Errorf("decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return model.Token{}, errEmptyToken
	}

	if err := c.inspect(tok); err != nil {
		return model.Token{}, err
	}
	return tok, nil
}

// inspect logs the token's app id and expiry without verifying the signature;
// Graph verifies it, we only refuse a token that is already dead on arrival.
func (c *Client) inspect(tok model.Token) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err != nil {
		event := c.log.Debug()
		if exp := tok.ExpiresOnUnix(); exp > 0 {
			event = event.Time("expires", time.Unix(exp, 0))
		}
		event.Msg("opaque access token acquired, skipping claim inspection")
		return nil
	}

	event := c.log.Debug()
	if appID, ok := claims["appid"].(string); ok {
		event = event.Str("appid", appID)
	}
	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil {
		event = event.Time("expires", exp.Time)
		if !exp.After(time.Now()) {
			return errTokenExpired
		}
	}
	event.Msg("access token acquired")
	return nil
}
