package portalauth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const (
	routeSignup         = "/auth/signup"
	routeLogin          = "/auth/login"
	routeRefreshToken   = "/auth/refresh-token"
	routeLogout         = "/auth/logout"
	routeCurrentUser    = "/auth/me"
	routeForgotPassword = "/auth/forgot-password"
	routeResetPassword  = "/auth/reset-password"
)

// envelope is the response wrapper used by every identity service endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

var _ IdentityAPI = &Client{}

// Client talks JSON over HTTP to the remote identity service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

// NewClient builds an identity service client from configuration. The base
// URL falls back to a localhost default when unset.
func NewClient(cfg Config) *Client {
	baseURL := DefaultBaseURL
	timeout := 15 * time.Second

	if cfg != nil {
		if cfg.GetBaseURL() != "" {
			baseURL = cfg.GetBaseURL()
		}
		timeout = cfg.GetHTTPTimeout()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}
}

func (c *Client) WithLogger(logger Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithHTTPClient overrides the underlying http.Client, e.g. to install an
// authenticating Transport.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.http = client
	}
	return c
}

func (c *Client) Signup(ctx context.Context, payload SignupRequest) (*AuthResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload")
	}

	result := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, routeSignup, payload, result, fallbackSignup); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Login(ctx context.Context, payload LoginRequest) (*AuthResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	result := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, routeLogin, payload, result, fallbackLogin); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResult, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	body := map[string]string{"refreshToken": refreshToken}
	result := &TokenResult{}
	if err := c.do(ctx, http.MethodPost, routeRefreshToken, body, result, fallbackRefresh); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, routeLogout, nil, nil, fallbackLogout)
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	user := &User{}
	if err := c.do(ctx, http.MethodGet, routeCurrentUser, nil, user, fallbackCurrentUser); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	payload := ForgotPasswordRequest{Email: email}
	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid email")
	}

	return c.do(ctx, http.MethodPost, routeForgotPassword, payload, nil, fallbackForgotPassword)
}

func (c *Client) ResetPassword(ctx context.Context, payload ResetPasswordRequest) error {
	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid reset payload")
	}

	return c.do(ctx, http.MethodPost, routeResetPassword, payload, nil, fallbackResetPassword)
}

// do issues one request and decodes the response envelope. A non-success
// envelope, or a missing data payload when out is expected, is a failure
// carrying the service message or the per-operation fallback.
func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, fallback)
	}
	defer resp.Body.Close()

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, fallback).
			WithCode(statusToCode(resp.StatusCode))
	}

	if !env.Success || (out != nil && len(env.Data) == 0) {
		message := env.Message
		if message == "" {
			message = fallback
		}

		if len(env.Errors) > 0 {
			c.logger.Debug("identity service errors: %s", print.MaybePrettyJSON(env.Errors))
		}

		richErr := goerrors.New(message, goerrors.CategoryAuth).
			WithCode(statusToCode(resp.StatusCode))
		if len(env.Errors) > 0 {
			richErr = richErr.WithMetadata(map[string]any{"errors": env.Errors})
		}
		return richErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, fallback)
		}
	}

	return nil
}

func statusToCode(status int) int {
	switch status {
	case http.StatusUnauthorized:
		return goerrors.CodeUnauthorized
	case http.StatusForbidden:
		return goerrors.CodeForbidden
	case http.StatusNotFound:
		return goerrors.CodeNotFound
	case http.StatusConflict:
		return goerrors.CodeConflict
	case http.StatusBadRequest:
		return goerrors.CodeBadRequest
	default:
		return goerrors.CodeInternal
	}
}
