package classtop

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Credentials is the login payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Password, validation.Required, validation.Length(1, 200)),
	)
}

// RegisterPayload is the registration payload. Email is optional and sent as
// null when absent, matching the server contract.
type RegisterPayload struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 200)),
		validation.Field(&r.Email, is.Email),
	)
}

// SessionManager owns the login/registration/logout protocols and is the
// single source of truth for "is a session active". It is the only writer of
// the Store.
type SessionManager struct {
	cfg        Config
	store      Store
	httpClient *http.Client
	logger     Logger
}

// NewSessionManager returns a manager persisting through store.
func NewSessionManager(cfg Config, store Store) *SessionManager {
	return &SessionManager{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{Timeout: time.Duration(cfg.GetRequestTimeout()) * time.Second},
		logger:     defLogger{},
	}
}

func (s *SessionManager) WithLogger(logger Logger) *SessionManager {
	s.logger = logger
	return s
}

func (s *SessionManager) WithHTTPClient(client *http.Client) *SessionManager {
	s.httpClient = client
	return s
}

// IsAuthenticated is derived from the store at call time; it is never cached.
func (s *SessionManager) IsAuthenticated() bool {
	_, ok := s.store.GetToken()
	return ok
}

// Token returns the current bearer token when one exists.
func (s *SessionManager) Token() (string, bool) {
	return s.store.GetToken()
}

// CurrentUser returns the persisted profile when one exists.
func (s *SessionManager) CurrentUser() (*UserInfo, bool) {
	return s.store.GetUser()
}

// TokenClaims decodes the stored token without verifying it, for display
// purposes only. Absent or undecodable tokens report false.
func (s *SessionManager) TokenClaims() (*TokenClaims, bool) {
	token, ok := s.store.GetToken()
	if !ok {
		return nil, false
	}

	claims, err := parseTokenClaims(token)
	if err != nil {
		s.logger.Debug("stored token does not decode as JWT", "error", err)
		return nil, false
	}

	return claims, true
}

// Login exchanges credentials for a session. On success both token and
// profile are persisted before the profile is returned. There is no retry.
func (s *SessionManager) Login(ctx context.Context, identifier, password string) (*UserInfo, error) {
	payload := Credentials{Username: identifier, Password: password}
	if err := payload.Validate(); err != nil {
		s.logger.Error("Login validate payload", "error", err)
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid login payload")
	}

	user, err := s.authenticate(ctx, "/auth/login", payload, ErrInvalidCredentials)
	if err != nil {
		s.logger.Error("Login failed", "identifier", identifier, "error", err)
		return nil, err
	}

	return user, nil
}

// Register creates an account and opens a session, same contract as Login.
func (s *SessionManager) Register(ctx context.Context, username, password string, email *string) (*UserInfo, error) {
	payload := RegisterPayload{Username: username, Password: password, Email: email}
	if err := payload.Validate(); err != nil {
		s.logger.Error("Register validate payload", "error", err)
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid registration payload")
	}

	user, err := s.authenticate(ctx, "/auth/register", payload, ErrRegistrationFailed)
	if err != nil {
		s.logger.Error("Register failed", "username", username, "error", err)
		return nil, err
	}

	return user, nil
}

// Logout clears the session locally. The remote service is never contacted,
// and logging out without a session is a no-op.
func (s *SessionManager) Logout() {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("Logout unable to clear session store", "error", err)
	}
}

func (s *SessionManager) authenticate(ctx context.Context, path string, payload any, fallback *errors.Error) (*UserInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unable to serialize auth payload")
	}

	url := strings.TrimRight(s.cfg.GetBaseURL(), "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unable to build auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "auth request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "unable to read auth response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, authFailure(raw, fallback)
	}

	var envelope struct {
		Data struct {
			Token string   `json:"token"`
			User  *UserInfo `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unable to decode auth response envelope")
	}

	if envelope.Data.Token == "" || envelope.Data.User == nil {
		return nil, ErrUnableToDecodeEnvelope
	}

	// token and profile land together so no observer sees one without the other
	if err := s.store.SetSession(envelope.Data.Token, envelope.Data.User); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to persist session")
	}

	return envelope.Data.User, nil
}

// authFailure maps a rejected auth exchange onto the fallback sentinel:
// returned as-is when the response carries no detail, otherwise reshaped
// around the server's message.
func authFailure(raw []byte, fallback *errors.Error) error {
	detail := decodeDetail(raw, "")
	if detail == "" {
		return fallback
	}

	return errors.New(detail, errors.CategoryAuth).
		WithTextCode(fallback.TextCode).
		WithCode(errors.CodeUnauthorized)
}

// decodeDetail extracts the error envelope's detail message, substituting
// fallback when the body is absent or unparseable.
func decodeDetail(raw []byte, fallback string) string {
	var body struct {
		Detail string `json:"detail"`
	}

	if err := json.Unmarshal(raw, &body); err != nil || body.Detail == "" {
		return fallback
	}

	return body.Detail
}

var _ AuthState = (*SessionManager)(nil)
var _ SessionContext = (*SessionManager)(nil)
