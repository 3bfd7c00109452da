package classtop

import "fmt"

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Store is the durable persistence for the active session. Implementations
// must serialize writes; SetSession and Clear update token and profile as a
// single unit.
type Store interface {
	GetToken() (string, bool)
	SetToken(token string) error
	RemoveToken() error
	GetUser() (*UserInfo, bool)
	SetUser(user *UserInfo) error
	RemoveUser() error
	SetSession(token string, user *UserInfo) error
	Clear() error
}

// AuthState is the read-only view of the session that the guard and other
// observers consume.
type AuthState interface {
	IsAuthenticated() bool
}

// SessionContext is what the request dispatcher needs from the session
// manager: the current token, and a way to tear the session down on 401.
type SessionContext interface {
	Token() (string, bool)
	Logout()
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetAuthScheme() string
	GetLoginRoute() string
	GetHomeRoute() string
	GetStorePath() string
	GetRequestTimeout() int
}

// SimpleConfig is a plain struct Config for hosts without their own
// configuration container.
type SimpleConfig struct {
	BaseURL        string
	AuthScheme     string
	LoginRoute     string
	HomeRoute      string
	StorePath      string
	RequestTimeout int
}

func (c SimpleConfig) GetBaseURL() string { return c.BaseURL }

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetLoginRoute() string {
	if c.LoginRoute == "" {
		return "/login"
	}
	return c.LoginRoute
}

func (c SimpleConfig) GetHomeRoute() string {
	if c.HomeRoute == "" {
		return "/"
	}
	return c.HomeRoute
}

func (c SimpleConfig) GetStorePath() string { return c.StorePath }

// GetRequestTimeout is the outbound timeout in seconds. Zero keeps requests
// pending indefinitely.
func (c SimpleConfig) GetRequestTimeout() int { return c.RequestTimeout }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CLASSTOP "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CLASSTOP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CLASSTOP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CLASSTOP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
