package portalauth

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is used when no identity service origin is configured.
const DefaultBaseURL = "http://localhost:5000/api"

var _ Config = &Settings{}

// Settings is the concrete Config used by the client and manager.
type Settings struct {
	BaseURL       string
	HTTPTimeout   time.Duration
	StoragePath   string
	LoginRoute    string
	RefreshWindow time.Duration
}

func (s *Settings) GetBaseURL() string {
	if s.BaseURL == "" {
		return DefaultBaseURL
	}
	return s.BaseURL
}

func (s *Settings) GetHTTPTimeout() time.Duration {
	if s.HTTPTimeout <= 0 {
		return 15 * time.Second
	}
	return s.HTTPTimeout
}

func (s *Settings) GetStoragePath() string {
	return s.StoragePath
}

func (s *Settings) GetLoginRoute() string {
	if s.LoginRoute == "" {
		return "/login"
	}
	return s.LoginRoute
}

func (s *Settings) GetRefreshWindow() time.Duration {
	if s.RefreshWindow <= 0 {
		return defaultRefreshWindow
	}
	return s.RefreshWindow
}

// LoadSettings reads configuration from the environment with a PORTAL prefix,
// e.g. PORTAL_API_URL for the identity service origin.
func LoadSettings() *Settings {
	v := viper.New()

	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()

	v.SetDefault("api_url", DefaultBaseURL)
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("storage_path", "")
	v.SetDefault("login_route", "/login")
	v.SetDefault("refresh_window", defaultRefreshWindow.String())

	return &Settings{
		BaseURL:       v.GetString("api_url"),
		HTTPTimeout:   v.GetDuration("http_timeout"),
		StoragePath:   v.GetString("storage_path"),
		LoginRoute:    v.GetString("login_route"),
		RefreshWindow: v.GetDuration("refresh_window"),
	}
}
