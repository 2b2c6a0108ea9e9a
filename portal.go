package portalauth

// New wires a ready-to-use session stack from configuration: an identity
// client for the configured base URL, a file-backed store when a storage
// path is set (in-memory otherwise), and a manager with the configured
// refresh window. Options are applied after the config-derived defaults.
func New(cfg Config, opts ...ManagerOption) *SessionManager {
	client := NewClient(cfg)

	var store Store = NewMemoryStore()
	if cfg != nil && cfg.GetStoragePath() != "" {
		store = NewFileStore(cfg.GetStoragePath())
	}

	defaults := []ManagerOption{}
	if cfg != nil {
		defaults = append(defaults, WithRefreshWindow(cfg.GetRefreshWindow()))
	}

	return NewSessionManager(client, store, append(defaults, opts...)...)
}

// GuardDefaults seeds a ProtectedConfig with the configured login route so
// guards and the rest of the stack agree on the login entry point.
func GuardDefaults(cfg Config) ProtectedConfig {
	pc := ProtectedConfig{}
	if cfg != nil {
		pc.RedirectTo = cfg.GetLoginRoute()
	}
	return pc
}
