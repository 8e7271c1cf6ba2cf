package config

// OAuthConfig contains third-party sign-in (OAuth/OIDC) configuration.
// Third-party sign-in is offered only when a client ID and discovery URL
// are both present.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// Enabled reports whether third-party sign-in is configured.
func (o *OAuthConfig) Enabled() bool {
	return o.ClientID != "" && o.DiscoveryURL != ""
}

// AuthConfig groups all sign-in related configuration.
type AuthConfig struct {
	// OTPLength is the number of digits in one-time codes.
	OTPLength int `env:"AUTH_OTP_LENGTH" envDefault:"6"`

	// OAuth configuration for third-party sign-in.
	OAuth OAuthConfig `envPrefix:"OAUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.OTPLength < 4 {
		a.OTPLength = 4
	}
	if a.OTPLength > 10 {
		a.OTPLength = 10
	}
}
