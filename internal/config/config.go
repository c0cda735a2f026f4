package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses the session lifetime
)

// OAuthProvider holds the credentials for one OAuth provider. A provider is
// enabled exactly when both ClientID and ClientSecret are set; there is no
// other switch.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether credentials for this provider were supplied.
func (p OAuthProvider) Enabled() bool { return p.ClientID != "" && p.ClientSecret != "" }

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations and ints
// for lifetimes and costs.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	BcryptCost int    // bcrypt cost for password hashing

	SessionTTL time.Duration // lifetime of a session after login
	CookieName string        // name of the session cookie

	BaseURL         string // externally visible base URL, used to build OAuth callback URLs
	OAuthSuccessURL string // where OAuth callbacks redirect after a successful login
	OAuthFailureURL string // where OAuth callbacks redirect after a failure

	Google OAuthProvider // Google OAuth credentials (optional)
	GitHub OAuthProvider // GitHub OAuth credentials (optional)
}

// Production reports whether the application runs in its production
// environment. It controls cookie hardening.
func (c Config) Production() bool { return c.Env == "prod" || c.Env == "production" }

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  OAuth credentials are
// optional: a provider without credentials is simply absent from the provider
// table instead of being registered conditionally later.
func Load() Config {
	return Config{
		Env:        must("APP_ENV"),      // environment (dev/test/prod)
		Port:       must("APP_PORT"),     // port to bind the HTTP server
		DBUser:     must("DB_USER"),      // database user
		DBPass:     os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:     must("DB_HOST"),      // database host
		DBPort:     must("DB_PORT"),      // database port
		DBName:     must("DB_NAME"),      // database name
		BcryptCost: mustInt("BCRYPT_COST"),

		SessionTTL: time.Duration(envIntDefault("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieName: envStr("SESSION_COOKIE_NAME", "session"),

		BaseURL:         envStr("PUBLIC_BASE_URL", "http://localhost:8080"),
		OAuthSuccessURL: envStr("OAUTH_SUCCESS_URL", "/"),
		OAuthFailureURL: envStr("OAUTH_FAILURE_URL", "/v1/auth/failure"),

		Google: OAuthProvider{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
		GitHub: OAuthProvider{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		},
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
