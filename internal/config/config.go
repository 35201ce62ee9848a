package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings" // strings trims the API base URL
	"time"    // time parses timeouts and TTLs

	"github.com/joho/godotenv" // godotenv reads a local .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Durations are parsed with time.ParseDuration so
// values like "10s" or "168h" are accepted.
type Config struct {
	Env               string        // application environment (e.g. "dev", "prod")
	Port              string        // HTTP port to listen on
	APIBaseURL        string        // base URL of the reservations REST API, e.g. https://api.example.com/api
	MediaBaseURL      string        // base URL for uploaded media (API base without the /api suffix)
	APITimeout        time.Duration // timeout applied to ordinary API calls
	APIUploadTimeout  time.Duration // timeout applied to multipart uploads
	SessionSecret     string        // secret used to sign session cookies
	SessionCookie     string        // name of the session cookie
	SessionTTL        time.Duration // lifetime of a browser session
	CalendarTZ        string        // time zone passed to calendar deep links
	CalendarUIDDomain string        // domain suffix of generated calendar UIDs
	PublicBaseURL     string        // externally visible URL of this web tier, used in QR codes
	ActivityEnabled   bool          // publish activity events to the broker
	ActivityLogPath   string        // file the activity consumer appends to
	ProofRetention    time.Duration // how long a failed upload's file is kept for retry
}

// LoadDotEnv reads a .env file from the working directory when present.  A
// missing file is not an error; variables already in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	base := strings.TrimRight(must("API_BASE_URL"), "/") // base URL without trailing slash
	return Config{
		Env:               must("APP_ENV"),                                   // environment (dev/test/prod)
		Port:              must("APP_PORT"),                                  // port to bind the HTTP server
		APIBaseURL:        base,                                              // REST API root
		MediaBaseURL:      envStr("MEDIA_BASE_URL", MediaBase(base)),         // media root
		APITimeout:        envDur("API_TIMEOUT", 10*time.Second),             // normal calls
		APIUploadTimeout:  envDur("API_UPLOAD_TIMEOUT", 30*time.Second),      // file uploads
		SessionSecret:     must("SESSION_SECRET"),                            // cookie signing secret
		SessionCookie:     envStr("SESSION_COOKIE", "pppa_session"),          // cookie name
		SessionTTL:        envDur("SESSION_TTL", 7*24*time.Hour),             // session lifetime
		CalendarTZ:        envStr("CALENDAR_TZ", "Africa/Johannesburg"),      // calendar ctz
		CalendarUIDDomain: envStr("CALENDAR_UID_DOMAIN", "parliamentplating.com"),
		PublicBaseURL:     strings.TrimRight(envStr("PUBLIC_BASE_URL", "http://localhost:"+os.Getenv("APP_PORT")), "/"),
		ActivityEnabled:   envBool("ACTIVITY_ENABLED", true),
		ActivityLogPath:   envStr("ACTIVITY_LOG_PATH", "logs/activity.log"),
		ProofRetention:    envDur("PROOF_RETENTION", 15*time.Minute),
	}
}

// MediaBase strips a trailing "/api" segment from the API base URL so that
// relative media paths returned by the API can be turned into absolute URLs.
func MediaBase(apiBase string) string {
	b := strings.TrimRight(apiBase, "/")
	return strings.TrimSuffix(b, "/api")
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
