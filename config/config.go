package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config consolidates every tunable of the crawl, import and API layers.
// Values come from the environment (a .env file is honored when present);
// anything unset falls back to the defaults below.
type Config struct {
	// Target site.
	BaseURL  string
	HomePath string

	// Selectors tied to the vendor site's current markup.
	MenuSelector   string
	CardSelector   string
	DetailSelector string

	// Page-load retry policy.
	MaxRetries         int
	NavigationTimeout  time.Duration
	MarkerTimeout      time.Duration
	DetailWaitTimeout  time.Duration
	RetryDelay         time.Duration

	// Lazy-load scrolling.
	MaxScrollAttempts int
	ScrollWait        time.Duration

	// Politeness delays between visits.
	ProductDelay  time.Duration
	CategoryDelay time.Duration

	// Browser identity.
	Headless       bool
	UserAgent      string
	AcceptLanguage string

	// Artifacts and storage.
	OutputDir     string
	MongoURI      string
	MongoDatabase string

	// API server.
	Port           string
	Environment    string
	AllowedOrigins []string
}

// Load reads configuration from the environment and applies defaults.
func Load() *Config {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:  getEnv("BASE_URL", "https://ben-gigi.co.il"),
		HomePath: getEnv("HOME_PATH", "/דף-הבית"),

		MenuSelector:   getEnv("MENU_SELECTOR", "ul.sf-menu.sf-menu-rtl"),
		CardSelector:   getEnv("CARD_SELECTOR", ".CssCatalogAdjusted_product"),
		DetailSelector: getEnv("DETAIL_SELECTOR", ".CssCatProductAdjusted_product"),

		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 60*time.Second),
		MarkerTimeout:     getEnvDuration("MARKER_TIMEOUT", 30*time.Second),
		DetailWaitTimeout: getEnvDuration("DETAIL_WAIT_TIMEOUT", 10*time.Second),
		RetryDelay:        getEnvDuration("RETRY_DELAY", 5*time.Second),

		MaxScrollAttempts: getEnvInt("MAX_SCROLL_ATTEMPTS", 10),
		ScrollWait:        getEnvDuration("SCROLL_WAIT", 2*time.Second),

		ProductDelay:  getEnvDuration("PRODUCT_DELAY", 1*time.Second),
		CategoryDelay: getEnvDuration("CATEGORY_DELAY", 2*time.Second),

		Headless:       getEnvBool("HEADLESS", true),
		UserAgent:      getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		AcceptLanguage: getEnv("ACCEPT_LANGUAGE", "he-IL,he;q=0.9,en;q=0.8"),

		OutputDir:     getEnv("OUTPUT_DIR", "./scraped-data"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017/osmotic-pressure"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "osmotic-pressure"),

		Port:           getEnv("PORT", "3000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
	}

	return cfg
}

// HomeURL is the fully qualified homepage address the category scraper starts from.
func (c *Config) HomeURL() string {
	return c.BaseURL + c.HomePath
}

// Validate reports configuration values that cannot possibly work.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid BASE_URL %q: %w", c.BaseURL, err)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}
	if c.MaxScrollAttempts < 1 {
		return fmt.Errorf("MAX_SCROLL_ATTEMPTS must be at least 1, got %d", c.MaxScrollAttempts)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
