package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Display drivers understood by cmd/matrix.
const (
	DriverIS31FL3731 = "is31fl3731"
	DriverConsole    = "console"
)

// Config holds all client settings, populated from environment variables.
type Config struct {
	Username           string
	BaseURL            string
	ResponseSuffix     string
	LeadingTotalColumn bool
	FetchTimeout       time.Duration

	// Wi-Fi credentials are recognised for parity with the microcontroller
	// build; on a host the OS owns the network join.
	WifiSSID     string
	WifiPassword string

	MaxBrightness   int
	PollInterval    time.Duration
	AnimationFrames int
	FrameDelay      time.Duration
	Location        *time.Location

	MatrixWidth   int
	MatrixHeight  int
	DisplayDriver string
	I2CBus        string
	I2CAddr       uint16

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Snapshot publishing, feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// URL is the contributions endpoint for the configured user.
func (c *Config) URL() string {
	return c.BaseURL + c.Username + c.ResponseSuffix
}

// Load reads configuration from environment variables, applying defaults where
// unset. Variables from ENV_FILE (default ".env") are loaded first without
// overriding the real environment.
func Load() (*Config, error) {
	if err := loadEnvFile(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	frameDelay, err := time.ParseDuration(sharedcfg.EnvOrDefault("FRAME_DELAY", "30ms"))
	if err != nil || frameDelay < 0 {
		return nil, errors.New("invalid FRAME_DELAY")
	}

	pollSeconds, err := parseIntInRange("POLL_INTERVAL_SECONDS", 60, 1, 24*60*60)
	if err != nil {
		return nil, err
	}

	maxBrightness, err := parseIntInRange("MAX_BRIGHTNESS", 255, 1, 255)
	if err != nil {
		return nil, err
	}

	frames, err := parseIntInRange("ANIMATION_FRAMES", 16, 0, 1000)
	if err != nil {
		return nil, err
	}

	width, err := parseIntInRange("MATRIX_WIDTH", 15, 1, 64)
	if err != nil {
		return nil, err
	}

	height, err := parseIntInRange("MATRIX_HEIGHT", 7, 1, 64)
	if err != nil {
		return nil, err
	}

	leadingTotal, err := parseBool("LEADING_TOTAL_COLUMN", false)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	addr, err := strconv.ParseUint(sharedcfg.EnvOrDefault("I2C_ADDR", "0x74"), 0, 7)
	if err != nil {
		return nil, errors.New("invalid I2C_ADDR")
	}

	brokers := parseList(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		Username:           strings.TrimSpace(os.Getenv("GITHUB_USERNAME")),
		BaseURL:            sharedcfg.EnvOrDefault("CONTRIB_BASE_URL", "https://github-contributions-api.deno.dev/"),
		ResponseSuffix:     sharedcfg.EnvOrDefault("CONTRIB_RESPONSE_SUFFIX", ".text?no-total=true"),
		LeadingTotalColumn: leadingTotal,
		FetchTimeout:       fetchTimeout,

		WifiSSID:     os.Getenv("WIFI_SSID"),
		WifiPassword: os.Getenv("WIFI_PASSWORD"),

		MaxBrightness:   maxBrightness,
		PollInterval:    time.Duration(pollSeconds) * time.Second,
		AnimationFrames: frames,
		FrameDelay:      frameDelay,
		Location:        loc,

		MatrixWidth:   width,
		MatrixHeight:  height,
		DisplayDriver: sharedcfg.EnvOrDefault("DISPLAY_DRIVER", DriverIS31FL3731),
		I2CBus:        os.Getenv("I2C_BUS"),
		I2CAddr:       uint16(addr),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "contribution-snapshots"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.Username == "" {
		return nil, errors.New("GITHUB_USERNAME is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("CONTRIB_BASE_URL is required")
	}
	if cfg.DisplayDriver != DriverIS31FL3731 && cfg.DisplayDriver != DriverConsole {
		return nil, fmt.Errorf("DISPLAY_DRIVER must be %q or %q", DriverIS31FL3731, DriverConsole)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when publishing is enabled")
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load ENV_FILE %s: %w", path, err)
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
