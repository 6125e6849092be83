package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where proofdeck stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your proofdeck instance.
	InstanceURL string

	// Analytics Configuration
	AnalyticsEnabled       bool          // PROOFDECK_ANALYTICS_ENABLED (default: true)
	AnalyticsFlushInterval time.Duration // PROOFDECK_ANALYTICS_FLUSH_INTERVAL (default: 30s)

	// Feed Configuration
	FeedEnabled bool   // PROOFDECK_FEED_ENABLED (default: true)
	FeedTitle   string // PROOFDECK_FEED_TITLE (default: Proofdeck)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads the optional feature configuration from PROOFDECK_* environment
// variables. Core server settings (mode, addr, port, data, driver, dsn) come
// from flags and are not read here.
func (p *Profile) FromEnv() {
	p.AnalyticsEnabled = getEnvOrDefault("PROOFDECK_ANALYTICS_ENABLED", "true") == "true"
	p.AnalyticsFlushInterval = 30 * time.Second
	if raw := os.Getenv("PROOFDECK_ANALYTICS_FLUSH_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			p.AnalyticsFlushInterval = d
		}
	}

	p.FeedEnabled = getEnvOrDefault("PROOFDECK_FEED_ENABLED", "true") == "true"
	p.FeedTitle = getEnvOrDefault("PROOFDECK_FEED_TITLE", "Proofdeck")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "proofdeck")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/proofdeck"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("proofdeck_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
