package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fleetbuddy/internal/logger"

	"github.com/joho/godotenv"
)

func init() {
	envFiles := []string{
		".env",
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Error loading %s: %v", envFile, err)
			}
		}
	}
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("Ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}

	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("Ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}

	return parsed
}

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Could not determine home directory: %v", err)
		return ""
	}
	return homeDir
}

func getProfileDir(fallback string, profile string) string {
	homeDir := getHomeDir()
	if homeDir == "" {
		return fallback
	}
	return filepath.Join(homeDir, ".fleetbuddy", profile)
}

// Env vars holding secrets; never persisted
const (
	SudoPasswordEnv  = "FLEETBUDDY_SUDO_PASSWORD"
	SSHPassphraseEnv = "FLEETBUDDY_SSH_PASSPHRASE"
)

type Configuration struct {
	Profile    string
	ProfileDir string

	SettingsPath string
	DatabasePath string
	LogPath      string
	PIDFile      string

	Shell       string
	KillGrace   time.Duration
	SettleDelay time.Duration

	HistoryLimit  int
	WatchInterval time.Duration

	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

var Profile = GetEnv("FLEETBUDDY_PROFILE", "default")
var ProfileDir = getProfileDir(filepath.Join(os.TempDir(), "fleetbuddy", Profile), Profile)
var DatabasePath = GetEnv("DATABASE_PATH", filepath.Join(ProfileDir, "fleetbuddy.db"))

var Config = &Configuration{
	Profile:    Profile,
	ProfileDir: ProfileDir,

	SettingsPath: GetEnv("FLEETBUDDY_SETTINGS_PATH", filepath.Join(ProfileDir, "settings.yaml")),
	DatabasePath: DatabasePath,
	LogPath:      GetEnv("FLEETBUDDY_LOG_PATH", filepath.Join(ProfileDir, "logs", "fleetbuddy.log")),
	PIDFile:      GetEnv("FLEETBUDDY_PID_FILE", filepath.Join(ProfileDir, "sshuttle.pid")),

	Shell:       GetEnv("FLEETBUDDY_SHELL", "/bin/sh"),
	KillGrace:   getEnvDuration("FLEETBUDDY_KILL_GRACE", 2*time.Second),
	SettleDelay: getEnvDuration("FLEETBUDDY_SETTLE_DELAY", 3*time.Second),

	HistoryLimit:  getEnvInt("FLEETBUDDY_HISTORY_KEEP", 50),
	WatchInterval: 30 * time.Second,

	LogMaxSizeMB:  5,
	LogMaxBackups: 3,
	LogMaxAgeDays: 28,
}
