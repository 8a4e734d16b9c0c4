package config

import "os"

const (
	EnvFolderPath  = "FOLDER_PATH"
	EnvDatabaseDSN = "DATABASE_DSN"
)

// parseEnv overlays the settings that deployments traditionally pass through
// the environment. Unset or empty variables leave the field untouched.
func parseEnv(config *Config) {
	if v := os.Getenv(EnvFolderPath); v != "" {
		config.FolderPath = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		config.DatabaseDSN = v
	}
}
