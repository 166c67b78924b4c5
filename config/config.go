// Package config loads and validates application configuration from
// environment variables. Required variables, optional variables with
// defaults, and parse failures are all collected and reported together
// so a misconfigured deployment fails with one complete message.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PoolConfig holds settings for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// TokenSecret signs and verifies auth tokens. Tokens carry no expiry;
	// rotating the secret invalidates every outstanding session.
	TokenSecret string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration for the application.
type AppConfig struct {
	DB     *PoolConfig
	Auth   *AuthConfig
	Server *ServerConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// LoadConfig reads every setting from the environment and returns the
// populated AppConfig, or a single error aggregating everything wrong.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := getOptionalEnvInt("DB_POOL_SIZE", 10, &errs)
	if poolSize < 1 {
		errs = append(errs, fmt.Sprintf("DB_POOL_SIZE must be at least 1, got %d", poolSize))
		poolSize = 1
	}

	tokenSecret := getRequiredEnv("TOKEN_SECRET", &errs)

	serverPort := getOptionalEnv("PORT", "3000")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB: &PoolConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			MaxSize:  poolSize,
		},
		Auth:   &AuthConfig{TokenSecret: tokenSecret},
		Server: &ServerConfig{Port: serverPort},
	}, nil
}
