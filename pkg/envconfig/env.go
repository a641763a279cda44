package envconfig

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"wolfcafe/pkg/logger"
)

// GetEnv returns the value of key, or def when it is unset or empty
func GetEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return def
}

// GetEnvInt returns key parsed as an int, or def when unset or malformed
func GetEnvInt(key string, def int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return def
}

// GetEnvBool returns key parsed as a bool, or def when unset or malformed
func GetEnvBool(key string, def bool) bool {
	if value, err := strconv.ParseBool(GetEnv(key, "")); err == nil {
		return value
	}
	return def
}

// GetLogLevel reads LOG_LEVEL, defaulting to info
func GetLogLevel() logger.LogLevel {
	switch level := logger.LogLevel(strings.ToLower(GetEnv("LOG_LEVEL", "info"))); level {
	case logger.LevelDebug, logger.LevelInfo, logger.LevelWarn, logger.LevelError:
		return level
	}
	return logger.LevelInfo
}

// LoadLoggerConfig builds the logger configuration from the environment
func LoadLoggerConfig() logger.Config {
	return logger.Config{
		Level:        GetLogLevel(),
		Format:       GetEnv("LOG_FORMAT", "json"),
		Output:       GetEnv("LOG_OUTPUT", "stderr"),
		EnableCaller: GetEnvBool("LOG_ENABLE_CALLER", true),
		Environment:  GetEnv("ENVIRONMENT", "development"),
	}
}

// LoadEnvFile reads KEY=VALUE lines from path into the process environment.
// Variables that are already set keep their value.
func LoadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("%s:%d: expected KEY=VALUE", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
