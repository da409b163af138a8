package config

import "os"

// Env returns true when a given environment variable is set to "yes".
func Env(env string) bool {
	return "yes" == os.Getenv(env)
}

// EnvStr returns the value of an environment variable, or the given
// fallback when unset.
func EnvStr(env, fallback string) string {
	if value := os.Getenv(env); value != "" {
		return value
	}
	return fallback
}
