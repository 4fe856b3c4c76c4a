// ABOUTME: Environment variable expansion in config string fields
// ABOUTME: ${VAR} and ${VAR:-fallback} patterns; unset vars without a fallback become empty

package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)(?::-([^}]*))?\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
// DSNs are the usual carrier for secrets such as database passwords.
func ResolveEnvVars(s *Settings) {
	s.Store.DSN = expandEnv(s.Store.DSN)
	s.Upload.BaseURL = expandEnv(s.Upload.BaseURL)
	s.Mention.DirectoryFile = expandEnv(s.Mention.DirectoryFile)
}

// expandEnv replaces ${VAR} with its value. ${VAR:-fallback} yields the
// fallback when VAR is unset or empty; a plain unset ${VAR} becomes "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}
