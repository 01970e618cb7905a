// SPDX-License-Identifier: MPL-2.0

// Package settings resolves runtime configuration from the environment and
// the workspace .env file. Every knob is overridable through a DRIVING_*
// environment variable.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultVersionURL is the published version manifest checked by
	// `driving version` and `driving update`.
	DefaultVersionURL = "https://raw.githubusercontent.com/sonuan/driving-cli-tool/main/dist/version.json"

	// DefaultCommitMessage is used by `driving commit` when no message is
	// given.
	DefaultCommitMessage = "update by driving"

	// EnvFileName is the workspace env file read on startup and written by
	// installation.
	EnvFileName = ".env"

	keyUpdateVersionURL  = "update_version_url"
	keyCommitMessage     = "default_commit_message"
	keySensitiveKeywords = "sensitive_keywords"
	keyRepoURL           = "repo_url"
)

// defaultSensitiveKeywords flags credential-shaped keys during IDE config
// scrubbing. DRIVING_SENSITIVE_KEYWORDS replaces the whole list.
var defaultSensitiveKeywords = []string{
	"api_key", "apikey", "api-key",
	"token", "access_token", "auth_token",
	"secret", "password", "passwd", "credential",
	"auth", "authorization",
	"private_key", "privatekey",
}

// Settings is the resolved configuration for one invocation.
type Settings struct {
	v *viper.Viper
}

// Load reads root's .env file (if present) into the process environment and
// resolves all settings. Variables already set in the environment win over
// the file.
func Load(root string) *Settings {
	if root != "" {
		// godotenv never overrides variables that are already set.
		_ = godotenv.Load(filepath.Join(root, EnvFileName))
	}

	v := viper.New()
	v.SetEnvPrefix("DRIVING")
	v.AutomaticEnv()
	v.SetDefault(keyUpdateVersionURL, DefaultVersionURL)
	v.SetDefault(keyCommitMessage, DefaultCommitMessage)
	v.SetDefault(keySensitiveKeywords, strings.Join(defaultSensitiveKeywords, ","))
	v.SetDefault(keyRepoURL, "")

	return &Settings{v: v}
}

// UpdateVersionURL returns the version manifest location.
func (s *Settings) UpdateVersionURL() string {
	return s.v.GetString(keyUpdateVersionURL)
}

// CommitMessage returns the default commit message.
func (s *Settings) CommitMessage() string {
	return s.v.GetString(keyCommitMessage)
}

// RepoURL returns the driving repository URL persisted at install time, or
// "" when none is configured.
func (s *Settings) RepoURL() string {
	return s.v.GetString(keyRepoURL)
}

// SensitiveKeywords returns the lowercase substrings that mark a config key
// as secret-bearing.
func (s *Settings) SensitiveKeywords() []string {
	raw := s.v.GetString(keySensitiveKeywords)
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// WriteEnvValue persists key=value into root's .env file, preserving every
// other entry.
func WriteEnvValue(root, key, value string) error {
	path := filepath.Join(root, EnvFileName)

	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		env = loaded
	}

	env[key] = value
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
