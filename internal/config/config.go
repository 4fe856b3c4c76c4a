// ABOUTME: Editor settings loading with global + project config deep merge
// ABOUTME: JSON-based configuration; unset keys fall back to documented defaults

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Defaults applied when a key is unset.
const (
	DefaultStoreDriver = "memory"
	DefaultQuietMS     = 800
	DefaultUploadMS    = 1000
	DefaultUploadBase  = "https://example.com/uploads/"
	DefaultMatchMode   = "prefix"
	DefaultCommit      = "replace"
)

// DefaultTags is the tag vocabulary when tags.available is unset.
var DefaultTags = []string{"Urgent", "Important", "Optional"}

// StoreSettings selects the template backend.
type StoreSettings struct {
	Driver string `json:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty"`
}

// AutosaveSettings tunes the debounce.
type AutosaveSettings struct {
	QuietMS int `json:"quiet_ms,omitempty"`
}

// UploadSettings tunes the simulated uploader.
type UploadSettings struct {
	DelayMS int    `json:"delay_ms,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// MentionSettings controls the @mention autocomplete.
type MentionSettings struct {
	Match         string `json:"match,omitempty"`
	Commit        string `json:"commit,omitempty"`
	DirectoryFile string `json:"directory_file,omitempty"`
}

// ValidationSettings toggles optional rules.
type ValidationSettings struct {
	RequireTags *bool `json:"require_tags,omitempty"`
}

// PreviewSettings controls the live preview.
type PreviewSettings struct {
	HonorOverrides *bool `json:"honor_overrides,omitempty"`
}

// TagSettings lists the selectable tags.
type TagSettings struct {
	Available []string `json:"available,omitempty"`
}

// Settings holds the merged configuration.
type Settings struct {
	LogLevel   string             `json:"log_level,omitempty"`
	Store      StoreSettings      `json:"store"`
	Autosave   AutosaveSettings   `json:"autosave"`
	Upload     UploadSettings     `json:"upload"`
	Mention    MentionSettings    `json:"mention"`
	Validation ValidationSettings `json:"validation"`
	Preview    PreviewSettings    `json:"preview"`
	Tags       TagSettings        `json:"tags"`
}

// Load reads and merges global and project-local settings.
// Project settings override global settings; ${VAR} references are expanded.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	if merged.Mention.DirectoryFile != "" && !filepath.IsAbs(merged.Mention.DirectoryFile) {
		merged.Mention.DirectoryFile = filepath.Join(projectRoot, merged.Mention.DirectoryFile)
	}
	return merged, nil
}

// loadFile reads a Settings from a JSON file. Returns zero Settings if file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global
	result.Tags.Available = slices.Clone(global.Tags.Available)

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&result.LogLevel, project.LogLevel)
	override(&result.Store.Driver, project.Store.Driver)
	override(&result.Store.DSN, project.Store.DSN)
	override(&result.Upload.BaseURL, project.Upload.BaseURL)
	override(&result.Mention.Match, project.Mention.Match)
	override(&result.Mention.Commit, project.Mention.Commit)
	override(&result.Mention.DirectoryFile, project.Mention.DirectoryFile)

	if project.Autosave.QuietMS != 0 {
		result.Autosave.QuietMS = project.Autosave.QuietMS
	}
	if project.Upload.DelayMS != 0 {
		result.Upload.DelayMS = project.Upload.DelayMS
	}
	// Pointer booleans let a project explicitly turn a global "true" off.
	if project.Validation.RequireTags != nil {
		result.Validation.RequireTags = project.Validation.RequireTags
	}
	if project.Preview.HonorOverrides != nil {
		result.Preview.HonorOverrides = project.Preview.HonorOverrides
	}
	if len(project.Tags.Available) > 0 {
		result.Tags.Available = slices.Clone(project.Tags.Available)
	}

	return &result
}

// StoreDriver returns the configured backend, defaulting to memory.
func (s *Settings) StoreDriver() string {
	if s.Store.Driver == "" {
		return DefaultStoreDriver
	}
	return s.Store.Driver
}

// StoreDSN returns the backend DSN; sqlite defaults to a file under the
// global directory.
func (s *Settings) StoreDSN() string {
	if s.Store.DSN == "" && s.StoreDriver() == "sqlite" {
		return filepath.Join(GlobalDir(), "templates.db")
	}
	return s.Store.DSN
}

// QuietPeriod is the autosave debounce interval.
func (s *Settings) QuietPeriod() time.Duration {
	return msOr(s.Autosave.QuietMS, DefaultQuietMS)
}

// UploadDelay is the simulated upload latency.
func (s *Settings) UploadDelay() time.Duration {
	return msOr(s.Upload.DelayMS, DefaultUploadMS)
}

// UploadBaseURL is the prefix of simulated attachment URLs.
func (s *Settings) UploadBaseURL() string {
	if s.Upload.BaseURL == "" {
		return DefaultUploadBase
	}
	return s.Upload.BaseURL
}

// MatchMode is "prefix" or "fuzzy".
func (s *Settings) MatchMode() string {
	if s.Mention.Match == "" {
		return DefaultMatchMode
	}
	return s.Mention.Match
}

// CommitPolicy is "replace" or "keep".
func (s *Settings) CommitPolicy() string {
	if s.Mention.Commit == "" {
		return DefaultCommit
	}
	return s.Mention.Commit
}

// RequireTags reports whether the tags field is required (default true).
func (s *Settings) RequireTags() bool {
	return boolOr(s.Validation.RequireTags, true)
}

// HonorOverrides reports whether preview overrides apply (default true).
func (s *Settings) HonorOverrides() bool {
	return boolOr(s.Preview.HonorOverrides, true)
}

// AvailableTags returns the selectable tags.
func (s *Settings) AvailableTags() []string {
	if len(s.Tags.Available) == 0 {
		return slices.Clone(DefaultTags)
	}
	return slices.Clone(s.Tags.Available)
}

func msOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Millisecond
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
