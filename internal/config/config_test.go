// ABOUTME: Tests for settings loading, merging and defaults
// ABOUTME: Uses temp directories for isolated file-based tests

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestMerge(t *testing.T) {
	t.Parallel()

	global := &Settings{
		Store:    StoreSettings{Driver: "sqlite", DSN: "/g.db"},
		Autosave: AutosaveSettings{QuietMS: 500},
		Mention:  MentionSettings{Match: "fuzzy"},
	}
	project := &Settings{Store: StoreSettings{DSN: "/p.db"}}

	result := merge(global, project)

	if result.Store.Driver != "sqlite" || result.Store.DSN != "/p.db" {
		t.Errorf("Store = %+v; want sqlite /p.db", result.Store)
	}
	if result.Autosave.QuietMS != 500 {
		t.Errorf("QuietMS = %d, want 500", result.Autosave.QuietMS)
	}
	if result.Mention.Match != "fuzzy" {
		t.Errorf("Match = %q, want fuzzy", result.Mention.Match)
	}
}

func TestMerge_Nil(t *testing.T) {
	t.Parallel()

	result := merge(nil, nil)
	if result == nil {
		t.Fatal("merge(nil, nil) should return non-nil")
	}
}

func TestMerge_ExplicitFalseOverrides(t *testing.T) {
	t.Parallel()

	global := &Settings{Validation: ValidationSettings{RequireTags: ptr(true)}}
	project := &Settings{Validation: ValidationSettings{RequireTags: ptr(false)}}

	if merge(global, project).RequireTags() {
		t.Error("project require_tags=false should win")
	}
	if !merge(global, &Settings{}).RequireTags() {
		t.Error("unset project key should keep global true")
	}
}

func TestMerge_TagsReplaced(t *testing.T) {
	t.Parallel()

	global := &Settings{Tags: TagSettings{Available: []string{"A"}}}
	project := &Settings{Tags: TagSettings{Available: []string{"B", "C"}}}

	result := merge(global, project)
	if diff := cmp.Diff([]string{"B", "C"}, result.AvailableTags()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	result.Tags.Available[0] = "mutated"
	if project.Tags.Available[0] != "B" {
		t.Error("merge aliased project slice")
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	if s.StoreDriver() != "memory" {
		t.Errorf("StoreDriver() = %q", s.StoreDriver())
	}
	if s.QuietPeriod() != 800*time.Millisecond {
		t.Errorf("QuietPeriod() = %v", s.QuietPeriod())
	}
	if s.UploadDelay() != time.Second {
		t.Errorf("UploadDelay() = %v", s.UploadDelay())
	}
	if s.UploadBaseURL() != DefaultUploadBase {
		t.Errorf("UploadBaseURL() = %q", s.UploadBaseURL())
	}
	if s.MatchMode() != "prefix" || s.CommitPolicy() != "replace" {
		t.Errorf("mention defaults = %q %q", s.MatchMode(), s.CommitPolicy())
	}
	if !s.RequireTags() || !s.HonorOverrides() {
		t.Error("boolean defaults should be true")
	}
	if diff := cmp.Diff(DefaultTags, s.AvailableTags()); diff != "" {
		t.Errorf("AvailableTags mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreDSN_SQLiteDefault(t *testing.T) {
	t.Parallel()

	s := &Settings{Store: StoreSettings{Driver: "sqlite"}}
	if got := s.StoreDSN(); filepath.Base(got) != "templates.db" {
		t.Errorf("StoreDSN() = %q; want a templates.db path", got)
	}
	s = &Settings{Store: StoreSettings{Driver: "postgres"}}
	if got := s.StoreDSN(); got != "" {
		t.Errorf("postgres StoreDSN() = %q; want empty", got)
	}
}

func TestLoadFile_NotExist(t *testing.T) {
	t.Parallel()

	s, err := loadFile("/nonexistent/path/config.json")
	if !os.IsNotExist(err) {
		t.Errorf("expected not exist error, got %v", err)
	}
	if s == nil {
		t.Error("expected non-nil default settings")
	}
}

func TestLoadFile_ValidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"store":{"driver":"postgres","dsn":"postgres://x"},"preview":{"honor_overrides":false},"autosave":{"quiet_ms":250}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := loadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.StoreDriver() != "postgres" || s.Store.DSN != "postgres://x" {
		t.Errorf("Store = %+v", s.Store)
	}
	if s.HonorOverrides() {
		t.Error("HonorOverrides() = true; want false")
	}
	if s.QuietPeriod() != 250*time.Millisecond {
		t.Errorf("QuietPeriod() = %v", s.QuietPeriod())
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_ProjectOverridesAndExpands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CTEDIT_PG_PASS", "s3cret")

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, ".ctedit"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(GlobalConfigFile(), []byte(`{"store":{"driver":"sqlite"},"mention":{"match":"fuzzy"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(ProjectDir(root), 0o700); err != nil {
		t.Fatal(err)
	}
	project := `{"store":{"driver":"postgres","dsn":"postgres://app:${CTEDIT_PG_PASS}@db/x"},"mention":{"directory_file":"people.yaml"}}`
	if err := os.WriteFile(ProjectConfigFile(root), []byte(project), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if s.StoreDriver() != "postgres" || s.StoreDSN() != "postgres://app:s3cret@db/x" {
		t.Errorf("Store = %+v", s.Store)
	}
	if s.MatchMode() != "fuzzy" {
		t.Errorf("MatchMode() = %q; want global fuzzy", s.MatchMode())
	}
	if want := filepath.Join(root, "people.yaml"); s.Mention.DirectoryFile != want {
		t.Errorf("DirectoryFile = %q; want %q", s.Mention.DirectoryFile, want)
	}
}
