// ABOUTME: Directory of mentionable people offered by the @mention autocomplete
// ABOUTME: Static built-in list or a YAML file; no network lookup

package directory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Person is a mentionable directory entry.
type Person struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title,omitempty"`
}

// Source yields the current list of mentionable people.
type Source interface {
	People(ctx context.Context) ([]Person, error)
}

// Static is an in-memory directory.
type Static []Person

// People returns a copy of the list.
func (s Static) People(_ context.Context) ([]Person, error) {
	out := make([]Person, len(s))
	copy(out, s)
	return out, nil
}

// Names builds a Static directory from bare names.
func Names(names ...string) Static {
	out := make(Static, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, Person{Name: n})
		}
	}
	return out
}

// Default is the built-in directory used when no file is configured.
func Default() Static {
	return Names("Phani", "Pavan", "Sai", "Mani", "Ravi", "Kiran", "Kishore")
}

// fileFormat is the on-disk YAML layout:
//
//	people:
//	  - name: Phani
//	    title: Legal
type fileFormat struct {
	People []Person `yaml:"people"`
}

// File reads the directory from a YAML file on every call so edits are
// picked up without restarting.
type File struct {
	Path string
}

// People parses the YAML file. Entries without a name are skipped.
func (f File) People(ctx context.Context) ([]Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", f.Path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing directory %s: %w", f.Path, err)
	}
	out := make([]Person, 0, len(ff.People))
	for _, p := range ff.People {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
