// ABOUTME: Editor keybindings: defaults, JSON overrides and reverse lookup by key string
// ABOUTME: Key strings use bubbletea's KeyMsg.String() form (e.g. "alt+b", "ctrl+s")

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// KeyAction represents an action that can be bound to keys
type KeyAction string

const (
	ActionBold          KeyAction = "bold"
	ActionItalic        KeyAction = "italic"
	ActionUnderline     KeyAction = "underline"
	ActionColor         KeyAction = "color"
	ActionSelect        KeyAction = "select"
	ActionSave          KeyAction = "save"
	ActionTogglePreview KeyAction = "togglePreview"
	ActionNextField     KeyAction = "nextField"
	ActionPrevField     KeyAction = "prevField"
	ActionToggleActive  KeyAction = "toggleActive"
	ActionUpload        KeyAction = "upload"
	ActionPreviewVar    KeyAction = "previewVariable"
	ActionReload        KeyAction = "reload"
	ActionQuit          KeyAction = "quit"
)

// Keybindings represents the keybindings configuration
type Keybindings struct {
	Bindings map[KeyAction][]string `json:"-"`
	reverse  map[string]KeyAction
}

// RawKeybindings is for JSON marshaling
type RawKeybindings map[string][]string

// NewKeybindings creates a new Keybindings with default bindings
func NewKeybindings() *Keybindings {
	kb := &Keybindings{
		Bindings: make(map[KeyAction][]string),
	}
	kb.setDefaultBindings()
	kb.index()
	return kb
}

func (kb *Keybindings) setDefaultBindings() {
	kb.Bindings[ActionBold] = []string{"alt+b"}
	kb.Bindings[ActionItalic] = []string{"alt+i"}
	kb.Bindings[ActionUnderline] = []string{"alt+u"}
	kb.Bindings[ActionColor] = []string{"alt+c"}
	kb.Bindings[ActionSelect] = []string{"ctrl+@"}
	kb.Bindings[ActionSave] = []string{"ctrl+s"}
	kb.Bindings[ActionTogglePreview] = []string{"alt+p"}
	kb.Bindings[ActionNextField] = []string{"ctrl+n"}
	kb.Bindings[ActionPrevField] = []string{"ctrl+p"}
	kb.Bindings[ActionToggleActive] = []string{"alt+a"}
	kb.Bindings[ActionUpload] = []string{"ctrl+u"}
	kb.Bindings[ActionPreviewVar] = []string{"alt+v"}
	kb.Bindings[ActionReload] = []string{"ctrl+r"}
	kb.Bindings[ActionQuit] = []string{"ctrl+c", "ctrl+q"}
}

// index rebuilds the key -> action map. Actions are visited in name order
// so a key bound twice resolves deterministically.
func (kb *Keybindings) index() {
	actions := make([]string, 0, len(kb.Bindings))
	for a := range kb.Bindings {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)
	kb.reverse = make(map[string]KeyAction)
	for _, a := range actions {
		for _, k := range kb.Bindings[KeyAction(a)] {
			if _, taken := kb.reverse[k]; !taken {
				kb.reverse[k] = KeyAction(a)
			}
		}
	}
}

// LoadKeybindings starts from the defaults and applies each existing file
// in order; later files win. Unknown action names are ignored.
func LoadKeybindings(paths ...string) (*Keybindings, error) {
	kb := NewKeybindings()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var raw RawKeybindings
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for actionName, keys := range raw {
			action := KeyAction(actionName)
			if _, ok := kb.Bindings[action]; ok {
				kb.Bindings[action] = keys
			}
		}
	}
	kb.index()
	return kb, nil
}

// SaveKeybindings saves keybindings to a file
func (kb *Keybindings) SaveKeybindings(path string) error {
	raw := make(RawKeybindings)
	for action, keys := range kb.Bindings {
		raw[string(action)] = keys
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// GetBindings returns the bindings for an action
func (kb *Keybindings) GetBindings(action KeyAction) []string {
	if kb == nil {
		return nil
	}
	return kb.Bindings[action]
}

// ActionFor returns the action bound to key.
func (kb *Keybindings) ActionFor(key string) (KeyAction, bool) {
	if kb == nil {
		return "", false
	}
	a, ok := kb.reverse[key]
	return a, ok
}
