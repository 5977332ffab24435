package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetActionKey(t *testing.T) {
	tests := []struct {
		name      string
		modifiers ModifierConfig
		actions   map[string]string
		action    string
		want      string
	}{
		{"primary default", ModifierConfig{}, nil, "voice_mode", "alt+v"},
		{"secondary uppercase", ModifierConfig{}, nil, "scroll_to_bottom", "alt+G"},
		{"ctrl primary", ModifierConfig{Primary: "ctrl", Secondary: "ctrl+shift"}, nil, "help", "ctrl+h"},
		{"special key", ModifierConfig{}, nil, "page_down", "alt+pgdown"},
		{"user override", ModifierConfig{}, map[string]string{"quit": "ctrl+q"}, "quit", "ctrl+q"},
		{"empty override ignored", ModifierConfig{}, map[string]string{"quit": ""}, "quit", "alt+q"},
		{"unknown action", ModifierConfig{}, nil, "launch_rockets", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := &KeyBindingsConfig{Modifiers: tt.modifiers, Actions: tt.actions}
			if got := kb.GetActionKey(tt.action); got != tt.want {
				t.Errorf("GetActionKey(%q) = %q, want %q", tt.action, got, tt.want)
			}
		})
	}
}

func TestDisplayActionKey(t *testing.T) {
	kb := DefaultKeybindings()

	tests := []struct {
		action string
		want   string
	}{
		{"prompt_1", "Alt+1"},
		{"half_page_down", "Alt+Shift+J"},
		{"clear_chat", "Alt+X"},
	}
	for _, tt := range tests {
		if got := kb.DisplayActionKey(tt.action); got != tt.want {
			t.Errorf("DisplayActionKey(%q) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestLoadKeybindingsCreatesTemplate(t *testing.T) {
	dir := t.TempDir()

	kb, err := LoadKeybindings(dir)
	if err != nil {
		t.Fatalf("LoadKeybindings() error = %v", err)
	}
	if kb.Primary() != "alt" {
		t.Errorf("Primary() = %q, want alt", kb.Primary())
	}
	if !FileExists(filepath.Join(dir, "keybindings.toml")) {
		t.Fatal("expected keybindings.toml to be created")
	}

	// The generated template must parse back to the defaults
	again, err := LoadKeybindings(dir)
	if err != nil {
		t.Fatalf("reloading template: %v", err)
	}
	if again.GetActionKey("voice_mode") != "alt+v" {
		t.Errorf("voice_mode = %q after reload", again.GetActionKey("voice_mode"))
	}
}

func TestLoadKeybindingsOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
[modifiers]
primary = "ctrl"

[actions]
voice_mode = "ctrl+t"
`
	if err := os.WriteFile(filepath.Join(dir, "keybindings.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	kb, err := LoadKeybindings(dir)
	if err != nil {
		t.Fatalf("LoadKeybindings() error = %v", err)
	}
	if kb.Secondary() != "alt+shift" {
		t.Errorf("Secondary() = %q, want default alt+shift", kb.Secondary())
	}
	if got := kb.GetActionKey("voice_mode"); got != "ctrl+t" {
		t.Errorf("voice_mode = %q, want ctrl+t", got)
	}
	if got := kb.GetActionKey("help"); got != "ctrl+h" {
		t.Errorf("help = %q, want ctrl+h", got)
	}
}

func TestKeybindingsValidate(t *testing.T) {
	tests := []struct {
		name      string
		modifiers ModifierConfig
		wantOK    bool
		wantWarn  bool
	}{
		{"defaults", ModifierConfig{}, true, false},
		{"shift alone", ModifierConfig{Primary: "shift", Secondary: "alt+shift"}, false, true},
		{"ctrl warns", ModifierConfig{Primary: "ctrl", Secondary: "ctrl+shift"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := &KeyBindingsConfig{Modifiers: tt.modifiers}
			ok, msg := kb.Validate()
			if ok != tt.wantOK {
				t.Errorf("Validate() ok = %v, want %v", ok, tt.wantOK)
			}
			if (msg != "") != tt.wantWarn {
				t.Errorf("Validate() msg = %q, wantWarn %v", msg, tt.wantWarn)
			}
		})
	}
}
