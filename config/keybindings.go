package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"` // Optional overrides for specific actions
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl", "meta", "super"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string // "j", "k", "enter", etc.
}

// actionRegistry maps action names to their default keybindings
// Users can override any of these in the [actions] section of keybindings.toml
var actionRegistry = map[string]actionDef{
	// Main view - Modal toggles
	"help":            {"primary", "h"},
	"search_messages": {"primary", "f"},
	"voice_mode":      {"primary", "v"},
	"clear_chat":      {"primary", "x"},

	// Main view - Suggested prompts (empty conversation only)
	"prompt_1": {"primary", "1"},
	"prompt_2": {"primary", "2"},
	"prompt_3": {"primary", "3"},
	"prompt_4": {"primary", "4"},

	// Main view - Scrolling
	"scroll_down":      {"primary", "j"},
	"scroll_up":        {"primary", "k"},
	"half_page_down":   {"secondary", "j"},
	"half_page_up":     {"secondary", "k"},
	"page_down":        {"primary", "pgdown"},
	"page_up":          {"primary", "pgup"},
	"scroll_to_top":    {"primary", "g"},
	"scroll_to_bottom": {"secondary", "g"},

	// Main view - Actions
	"quit":               {"primary", "q"},
	"yank_last_response": {"primary", "y"},
	"yank_conversation":  {"primary", "c"},
	"export_chat":        {"primary", "e"},

	// Voice panel
	"voice_record":  {"primary", "r"},
	"voice_discard": {"primary", "d"},
	"stop_playback": {"primary", "s"},

	// Search modal (modifier required, the input has focus)
	"search_down": {"primary", "j"},
	"search_up":   {"primary", "k"},

	// Universal clear input action (works in all text input contexts)
	"clear_input": {"primary", "u"},
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "alt",
			Secondary: "alt+shift",
		},
	}
}

// LoadKeybindings loads keybindings.toml from the data directory, creating it on first run
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")

	if !FileExists(keybindingsPath) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	_, err := toml.DecodeFile(keybindingsPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	// Validate and apply defaults if missing
	if cfg.Modifiers.Primary == "" {
		cfg.Modifiers.Primary = "alt"
	}
	if cfg.Modifiers.Secondary == "" {
		cfg.Modifiers.Secondary = "alt+shift"
	}

	return cfg, nil
}

// CreateDefaultKeybindings creates default keybindings.toml
func CreateDefaultKeybindings(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")
	if FileExists(keybindingsPath) {
		return nil
	}

	content := GenerateKeybindingsTemplate()
	if err := os.WriteFile(keybindingsPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write keybindings: %w", err)
	}

	return nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# Jarvis Keybindings Configuration
# Location: ~/.local/share/jarvis/keybindings.toml
# This file uses TOML format: https://toml.io

# ==============================================================================
# MODIFIER KEYS
# ==============================================================================
# Change these to avoid conflicts with your window manager/terminal multiplexer

[modifiers]
primary = "alt"          # Default: alt (Options: alt, ctrl, meta, super)
secondary = "alt+shift"  # Default: alt+shift

# For tmux users (Alt may conflict):
#   primary = "ctrl"
#   secondary = "ctrl+shift"

# ==============================================================================
# PER-ACTION OVERRIDES
# ==============================================================================
# Actions: help, search_messages, voice_mode, clear_chat, prompt_1..prompt_4,
# scroll_down, scroll_up, half_page_down, half_page_up, page_down, page_up,
# scroll_to_top, scroll_to_bottom, quit, yank_last_response, yank_conversation,
# export_chat, voice_record, voice_discard, stop_playback, search_down,
# search_up, clear_input

[actions]
# Examples (uncomment to use):
#   voice_mode = "ctrl+t"
#   quit = "ctrl+shift+q"
`
}

// Helper methods for building keybinding strings

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "alt"
	}
	return kb.Modifiers.Primary
}

// Secondary returns the secondary modifier
func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return "alt+shift"
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier
// Example: PrimaryKey("s") returns "alt+s" (or "ctrl+s" if primary is "ctrl")
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with secondary modifier
// For modifiers containing "shift" + single letter keys, returns uppercase letter
// Example: SecondaryKey("s") returns "alt+S" (not "alt+shift+s")
// Example: SecondaryKey("f1") returns "alt+shift+f1" (special keys keep explicit shift)
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	// If secondary contains "shift" and key is a single lowercase letter,
	// use uppercase letter instead of explicit shift (matches terminal behavior)
	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		// Remove "shift" from modifier and use uppercase letter
		modParts := strings.Split(secondary, "+")
		var cleanMods []string
		for _, part := range modParts {
			if strings.ToLower(part) != "shift" {
				cleanMods = append(cleanMods, part)
			}
		}
		if len(cleanMods) > 0 {
			return strings.Join(cleanMods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// PrimaryDisplay returns capitalized modifier for display in UI
// Example: "alt" -> "Alt", "ctrl" -> "Ctrl"
func (kb *KeyBindingsConfig) PrimaryDisplay() string {
	return capitalizeModifier(kb.Primary())
}

// SecondaryDisplay returns capitalized modifier for display in UI
func (kb *KeyBindingsConfig) SecondaryDisplay() string {
	return capitalizeModifier(kb.Secondary())
}

// Helper to capitalize modifier strings for display
func capitalizeModifier(mod string) string {
	parts := strings.Split(mod, "+")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "+")
}

// GetActionKey returns the keybinding for a specific action
// Checks user overrides first, then falls back to action registry defaults
// Example: GetActionKey("scroll_down") returns "alt+j" (or user override like "ctrl+d")
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	// Check for user override first
	if kb.Actions != nil {
		if override, exists := kb.Actions[action]; exists && override != "" {
			return override
		}
	}

	// Fall back to action registry default
	if def, exists := actionRegistry[action]; exists {
		switch def.modifier {
		case "primary":
			return kb.PrimaryKey(def.key)
		case "secondary":
			return kb.SecondaryKey(def.key)
		case "none":
			return def.key
		}
	}

	// Action not found - return empty string
	return ""
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "ctrl+shift+j" -> "Ctrl+Shift+J"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// capitalizeKeybinding capitalizes a keybinding string for display
// Converts uppercase letters to Shift+ format for clarity
// Examples:
//   "ctrl+shift+j" -> "Ctrl+Shift+J"
//   "alt+D" -> "Alt+Shift+D" (uppercase D = Shift+D)
//   "alt+j" -> "Alt+J"
func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	var result []string

	for i, part := range parts {
		if len(part) == 0 {
			continue
		}

		// Check if this is a single uppercase letter (indicates Shift was pressed)
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			// Insert "Shift+" before the uppercase letter and convert to lowercase
			// But only if "shift" isn't already in the parts
			hasShift := false
			for _, p := range parts {
				if strings.ToLower(p) == "shift" {
					hasShift = true
					break
				}
			}
			if !hasShift && i > 0 { // Only add shift if there's a modifier before it
				result = append(result, "Shift")
			}
			result = append(result, strings.ToUpper(part[:1]))
		} else {
			// Regular part - just capitalize first letter
			result = append(result, strings.ToUpper(part[:1])+part[1:])
		}
	}

	return strings.Join(result, "+")
}

// Validate checks if the configuration is valid
// Returns (isValid, warningMessage)
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	// Disallow empty
	if primary == "" || secondary == "" {
		return false, "Modifiers cannot be empty"
	}

	// Disallow shift alone
	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}

	// Warn about ctrl usage (but allow it)
	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}

	return true, ""
}
