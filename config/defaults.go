package config

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		DataDirectory: "~/.local/share/jarvis",
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
		},
		History: HistoryConfig{
			Backend: DefaultHistoryBackend,
		},
	}
}

func GenerateUserConfigTemplate() string {
	return `# Jarvis Configuration
# Location: ~/.config/jarvis/config.toml
# This file uses TOML format: https://toml.io
# Every value can be overridden with a JARVIS_* environment variable.

# Directory where chat history and the debug log are stored
data_directory = "~/.local/share/jarvis"

[api]
# Assistant backend (JARVIS_API_BASE_URL)
base_url = "http://localhost:8000"

# How often the connection indicator polls /health
health_interval = "30s"

[history]
# Where the last 50 messages are kept: "json", "sqlite", "bolt" or "memory"
backend = "json"

[voice]
# Voice passed to /voice (empty = server default)
voice_id = ""

# Speech-to-text command; must print JSON lines {"text": "...", "final": true}
# Example: "jarvis-stt --lang en-US"
stt_command = ""

# Audio player invoked with the synthesized file as last argument
# Example: "aplay -q" (Linux), "afplay" (macOS), "ffplay -nodisp -autoexit -loglevel quiet"
player_command = ""
`
}
