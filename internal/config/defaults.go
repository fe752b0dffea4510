package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

// DefaultConfig returns the built-in configuration layer.
func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"addr":          ":8080",
			"read_timeout":  15,
			"write_timeout": 30,
		},
		"database": map[string]interface{}{
			"path": "~/.reminder/reminders.db",
		},
		"timezone": "Local",
		"log": map[string]interface{}{
			"level":  "info",
			"pretty": false,
		},
		"renewal": map[string]interface{}{
			"mode": RenewalManual,
		},
		"scheduler": map[string]interface{}{
			"enabled":      true,
			"cron":         "0 9 * * *", // daily at 09:00
			"run_on_start": false,
		},
		"notify": map[string]interface{}{
			"channels": []string{},
			"subject":  "Reminder digest",
			"templates": map[string]interface{}{
				"text":     DefaultTextTemplate,
				"markdown": DefaultMarkdownTemplate,
			},
			"email": map[string]interface{}{
				"host":       "",
				"port":       465,
				"username":   "",
				"password":   "",
				"from":       "",
				"recipients": "",
			},
			"dingtalk": map[string]interface{}{
				"webhook": "",
				"secret":  "",
			},
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
				"base_url":  "https://api.telegram.org",
			},
		},
	}
}

// DefaultTextTemplate renders the plain text digest sent by email and
// Telegram. Templates get the sprig function set plus "plural".
const DefaultTextTemplate = `Reminders due on {{ .Today }}: {{ len .Items }}
{{ range .Items }}
- {{ .Name | trunc 80 }}{{ with .Type }} [{{ . }}]{{ end }}: ends {{ .EndDate }}, {{ plural .DaysLeft "day" }} left, handler {{ .Handler | default "unassigned" }}
{{- end }}
`

// DefaultMarkdownTemplate renders the DingTalk digest.
const DefaultMarkdownTemplate = `### Reminders due on {{ .Today }}

{{ range .Items -}}
- **{{ .Name | trunc 80 }}**{{ with .Type }} ({{ . }}){{ end }}: ends {{ .EndDate }}, {{ plural .DaysLeft "day" }} left, handler {{ .Handler | default "unassigned" }}
{{ end -}}
`

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.reminder/config.yaml"
}
