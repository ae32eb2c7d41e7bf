package config

import (
	"os"
	"strings"
)

// UpdateEnvFile merges key/value pairs into an env file, replacing
// existing assignments in place and appending missing ones. The file is
// created when absent. Changes take effect on the next process start.
func UpdateEnvFile(path string, updates map[string]string) error {
	content := ""
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
	}

	for key, value := range updates {
		content = updateEnvLine(content, key, value)
	}

	return os.WriteFile(path, []byte(content), 0o600)
}

func updateEnvLine(content, key, value string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, key+"=") && !strings.HasPrefix(trimmed, "#") {
			lines[i] = key + "=" + value
			return strings.Join(lines, "\n")
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + key + "=" + value + "\n"
}
