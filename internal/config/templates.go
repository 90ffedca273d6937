package config

import (
	"fmt"
	"os"
)

func Template() string {
	return gateTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(gateTemplate), 0o600)
}

const gateTemplate = `# gatectl configuration
threshold = 0.7
output = "json"
# metrics_file = "/var/lib/node_exporter/textfile/gatectl.prom"

[log]
level = "info"
format = "console"
timestamp = true
`
