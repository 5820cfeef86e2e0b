//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

func show(title, message string) error {
	script := fmt.Sprintf("display notification %s with title %s", appleString(message), appleString(title))
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func appleString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
