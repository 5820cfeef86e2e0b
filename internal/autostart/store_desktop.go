//go:build !windows && !darwin

package autostart

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const recordKey = "X-PlayAwake-Record="

// NewAutorunStore returns the XDG autostart directory
// ($XDG_CONFIG_HOME/autostart) as a Store of .desktop entries.
func NewAutorunStore() (Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve autostart dir: %w", err)
	}
	return NewDesktopStore(filepath.Join(base, "autostart")), nil
}

func NewDesktopStore(dir string) Store {
	return &dirStore{dir: dir, format: desktopFormat{}}
}

type desktopFormat struct{}

func (desktopFormat) ext() string { return ".desktop" }

func (desktopFormat) render(name, value string) ([]byte, error) {
	if strings.ContainsAny(value, "\r\n") {
		return nil, fmt.Errorf("autostart value must be a single line")
	}
	exec := value
	if p := LaunchPath(value); p != "" {
		exec = quoteExec(p)
	}

	var b bytes.Buffer
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", name)
	fmt.Fprintf(&b, "Exec=%s\n", exec)
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	b.WriteString(recordKey + value + "\n")
	return b.Bytes(), nil
}

func (desktopFormat) extract(data []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if v, ok := strings.CutPrefix(line, recordKey); ok {
			return v, true
		}
	}
	return "", false
}

// quoteExec quotes a path for a desktop entry Exec key.
func quoteExec(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(p) + `"`
}
