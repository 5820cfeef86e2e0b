//go:build darwin

package autostart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const recordPlistKey = "PlayAwakeRecord"

var plistTmpl = template.Must(template.New("plist").Funcs(template.FuncMap{"xml": xmlEscape}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{xml .Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{xml .Path}}</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>` + recordPlistKey + `</key>
	<string>{{xml .Record}}</string>
</dict>
</plist>
`))

// NewAutorunStore returns ~/Library/LaunchAgents as a Store of plists.
func NewAutorunStore() (Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	return &dirStore{dir: filepath.Join(home, "Library", "LaunchAgents"), format: plistFormat{}}, nil
}

type plistFormat struct{}

func (plistFormat) ext() string { return ".plist" }

func (plistFormat) render(name, value string) ([]byte, error) {
	path := LaunchPath(value)
	if path == "" {
		return nil, fmt.Errorf("autostart value has no executable path")
	}
	var b bytes.Buffer
	err := plistTmpl.Execute(&b, struct{ Label, Path, Record string }{name, path, value})
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (plistFormat) extract(data []byte) (string, bool) {
	s := string(data)
	_, rest, ok := strings.Cut(s, "<key>"+recordPlistKey+"</key>")
	if !ok {
		return "", false
	}
	_, rest, ok = strings.Cut(rest, "<string>")
	if !ok {
		return "", false
	}
	v, _, ok := strings.Cut(rest, "</string>")
	if !ok {
		return "", false
	}
	return html.UnescapeString(v), true
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
