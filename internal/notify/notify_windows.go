//go:build windows

package notify

import (
	"golang.org/x/sys/windows"
)

// show blocks until the box is dismissed; Notifier calls it off the
// caller's goroutine.
func show(title, message string) error {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return err
	}
	caption, err := windows.UTF16PtrFromString(appName + ": " + title)
	if err != nil {
		return err
	}
	_, err = windows.MessageBox(0, text, caption, windows.MB_OK|windows.MB_ICONWARNING|windows.MB_SETFOREGROUND|windows.MB_TOPMOST)
	return err
}
