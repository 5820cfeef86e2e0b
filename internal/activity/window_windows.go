//go:build windows

package activity

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")

	// Callbacks are a finite resource on windows; create exactly one.
	enumMu       sync.Mutex
	enumFound    []Window
	enumCallback = windows.NewCallback(collectWindow)
)

// NewWindowLister returns a lister backed by EnumWindows.
func NewWindowLister() WindowLister {
	return enumLister{}
}

type enumLister struct{}

func (enumLister) Windows(_ context.Context) ([]Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = enumFound[:0]
	if err := windows.EnumWindows(enumCallback, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	out := make([]Window, len(enumFound))
	copy(out, enumFound)
	return out, nil
}

func collectWindow(hwnd windows.HWND, _ uintptr) uintptr {
	if !windows.IsWindowVisible(hwnd) {
		return 1
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return 1
	}
	enumFound = append(enumFound, Window{PID: int32(pid), Title: windowText(hwnd)})
	return 1
}

func windowText(hwnd windows.HWND) string {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}
