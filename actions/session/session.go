// Package session registers implementations that open and close a
// remote-viewer client session on the guest.
package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
)

// Viewer install locations on Windows guests.
const (
	WindowsViewer       = `C:\Program Files\VirtViewer\bin\remote-viewer.exe`
	LegacyWindowsViewer = `C:\virt-viewer\bin\remote-viewer.exe`
)

const (
	viewerProcess = "remote-viewer"
	viewerImage   = "remote-viewer.exe"
	defaultScreen = ":0"
)

// Module implements action.Module for viewer sessions.
type Module struct{}

func (Module) Name() string { return "session" }

// Register adds the Linux and Windows session implementations.
func (Module) Register(r action.Registrar) error {
	linux := []capability.Marker{capability.Linux}
	rhel7 := []capability.Marker{capability.Linux, capability.Ver("7")}
	windows := []capability.Marker{capability.Windows}
	win7x86 := []capability.Marker{capability.Windows, capability.Ver("7"), capability.Bits32}

	regs := []struct {
		markers []capability.Marker
		name    string
		fn      action.Func
	}{
		{linux, "new_session", newLinuxSession("")},
		{rhel7, "new_session", newLinuxSession(defaultScreen)},
		{linux, "close_session", closeLinuxSession},
		{linux, "session_running", linuxSessionRunning},

		{windows, "new_session", newWindowsSession(WindowsViewer)},
		{win7x86, "new_session", newWindowsSession(LegacyWindowsViewer)},
		{windows, "close_session", closeWindowsSession},
		{windows, "session_running", windowsSessionRunning},
	}
	for _, reg := range regs {
		if err := r.Register(reg.markers, reg.name, reg.fn); err != nil {
			return fmt.Errorf("register %s: %w", reg.name, err)
		}
	}
	return nil
}

// uriArg returns the connection URI argument after checking its scheme.
func uriArg(args []any) (string, error) {
	raw, err := action.Arg[string](args, 0)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", action.ErrBadArgument, err)
	}
	switch u.Scheme {
	case "spice", "vnc":
	default:
		return "", fmt.Errorf("%w: unsupported connection scheme %q", action.ErrBadArgument, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: connection URI %q has no host", action.ErrBadArgument, raw)
	}
	return raw, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// newLinuxSession launches remote-viewer in the background. A non-empty
// display is exported first for guests without a session-wide DISPLAY.
func newLinuxSession(display string) action.Func {
	return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
		uri, err := uriArg(args)
		if err != nil {
			return nil, err
		}
		cmd := fmt.Sprintf("nohup %s %s >/dev/null 2>&1 &", viewerProcess, shellQuote(uri))
		if display != "" {
			cmd = "DISPLAY=" + display + " " + cmd
		}
		if _, err := vm.Exec(ctx, cmd); err != nil {
			return nil, fmt.Errorf("start viewer on %s: %w", vm.Name(), err)
		}
		return nil, nil
	}
}

func closeLinuxSession(ctx context.Context, vm action.VM, _ ...any) (any, error) {
	if _, err := vm.Exec(ctx, "pkill -f "+viewerProcess+" || true"); err != nil {
		return nil, fmt.Errorf("stop viewer on %s: %w", vm.Name(), err)
	}
	return nil, nil
}

func linuxSessionRunning(ctx context.Context, vm action.VM, _ ...any) (any, error) {
	out, err := vm.Exec(ctx, "pgrep -f "+viewerProcess+" || true")
	if err != nil {
		return nil, fmt.Errorf("query viewer on %s: %w", vm.Name(), err)
	}
	return strings.TrimSpace(out) != "", nil
}

// cmdMetachars cannot appear inside a double-quoted cmd.exe argument without
// ending the quote or being expanded.
const cmdMetachars = "\"&|^<>%\r\n"

func newWindowsSession(viewer string) action.Func {
	return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
		uri, err := uriArg(args)
		if err != nil {
			return nil, err
		}
		if i := strings.IndexAny(uri, cmdMetachars); i >= 0 {
			return nil, fmt.Errorf("%w: connection URI contains %q", action.ErrBadArgument, uri[i])
		}
		cmd := fmt.Sprintf(`start "" "%s" "%s"`, viewer, uri)
		if _, err := vm.Exec(ctx, cmd); err != nil {
			return nil, fmt.Errorf("start viewer on %s: %w", vm.Name(), err)
		}
		return nil, nil
	}
}

func closeWindowsSession(ctx context.Context, vm action.VM, _ ...any) (any, error) {
	if _, err := vm.Exec(ctx, "taskkill /F /IM "+viewerImage); err != nil {
		return nil, fmt.Errorf("stop viewer on %s: %w", vm.Name(), err)
	}
	return nil, nil
}

func windowsSessionRunning(ctx context.Context, vm action.VM, _ ...any) (any, error) {
	out, err := vm.Exec(ctx, `tasklist /FI "IMAGENAME eq `+viewerImage+`"`)
	if err != nil {
		return nil, fmt.Errorf("query viewer on %s: %w", vm.Name(), err)
	}
	return strings.Contains(out, viewerImage), nil
}
