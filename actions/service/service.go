// Package service registers implementations for starting, stopping and
// querying system services on the guest.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/capability"
)

// Agent service names per OS family.
const (
	LinuxAgent   = "spice-vdagentd"
	WindowsAgent = "vdservice"
)

var serviceName = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)

// Module implements action.Module for service control.
type Module struct{}

func (Module) Name() string { return "service" }

// Register adds systemd, SysV and Windows service control implementations.
func (Module) Register(r action.Registrar) error {
	linux := []capability.Marker{capability.Linux}
	rhel5 := []capability.Marker{capability.Linux, capability.Ver("5")}
	rhel6 := []capability.Marker{capability.Linux, capability.Ver("6")}
	windows := []capability.Marker{capability.Windows}

	regs := []registration{
		{linux, "start_service", control(systemctl, "start")},
		{linux, "stop_service", control(systemctl, "stop")},
		{linux, "service_status", status(systemdStatus)},
		{linux, "start_agent_service", agent(LinuxAgent, control(systemctl, "start"))},
		{linux, "stop_agent_service", agent(LinuxAgent, control(systemctl, "stop"))},

		{windows, "start_service", control(netCommand, "start")},
		{windows, "stop_service", control(netCommand, "stop")},
		{windows, "service_status", status(scStatus)},
		{windows, "start_agent_service", agent(WindowsAgent, control(netCommand, "start"))},
		{windows, "stop_agent_service", agent(WindowsAgent, control(netCommand, "stop"))},
	}
	for _, m := range [][]capability.Marker{rhel5, rhel6} {
		regs = append(regs, []registration{
			{m, "start_service", control(sysv, "start")},
			{m, "stop_service", control(sysv, "stop")},
			{m, "service_status", status(sysvStatus)},
			{m, "start_agent_service", agent(LinuxAgent, control(sysv, "start"))},
			{m, "stop_agent_service", agent(LinuxAgent, control(sysv, "stop"))},
		}...)
	}

	for _, reg := range regs {
		if err := r.Register(reg.markers, reg.name, reg.fn); err != nil {
			return fmt.Errorf("register %s: %w", reg.name, err)
		}
	}
	return nil
}

type registration struct {
	markers []capability.Marker
	name    string
	fn      action.Func
}

type commandFunc func(verb, name string) string

func systemctl(verb, name string) string  { return "systemctl " + verb + " " + name }
func sysv(verb, name string) string       { return "service " + name + " " + verb }
func netCommand(verb, name string) string { return "net " + verb + " " + name }

func nameArg(args []any) (string, error) {
	name, err := action.Arg[string](args, 0)
	if err != nil {
		return "", err
	}
	if !serviceName.MatchString(name) {
		return "", fmt.Errorf("%w: invalid service name %q", action.ErrBadArgument, name)
	}
	return name, nil
}

func control(cmd commandFunc, verb string) action.Func {
	return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
		name, err := nameArg(args)
		if err != nil {
			return nil, err
		}
		if _, err := vm.Exec(ctx, cmd(verb, name)); err != nil {
			return nil, fmt.Errorf("%s service %s on %s: %w", verb, name, vm.Name(), err)
		}
		return nil, nil
	}
}

func agent(name string, fn action.Func) action.Func {
	return func(ctx context.Context, vm action.VM, _ ...any) (any, error) {
		return fn(ctx, vm, name)
	}
}

// statusProbe returns the command to run and how to read its output.
type statusProbe struct {
	command func(name string) string
	running func(output string) bool
}

var (
	systemdStatus = statusProbe{
		command: func(name string) string { return "systemctl is-active " + name + " || true" },
		running: func(out string) bool { return strings.TrimSpace(out) == "active" },
	}
	sysvStatus = statusProbe{
		command: func(name string) string { return "service " + name + " status || true" },
		running: func(out string) bool {
			return strings.Contains(out, "running") && !strings.Contains(out, "not running")
		},
	}
	scStatus = statusProbe{
		command: func(name string) string { return "sc query " + name },
		running: func(out string) bool {
			for _, line := range strings.Split(out, "\n") {
				if strings.Contains(line, "STATE") {
					return strings.Contains(line, "RUNNING")
				}
			}
			return false
		},
	}
)

// status reports whether the named service is running as a bool.
func status(p statusProbe) action.Func {
	return func(ctx context.Context, vm action.VM, args ...any) (any, error) {
		name, err := nameArg(args)
		if err != nil {
			return nil, err
		}
		out, err := vm.Exec(ctx, p.command(name))
		if err != nil {
			return nil, fmt.Errorf("query service %s on %s: %w", name, vm.Name(), err)
		}
		return p.running(out), nil
	}
}
