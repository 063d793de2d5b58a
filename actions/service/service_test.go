package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/action/actiontest"
	"github.com/spiceqa/rvdispatch/actions/service"
	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/registry"
	"github.com/spiceqa/rvdispatch/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	tbl := registry.New(registry.WithTaxonomy(capability.BuiltinTaxonomy()))
	require.NoError(t, service.Module{}.Register(tbl))
	tbl.Seal()
	return resolver.New(tbl)
}

func vmFor(t *testing.T, values map[capability.Category]string) *actiontest.FakeVM {
	t.Helper()
	p, err := capability.NewProfile(capability.BuiltinTaxonomy(), values)
	require.NoError(t, err)
	return actiontest.NewFakeVM("guest", p)
}

func run(t *testing.T, r *resolver.Resolver, vm *actiontest.FakeVM, name string, args ...any) (any, error) {
	t.Helper()
	m, err := r.Resolve(vm.Profile(), name)
	require.NoError(t, err)
	return m.Func(context.Background(), vm, args...)
}

func TestServiceControl_Commands(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	rhel := func(ver string) map[capability.Category]string {
		return map[capability.Category]string{
			capability.OSFamily:     "linux",
			capability.Distro:       "rhel",
			capability.VersionMajor: ver,
			capability.Arch:         "64bits",
		}
	}
	win10 := map[capability.Category]string{
		capability.OSFamily:     "windows",
		capability.Distro:       "win10",
		capability.VersionMajor: "10",
	}

	tests := []struct {
		name    string
		profile map[capability.Category]string
		action  string
		args    []any
		want    string
	}{
		{"systemd start", rhel("8"), "start_service", []any{"sshd"}, "systemctl start sshd"},
		{"systemd stop", rhel("7"), "stop_service", []any{"sshd"}, "systemctl stop sshd"},
		{"sysv start on 6", rhel("6"), "start_service", []any{"sshd"}, "service sshd start"},
		{"sysv stop on 5", rhel("5"), "stop_service", []any{"sshd"}, "service sshd stop"},
		{"systemd agent", rhel("8"), "start_agent_service", nil, "systemctl start spice-vdagentd"},
		{"sysv agent", rhel("6"), "stop_agent_service", nil, "service spice-vdagentd stop"},
		{"windows start", win10, "start_service", []any{"Spooler"}, "net start Spooler"},
		{"windows agent", win10, "stop_agent_service", nil, "net stop vdservice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vm := vmFor(t, tt.profile)
			_, err := run(t, r, vm, tt.action, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, vm.LastCommand())
		})
	}
}

func TestServiceStatus(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	linux := map[capability.Category]string{capability.OSFamily: "linux", capability.VersionMajor: "8"}
	rhel6 := map[capability.Category]string{capability.OSFamily: "linux", capability.VersionMajor: "6"}
	windows := map[capability.Category]string{capability.OSFamily: "windows"}

	tests := []struct {
		name    string
		profile map[capability.Category]string
		prefix  string
		output  string
		want    bool
	}{
		{"systemd active", linux, "systemctl is-active", "active\n", true},
		{"systemd inactive", linux, "systemctl is-active", "inactive\n", false},
		{"sysv running", rhel6, "service", "sshd (pid 1234) is running...\n", true},
		{"sysv stopped", rhel6, "service", "sshd is stopped\n", false},
		{"sysv not running", rhel6, "service", "sshd dead but subsys locked, not running\n", false},
		{"sc running", windows, "sc query", "SERVICE_NAME: vdservice\n        STATE              : 4  RUNNING\n", true},
		{"sc stopped", windows, "sc query", "SERVICE_NAME: vdservice\n        STATE              : 1  STOPPED\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vm := vmFor(t, tt.profile)
			vm.On(tt.prefix, actiontest.Reply{Output: tt.output})
			got, err := run(t, r, vm, "service_status", "vdservice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceControl_Errors(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	linux := map[capability.Category]string{capability.OSFamily: "linux"}

	t.Run("missing name", func(t *testing.T) {
		_, err := run(t, r, vmFor(t, linux), "start_service")
		assert.ErrorIs(t, err, action.ErrBadArgument)
	})

	t.Run("shell metacharacters rejected", func(t *testing.T) {
		vm := vmFor(t, linux)
		_, err := run(t, r, vm, "start_service", "sshd; reboot")
		assert.ErrorIs(t, err, action.ErrBadArgument)
		assert.Empty(t, vm.Commands())
	})

	t.Run("exec failure is wrapped", func(t *testing.T) {
		execErr := errors.New("exit status 5")
		vm := vmFor(t, linux).On("systemctl", actiontest.Reply{Err: execErr})
		_, err := run(t, r, vm, "stop_service", "sshd")
		require.ErrorIs(t, err, execErr)
		assert.Contains(t, err.Error(), "stop service sshd on guest")
	})
}

func TestModule_RegistersEveryAction(t *testing.T) {
	t.Parallel()

	tbl := registry.New()
	require.NoError(t, service.Module{}.Register(tbl))
	assert.Equal(t, []string{
		"service_status",
		"start_agent_service",
		"start_service",
		"stop_agent_service",
		"stop_service",
	}, tbl.AllActionsRegistered())
	assert.Equal(t, 20, tbl.Len())
	assert.Equal(t, "service", service.Module{}.Name())
}

func TestModule_RegisterTwiceConflicts(t *testing.T) {
	t.Parallel()

	tbl := registry.New()
	require.NoError(t, service.Module{}.Register(tbl))
	err := service.Module{}.Register(tbl)
	assert.ErrorIs(t, err, registry.ErrConflict)
}
