package host_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/spiceqa/rvdispatch"
	"github.com/spiceqa/rvdispatch/action"
	"github.com/spiceqa/rvdispatch/action/actiontest"
	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/host"
	"github.com/spiceqa/rvdispatch/registry"
	"github.com/spiceqa/rvdispatch/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModule registers one implementation per entry of impls.
type stubModule struct {
	name  string
	impls map[string][]capability.Marker
	err   error
}

func (m stubModule) Name() string { return m.name }

func (m stubModule) Register(r action.Registrar) error {
	if m.err != nil {
		return m.err
	}
	for name, markers := range m.impls {
		impl := m.name
		if err := r.Register(markers, name, func(context.Context, action.VM, ...any) (any, error) {
			return impl, nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func TestNew_Builtin(t *testing.T) {
	t.Parallel()

	h, err := host.New()
	require.NoError(t, err)
	assert.True(t, h.Table().Sealed())
	assert.NotNil(t, h.Taxonomy())
	assert.NotNil(t, h.Resolver())
	assert.NotNil(t, h.Invoker())

	names, err := h.Actions("")
	require.NoError(t, err)
	assert.Contains(t, names, "new_session")
	assert.Contains(t, names, "service_status")

	err = h.Table().Register([]capability.Marker{capability.Linux}, "late", func(context.Context, action.VM, ...any) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, registry.ErrSealed)
}

func TestNew_FailFastNamesModule(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := host.New(host.WithModules(
		stubModule{name: "ok", impls: map[string][]capability.Marker{"a": {capability.Linux}}},
		stubModule{name: "broken", err: boom},
	))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `loading module "broken"`)
}

func TestNew_StrictConflict(t *testing.T) {
	t.Parallel()

	first := stubModule{name: "first", impls: map[string][]capability.Marker{"new_session": {capability.Linux}}}
	second := stubModule{name: "second", impls: map[string][]capability.Marker{"new_session": {capability.Linux}}}

	_, err := host.New(host.WithModules(first, second))
	assert.ErrorIs(t, err, registry.ErrConflict)

	h, err := host.New(host.WithModules(first, second), host.WithStrictMode(false))
	require.NoError(t, err)
	vm := actiontest.NewFakeVM("vm", capability.MustNewProfile(h.Taxonomy(), map[capability.Category]string{capability.OSFamily: "linux"}))
	out, err := h.Invoke(context.Background(), vm, "new_session")
	require.NoError(t, err)
	assert.Equal(t, "second", out)
}

func TestNew_UnknownMarkerRejected(t *testing.T) {
	t.Parallel()

	_, err := host.New(host.WithModules(stubModule{
		name:  "solaris",
		impls: map[string][]capability.Marker{"new_session": {capability.OS("solaris")}},
	}))
	assert.ErrorIs(t, err, capability.ErrUnknownMarker)
}

func TestNew_UnreachableKeyRejected(t *testing.T) {
	t.Parallel()

	for name, markers := range map[string][]capability.Marker{
		"distro":  {capability.Linux, capability.Dist("rhel")},
		"os arch": {capability.Linux, capability.Bits64},
		"empty":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := host.New(host.WithModules(stubModule{
				name:  "shadowed",
				impls: map[string][]capability.Marker{"x": markers},
			}))
			require.ErrorIs(t, err, registry.ErrUnreachableKey)
			assert.Contains(t, err.Error(), `loading module "shadowed"`)
		})
	}
}

func TestHost_InvokeAndExplain(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h, err := host.New(
		host.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		host.WithMiddleware(rvdispatch.PanicRecoveryMiddleware()),
	)
	require.NoError(t, err)

	p, err := h.NewProfile(map[capability.Category]string{
		capability.OSFamily:     "linux",
		capability.Distro:       "rhel",
		capability.VersionMajor: "7",
		capability.Arch:         "64bits",
	})
	require.NoError(t, err)
	vm := actiontest.NewFakeVM("rhel7", p)

	_, err = h.Invoke(context.Background(), vm, "new_session", "spice://10.0.0.1:5900")
	require.NoError(t, err)
	assert.Contains(t, vm.LastCommand(), "DISPLAY=:0")
	assert.Contains(t, logs.String(), "action table sealed")
	assert.Contains(t, logs.String(), "dispatching action")

	fn, err := h.Resolve(p, "close_session")
	require.NoError(t, err)
	_, err = fn(context.Background(), vm)
	require.NoError(t, err)

	tr := h.Explain(p, "new_session")
	require.NotNil(t, tr.Match)
	assert.Equal(t, "[os ver]", tr.Match.Combination.String())

	_, err = h.Invoke(context.Background(), vm, "reboot_guest")
	assert.ErrorIs(t, err, resolver.ErrNoImplementation)
}

func TestHost_NewProfileValidates(t *testing.T) {
	t.Parallel()

	h, err := host.New(host.WithModules())
	require.NoError(t, err)
	assert.Zero(t, h.Table().Len())

	_, err = h.NewProfile(map[capability.Category]string{
		capability.OSFamily: "windows",
		capability.Distro:   "rhel",
	})
	assert.ErrorIs(t, err, capability.ErrInconsistentProfile)
}

func TestHost_Actions(t *testing.T) {
	t.Parallel()

	h, err := host.New()
	require.NoError(t, err)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"*_session", []string{"close_session", "new_session"}},
		{"start_*", []string{"start_agent_service", "start_service"}},
		{"*agent*", []string{"start_agent_service", "stop_agent_service"}},
		{"session_running", []string{"session_running"}},
		{"nothing*", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := h.Actions(tt.pattern)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	_, err = h.Actions("[")
	assert.Error(t, err)
}
