package profile_test

import (
	"testing"

	"github.com/spiceqa/rvdispatch/capability"
	"github.com/spiceqa/rvdispatch/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromParams(t *testing.T) {
	t.Parallel()

	tax := capability.BuiltinTaxonomy()
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{
			name:   "rhel with minor version",
			params: map[string]any{"os_type": "linux", "os_variant": "rhel7.4", "vm_arch_name": "x86_64"},
			want:   "linux/rhel/7/4/64bits/*",
		},
		{
			name:   "rhel without minor version",
			params: map[string]any{"os_type": "linux", "os_variant": "rhel6", "vm_arch_name": "i686"},
			want:   "linux/rhel/6/*/32bits/*",
		},
		{
			name:   "explicit minor wins",
			params: map[string]any{"os_type": "linux", "os_variant": "rhel7.4", "os_minor": "9"},
			want:   "linux/rhel/7/9/*/*",
		},
		{
			name:   "windows keeps number in distro",
			params: map[string]any{"os_type": "windows", "os_variant": "win10", "vm_arch_name": "amd64", "platform_version": 4},
			want:   "windows/win10/10/*/64bits/4",
		},
		{
			name:   "windows server suffix dropped",
			params: map[string]any{"os_type": "windows", "os_variant": "win2012r2"},
			want:   "windows/win2012/2012/*/*/*",
		},
		{
			name:   "os family inferred from distro",
			params: map[string]any{"os_variant": "fedora9"},
			want:   "linux/fedora/9/*/*/*",
		},
		{
			name:   "only os",
			params: map[string]any{"os_type": "Windows"},
			want:   "windows/*/*/*/*/*",
		},
		{
			name:   "nothing",
			params: map[string]any{"unrelated": "x"},
			want:   "*/*/*/*/*/*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := profile.FromParams(tax, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestFromParams_Invalid(t *testing.T) {
	t.Parallel()

	tax := capability.BuiltinTaxonomy()

	_, err := profile.FromParams(tax, map[string]any{"os_type": "solaris"})
	assert.ErrorIs(t, err, capability.ErrUnknownMarker)

	_, err = profile.FromParams(tax, map[string]any{"os_type": "windows", "os_variant": "rhel7"})
	assert.ErrorIs(t, err, capability.ErrInconsistentProfile)

	p, err := profile.FromParams(nil, map[string]any{"os_type": "solaris", "os_variant": "sol11"})
	require.NoError(t, err, "nil taxonomy skips validation")
	assert.Equal(t, "solaris/sol/11/*/*/*", p.String())
}

func TestParams_MapRoundTrip(t *testing.T) {
	t.Parallel()

	p := profile.Params{OSType: "linux", OSVariant: "rhel7", VMArchName: "x86_64"}
	m := p.Map()
	assert.Equal(t, map[string]any{"os_type": "linux", "os_variant": "rhel7", "vm_arch_name": "x86_64"}, m)
	assert.Equal(t, p, profile.ParamsFromMap(m))
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	r := profile.Extractors()
	for _, name := range []string{"arch", "os", "platform", "variant"} {
		_, ok := r.Get(name)
		assert.True(t, ok, name)
	}
	got := r.ExtractAll(map[string]any{"vm_arch_name": "i386"})
	assert.Equal(t, map[capability.Category]string{capability.Arch: "32bits"}, got)
}
