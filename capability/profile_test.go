package capability_test

import (
	"testing"

	"github.com/spiceqa/rvdispatch/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()

	tax := capability.BuiltinTaxonomy()

	tests := []struct {
		name    string
		values  map[capability.Category]string
		wantErr error
		want    string
	}{
		{
			name: "full linux profile",
			values: map[capability.Category]string{
				capability.OSFamily:        "linux",
				capability.Distro:          "rhel",
				capability.VersionMajor:    "7",
				capability.VersionMinor:    "4",
				capability.Arch:            "64bits",
				capability.PlatformVersion: "4",
			},
			want: "linux/rhel/7/4/64bits/4",
		},
		{
			name: "absent categories",
			values: map[capability.Category]string{
				capability.OSFamily:     "linux",
				capability.VersionMajor: "6",
				capability.Arch:         "",
			},
			want: "linux/*/6/*/*/*",
		},
		{
			name:    "typo in distro",
			values:  map[capability.Category]string{capability.OSFamily: "linux", capability.Distro: "rhle"},
			wantErr: capability.ErrUnknownMarker,
		},
		{
			name:    "distro of another family",
			values:  map[capability.Category]string{capability.OSFamily: "windows", capability.Distro: "rhel"},
			wantErr: capability.ErrInconsistentProfile,
		},
		{
			name:    "invalid category",
			values:  map[capability.Category]string{capability.Category(-1): "x"},
			wantErr: capability.ErrInvalidMarker,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := capability.NewProfile(tax, tc.values)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.String())
		})
	}
}

func TestNewProfile_NilTaxonomySkipsValidation(t *testing.T) {
	t.Parallel()

	p, err := capability.NewProfile(nil, map[capability.Category]string{
		capability.OSFamily: "plan9",
	})
	require.NoError(t, err)

	m, ok := p.Marker(capability.OSFamily)
	require.True(t, ok)
	assert.Equal(t, capability.OS("plan9"), m)
}

func TestProfile_Immutable(t *testing.T) {
	t.Parallel()

	values := map[capability.Category]string{capability.OSFamily: "linux"}
	p := capability.MustNewProfile(nil, values)

	values[capability.OSFamily] = "windows"
	got, _ := p.Get(capability.OSFamily)
	assert.Equal(t, "linux", got, "constructor must copy its input")

	copied := p.Values()
	copied[capability.Arch] = "64bits"
	assert.False(t, p.Has(capability.Arch), "Values must return a copy")
}

func TestProfile_Equal(t *testing.T) {
	t.Parallel()

	a := capability.MustNewProfile(nil, map[capability.Category]string{capability.OSFamily: "linux", capability.VersionMajor: "7"})
	b := capability.MustNewProfile(nil, map[capability.Category]string{capability.VersionMajor: "7", capability.OSFamily: "linux", capability.Arch: ""})
	c := capability.MustNewProfile(nil, map[capability.Category]string{capability.OSFamily: "linux"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "*/*/*/*/*/*", capability.Profile{}.String())
}

func TestMustNewProfile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		capability.MustNewProfile(capability.BuiltinTaxonomy(), map[capability.Category]string{
			capability.OSFamily: "beos",
		})
	})
}
