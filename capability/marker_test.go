package capability_test

import (
	"testing"

	"github.com/spiceqa/rvdispatch/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    capability.Category
		wantErr bool
	}{
		{"os", capability.OSFamily, false},
		{"distro", capability.Distro, false},
		{"ver", capability.VersionMajor, false},
		{"mver", capability.VersionMinor, false},
		{"arch", capability.Arch, false},
		{"platform", capability.PlatformVersion, false},
		{" Platform_Version ", capability.PlatformVersion, false},
		{"version_minor", capability.VersionMinor, false},
		{"kernel", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := capability.ParseCategory(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, capability.ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, mustParse(t, got.String()), "String round-trips")
		})
	}
}

func mustParse(t *testing.T, name string) capability.Category {
	t.Helper()
	c, err := capability.ParseCategory(name)
	require.NoError(t, err)
	return c
}

func TestCategories_Order(t *testing.T) {
	t.Parallel()

	cats := capability.Categories()
	require.Len(t, cats, 6)
	for i := 1; i < len(cats); i++ {
		assert.Less(t, cats[i-1], cats[i])
	}
	assert.Equal(t, "category(99)", capability.Category(99).String())
}

func TestParseMarker(t *testing.T) {
	t.Parallel()

	m, err := capability.ParseMarker("os:linux")
	require.NoError(t, err)
	assert.Equal(t, capability.Linux, m)
	assert.Equal(t, "os:linux", m.String())

	_, err = capability.ParseMarker("linux")
	assert.ErrorIs(t, err, capability.ErrInvalidMarker)

	_, err = capability.ParseMarker("ver:")
	assert.ErrorIs(t, err, capability.ErrInvalidMarker)

	_, err = capability.ParseMarker("kernel:6")
	assert.ErrorIs(t, err, capability.ErrUnknownCategory)

	assert.True(t, capability.Marker{}.IsZero())
}

func FuzzParseMarker(f *testing.F) {
	f.Add("os:linux")
	f.Add("platform:4")
	f.Add(":")
	f.Add("ver:7:1")

	f.Fuzz(func(t *testing.T, s string) {
		m, err := capability.ParseMarker(s)
		if err != nil {
			return
		}
		// A parsed marker always renders back to something that parses to itself.
		again, err := capability.ParseMarker(m.String())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", m.String(), err)
		}
		if again != m {
			t.Fatalf("round trip changed marker: %v != %v", again, m)
		}
	})
}

func TestExtractorRegistry_ExtractAll(t *testing.T) {
	t.Parallel()

	reg := capability.NewExtractorRegistry()
	reg.Register("a_os", capability.ExtractorFunc(func(params map[string]any) map[capability.Category]string {
		s, _ := params["os_type"].(string)
		return map[capability.Category]string{capability.OSFamily: s}
	}))
	reg.Register("b_arch", capability.ExtractorFunc(func(params map[string]any) map[capability.Category]string {
		return map[capability.Category]string{capability.Arch: "64bits"}
	}))

	got := reg.ExtractAll(map[string]any{"os_type": "linux"})
	assert.Equal(t, map[capability.Category]string{
		capability.OSFamily: "linux",
		capability.Arch:     "64bits",
	}, got)

	got = reg.ExtractAll(map[string]any{})
	assert.Equal(t, map[capability.Category]string{capability.Arch: "64bits"}, got, "empty tags are dropped")

	_, ok := reg.Get("a_os")
	assert.True(t, ok)
}
