// Package profile turns flat test parameters into capability profiles. It
// reads parameter files, validates them against a JSON schema, stores named
// profiles and lets an operator pick one interactively.
package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/spiceqa/rvdispatch/capability"
)

// Parameter keys understood by the extractors.
const (
	KeyOSType          = "os_type"
	KeyOSVariant       = "os_variant"
	KeyArch            = "vm_arch_name"
	KeyOSMinor         = "os_minor"
	KeyPlatformVersion = "platform_version"
)

// Params is the flat parameter set describing one VM.
type Params struct {
	OSType          string `yaml:"os_type" json:"os_type" jsonschema:"enum=linux,enum=windows,description=Operating system family"`
	OSVariant       string `yaml:"os_variant,omitempty" json:"os_variant,omitempty" jsonschema:"pattern=^[a-z]+[0-9.]*[a-z0-9]*$,description=Distribution and version such as rhel7.4 or win10"`
	VMArchName      string `yaml:"vm_arch_name,omitempty" json:"vm_arch_name,omitempty" jsonschema:"description=CPU architecture such as x86_64 or i686"`
	OSMinor         string `yaml:"os_minor,omitempty" json:"os_minor,omitempty" jsonschema:"pattern=^[0-9]+$,description=Minor OS version overriding the one in os_variant"`
	PlatformVersion string `yaml:"platform_version,omitempty" json:"platform_version,omitempty" jsonschema:"pattern=^[0-9]+$,description=Virtualization platform version"`
}

// Map returns the parameters as a flat map, omitting empty values.
func (p Params) Map() map[string]any {
	m := make(map[string]any, 5)
	for k, v := range map[string]string{
		KeyOSType:          p.OSType,
		KeyOSVariant:       p.OSVariant,
		KeyArch:            p.VMArchName,
		KeyOSMinor:         p.OSMinor,
		KeyPlatformVersion: p.PlatformVersion,
	} {
		if v != "" {
			m[k] = v
		}
	}
	return m
}

// ParamsFromMap picks the known keys out of a flat parameter map.
func ParamsFromMap(m map[string]any) Params {
	return Params{
		OSType:          stringParam(m, KeyOSType),
		OSVariant:       stringParam(m, KeyOSVariant),
		VMArchName:      stringParam(m, KeyArch),
		OSMinor:         stringParam(m, KeyOSMinor),
		PlatformVersion: stringParam(m, KeyPlatformVersion),
	}
}

var archAliases = map[string]string{
	"x86_64": "64bits",
	"amd64":  "64bits",
	"64bits": "64bits",
	"64":     "64bits",
	"i386":   "32bits",
	"i686":   "32bits",
	"x86":    "32bits",
	"32bits": "32bits",
	"32":     "32bits",
}

// Extractors returns a registry holding one extractor per parameter.
func Extractors() *capability.ExtractorRegistry {
	r := capability.NewExtractorRegistry()
	r.Register("arch", capability.ExtractorFunc(extractArch))
	r.Register("os", capability.ExtractorFunc(extractOS))
	r.Register("platform", capability.ExtractorFunc(extractPlatform))
	r.Register("variant", capability.ExtractorFunc(extractVariant))
	return r
}

var defaultExtractors = Extractors()

// FromParams extracts a profile from flat parameters and validates it
// against tax. A missing os_type is inferred from the distro's parents.
func FromParams(tax *capability.Taxonomy, params map[string]any) (capability.Profile, error) {
	values := defaultExtractors.ExtractAll(params)

	if _, ok := values[capability.OSFamily]; !ok && tax != nil {
		if distro, ok := values[capability.Distro]; ok {
			for _, parent := range tax.Parents(capability.Dist(distro)) {
				if parent.Category == capability.OSFamily {
					values[capability.OSFamily] = parent.Tag
					break
				}
			}
		}
	}

	p, err := capability.NewProfile(tax, values)
	if err != nil {
		return capability.Profile{}, fmt.Errorf("building profile: %w", err)
	}
	return p, nil
}

func extractOS(params map[string]any) map[capability.Category]string {
	return map[capability.Category]string{
		capability.OSFamily: strings.ToLower(stringParam(params, KeyOSType)),
	}
}

func extractArch(params map[string]any) map[capability.Category]string {
	raw := strings.ToLower(stringParam(params, KeyArch))
	if alias, ok := archAliases[raw]; ok {
		raw = alias
	}
	return map[capability.Category]string{capability.Arch: raw}
}

func extractPlatform(params map[string]any) map[capability.Category]string {
	return map[capability.Category]string{
		capability.PlatformVersion: stringParam(params, KeyPlatformVersion),
	}
}

// extractVariant splits os_variant into distro, major and minor version.
// Windows variants keep their number in the distro (win10); others do not
// (rhel7.4 is distro rhel, ver 7, mver 4).
func extractVariant(params map[string]any) map[capability.Category]string {
	out := make(map[capability.Category]string, 3)
	if minor := stringParam(params, KeyOSMinor); minor != "" {
		out[capability.VersionMinor] = minor
	}

	variant := strings.ToLower(stringParam(params, KeyOSVariant))
	if variant == "" {
		return out
	}
	prefix, numeric := splitVariant(variant)

	v, err := semver.NewVersion(numeric)
	if numeric == "" || err != nil {
		out[capability.Distro] = variant
		return out
	}

	major := strconv.FormatUint(v.Major(), 10)
	out[capability.VersionMajor] = major
	if strings.HasPrefix(prefix, "win") {
		out[capability.Distro] = prefix + major
	} else {
		out[capability.Distro] = prefix
	}
	if _, explicit := out[capability.VersionMinor]; !explicit && strings.Contains(numeric, ".") {
		out[capability.VersionMinor] = strconv.FormatUint(v.Minor(), 10)
	}
	return out
}

// splitVariant separates the alphabetic prefix from the leading version
// number; trailing suffixes such as "r2" are dropped.
func splitVariant(variant string) (prefix, numeric string) {
	start := strings.IndexFunc(variant, isDigit)
	if start < 0 {
		return variant, ""
	}
	end := start
	for end < len(variant) && (isDigit(rune(variant[end])) || variant[end] == '.') {
		end++
	}
	return variant[:start], strings.TrimSuffix(variant[start:end], ".")
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func stringParam(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
