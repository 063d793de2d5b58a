package capability

import "strconv"

// Well-known markers.
var (
	Linux   = OS("linux")
	Windows = OS("windows")

	Bits32 = CPU("32bits")
	Bits64 = CPU("64bits")
)

// BuiltinTaxonomy returns a new taxonomy with the operating systems, versions,
// architectures and platform versions the suite runs against.
func BuiltinTaxonomy() *Taxonomy {
	t := NewTaxonomy()

	linux := t.MustDeclare(OSFamily, Linux.Tag)
	windows := t.MustDeclare(OSFamily, Windows.Tag)

	for _, d := range []string{"rhel", "centos", "fedora"} {
		t.MustDeclare(Distro, d, linux)
	}
	for _, d := range []string{"win", "win7", "win8", "win10", "win2012", "win2016", "win2019"} {
		t.MustDeclare(Distro, d, windows)
	}

	for v := 5; v <= 11; v++ {
		t.MustDeclare(VersionMajor, strconv.Itoa(v))
	}
	for _, v := range []string{"2012", "2016", "2019"} {
		t.MustDeclare(VersionMajor, v)
	}
	for v := 0; v <= 10; v++ {
		t.MustDeclare(VersionMinor, strconv.Itoa(v))
	}

	t.MustDeclare(Arch, Bits32.Tag)
	t.MustDeclare(Arch, Bits64.Tag)

	t.MustDeclare(PlatformVersion, "3")
	t.MustDeclare(PlatformVersion, "4")

	return t
}
