package materialbin

import (
	"fmt"
	"strings"
)

// Version identifies a client release whose material layout this package
// can read and write. Versions are ordered oldest to newest.
type Version uint8

const (
	V1_18_30 Version = iota + 1
	V1_19_60
	V1_20_80
	V1_21_20
	V1_21_110
)

// AllVersions lists every supported version, oldest first.
var AllVersions = []Version{V1_18_30, V1_19_60, V1_20_80, V1_21_20, V1_21_110}

var versionNames = map[Version]string{
	V1_18_30:  "1.18.30",
	V1_19_60:  "1.19.60",
	V1_20_80:  "1.20.80",
	V1_21_20:  "1.21.20",
	V1_21_110: "1.21.110",
}

// NewestFirst returns AllVersions in descending order.
func NewestFirst() []Version {
	out := make([]Version, len(AllVersions))
	for i, v := range AllVersions {
		out[len(AllVersions)-1-i] = v
	}
	return out
}

// String returns the dotted release name.
func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// Valid reports whether v is one of the supported versions.
func (v Version) Valid() bool {
	_, ok := versionNames[v]
	return ok
}

// ParseVersion parses a dotted release name such as "1.21.110".
// A leading "v" and underscores instead of dots are accepted.
func ParseVersion(s string) (Version, error) {
	norm := strings.TrimPrefix(strings.TrimSpace(s), "v")
	norm = strings.ReplaceAll(norm, "_", ".")
	for v, name := range versionNames {
		if name == norm {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown material version %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("unknown material version %d", uint8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// formatVersion is the header version number written for v.
func (v Version) formatVersion() uint64 {
	if v >= V1_20_80 {
		return 25
	}
	return 22
}

func (v Version) hasSamplerState() bool     { return v >= V1_19_60 }
func (v Version) hasInputQualifiers() bool  { return v >= V1_20_80 }
func (v Version) hasUniformOverrides() bool { return v >= V1_21_20 }
func (v Version) hasSamplerArraySize() bool { return v >= V1_21_110 }
