package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the interface version a caller requests and a module provides.
type Version struct {
	Major uint32 `json:"major" yaml:"major"`
	Minor uint32 `json:"minor" yaml:"minor"`
	Build uint32 `json:"build" yaml:"build"`
}

// SDKVersion is the interface version this module is built against.
var SDKVersion = Version{Major: 11, Minor: 0, Build: 0}

// Supports reports whether a module providing v can serve a caller that
// requested req: majors are equal and v.Minor is at least req.Minor.
// Build numbers never affect compatibility.
func (v Version) Supports(req Version) bool {
	return v.Major == req.Major && v.Minor >= req.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// ParseVersion parses "major[.minor[.build]]".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "v"), ".")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = uint32(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}
