package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix is the canonical tag prefix. Input tags may omit it, output tags
// always carry it.
const Prefix = "v"

// Increment levels
const (
	LevelMajor = "major"
	LevelMinor = "minor"
	LevelPatch = "patch"
)

// Version is a parsed three-component semantic version tag
type Version struct {
	Major int
	Minor int
	Patch int
}

// InvalidVersionFormatError indicates a tag that is not a three-component
// numeric version
type InvalidVersionFormatError struct {
	Tag    string
	Reason string
}

func (e *InvalidVersionFormatError) Error() string {
	return fmt.Sprintf("invalid version format %q: %s", e.Tag, e.Reason)
}

// Parse parses a tag like "v1.17.12" (prefix optional) into a Version
func Parse(tag string) (Version, error) {
	raw := strings.TrimPrefix(tag, Prefix)

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, &InvalidVersionFormatError{
			Tag:    tag,
			Reason: fmt.Sprintf("expected 3 numeric segments, got %d", len(parts)),
		}
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &InvalidVersionFormatError{
				Tag:    tag,
				Reason: fmt.Sprintf("segment %q is not numeric", part),
			}
		}
		if n < 0 {
			return Version{}, &InvalidVersionFormatError{
				Tag:    tag,
				Reason: fmt.Sprintf("segment %q is negative", part),
			}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Format serializes a Version to its canonical prefixed tag form
func Format(v Version) string {
	return fmt.Sprintf("%s%d.%d.%d", Prefix, v.Major, v.Minor, v.Patch)
}

// Bump returns a copy of v with the given level incremented. Lower
// components reset to zero.
func (v Version) Bump(level string) (Version, error) {
	switch level {
	case LevelMajor:
		return Version{Major: v.Major + 1}, nil
	case LevelMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case LevelPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, fmt.Errorf("unknown increment level %q (want major, minor or patch)", level)
	}
}

// Increment parses tag, bumps the given level and re-serializes. Output is
// always prefixed regardless of the input form.
func Increment(tag, level string) (string, error) {
	v, err := Parse(tag)
	if err != nil {
		return "", err
	}

	bumped, err := v.Bump(level)
	if err != nil {
		return "", err
	}

	return Format(bumped), nil
}
