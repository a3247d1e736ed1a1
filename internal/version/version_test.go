package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want Version
	}{
		{"prefixed", "v1.17.12", Version{1, 17, 12}},
		{"bare", "1.17.12", Version{1, 17, 12}},
		{"zeros", "v0.0.0", Version{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantMsg string
	}{
		{"too few segments", "v1.2", "expected 3 numeric segments, got 2"},
		{"too many segments", "v1.2.3.4", "expected 3 numeric segments, got 4"},
		{"non-numeric", "v1.x.3", `segment "x" is not numeric`},
		{"negative", "v1.-2.3", `segment "-2" is negative`},
		{"empty", "", "expected 3 numeric segments, got 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.tag)
			require.Error(t, err)
			var formatErr *InvalidVersionFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		level string
		want  string
	}{
		{"patch", "v1.17.12", LevelPatch, "v1.17.13"},
		{"minor resets patch", "v1.17.12", LevelMinor, "v1.18.0"},
		{"major resets minor and patch", "v1.17.12", LevelMajor, "v2.0.0"},
		{"bare input gains prefix", "1.2.3", LevelPatch, "v1.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Increment(tt.tag, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncrementUnknownLevel(t *testing.T) {
	_, err := Increment("v1.2.3", "hotfix")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown increment level")
}

func TestIncrementMalformedTag(t *testing.T) {
	_, err := Increment("release-5", LevelPatch)
	require.Error(t, err)
	var formatErr *InvalidVersionFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []Version{{0, 0, 0}, {1, 17, 12}, {10, 200, 3000}} {
		parsed, err := Parse(Format(v))
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
}

func TestPatchMonotonic(t *testing.T) {
	tag := "v3.4.5"
	bumped, err := Increment(tag, LevelPatch)
	require.NoError(t, err)

	before, err := Parse(tag)
	require.NoError(t, err)
	after, err := Parse(bumped)
	require.NoError(t, err)

	assert.Equal(t, before.Patch+1, after.Patch)
	assert.Equal(t, before.Major, after.Major)
	assert.Equal(t, before.Minor, after.Minor)
}
