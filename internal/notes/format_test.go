package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
)

const testRepoURL = "https://github.com/acme/widgets"

func TestFormatAuthor(t *testing.T) {
	tests := []struct {
		name  string
		cname string
		email string
		want  string
	}{
		{"noreply with id prefix", "ThomasRalee", "12345+ThomasRalee@users.noreply.github.com", "@ThomasRalee"},
		{"noreply without id prefix", "Thomas Ralee", "ThomasRalee@users.noreply.github.com", "@ThomasRalee"},
		{"spaceless name is a handle", "janedoe", "jane@example.com", "@janedoe"},
		{"full name with email", "Jane Doe", "jane@example.com", "Jane Doe (jane@example.com)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.NewCommit("abc", 0, "msg", tt.cname, tt.email)
			assert.Equal(t, tt.want, FormatAuthor(c, DefaultNoreplyDomain))
		})
	}
}

func TestFormatCommitLine(t *testing.T) {
	c := models.NewCommit(
		"aaaabbbbccccddddeeeeffff0000111122223333",
		1700000000,
		"Merge pull request #42 from acme/feature-login",
		"Jane Doe",
		"jane@example.com",
	)

	line := FormatCommitLine(c, testRepoURL, DefaultNoreplyDomain)

	assert.Equal(t,
		"- [aaaabbb](https://github.com/acme/widgets/commit/aaaabbbbccccddddeeeeffff0000111122223333)"+
			" - Merge pull request #42 from acme/feature-login by Jane Doe (jane@example.com)"+
			" in [#42](https://github.com/acme/widgets/pull/42)",
		line)
}

func TestFormatCommitLineEscaping(t *testing.T) {
	c := models.NewCommit("abc1234", 0, "use `go vet` and \"fix\" a/b <c> + d", "janedoe", "jane@example.com")

	line := FormatCommitLine(c, testRepoURL, DefaultNoreplyDomain)

	assert.Contains(t, line, "use \\`go vet\\` and \\\"fix\\\"")
	// slashes, angle brackets and plus signs pass through untouched
	assert.Contains(t, line, "a/b <c> + d")
}

func TestFormatCommitLineWithoutPR(t *testing.T) {
	c := models.NewCommit("abc1234", 0, "fix: handle empty input", "janedoe", "jane@example.com")

	line := FormatCommitLine(c, testRepoURL, DefaultNoreplyDomain)

	assert.NotContains(t, line, "/pull/")
}

func TestFormatReleaseNotesEmpty(t *testing.T) {
	assert.Equal(t, models.NoNewCommits, FormatReleaseNotes(nil, testRepoURL, "dev", DefaultNoreplyDomain))
	assert.Equal(t, models.NoNewCommits, FormatReleaseNotes([]models.Commit{}, testRepoURL, "dev", DefaultNoreplyDomain))
}

func TestFormatReleaseNotesJoinsLines(t *testing.T) {
	commits := []models.Commit{
		models.NewCommit("abc1234", 2, "feat: search", "janedoe", "jane@example.com"),
		models.NewCommit("def5678", 1, "fix: crash", "bobsmith", "bob@example.com"),
	}

	text := FormatReleaseNotes(commits, testRepoURL, "dev", DefaultNoreplyDomain)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "abc1234")
	assert.Contains(t, lines[1], "def5678")
}

func TestFormatReleaseNotesDropsStaleReleaseMerges(t *testing.T) {
	commits := []models.Commit{
		models.NewCommit("a1", 3, "Merge pull request #10 from acme/dev", "janedoe", "jane@example.com"),
		models.NewCommit("a2", 2, "fix: crash", "janedoe", "jane@example.com"),
		models.NewCommit("a3", 1, "Merge pull request #8 from acme/dev", "janedoe", "jane@example.com"),
	}

	text := FormatReleaseNotes(commits, testRepoURL, "dev", DefaultNoreplyDomain)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "#10")
	assert.Contains(t, lines[1], "fix: crash")
}

func TestBuildReleaseNotes(t *testing.T) {
	n := BuildReleaseNotes(nil, testRepoURL, "dev", DefaultNoreplyDomain)
	assert.False(t, n.HasNewCommits)
	assert.Equal(t, models.NoNewCommits, n.Text)

	n = BuildReleaseNotes([]models.Commit{
		models.NewCommit("abc1234", 1, "feat: search", "janedoe", "jane@example.com"),
	}, testRepoURL, "dev", DefaultNoreplyDomain)
	assert.True(t, n.HasNewCommits)
}

func TestAppVersion(t *testing.T) {
	withCommits := models.NewReleaseNotes("- something changed")
	got, err := AppVersion("v1.17.12", withCommits)
	require.NoError(t, err)
	assert.Equal(t, "v1.17.13", got)

	noCommits := models.NewReleaseNotes(models.NoNewCommits)
	got, err = AppVersion("v1.17.12", noCommits)
	require.NoError(t, err)
	assert.Equal(t, "v1.17.12", got)
}

func TestAppVersionBadTag(t *testing.T) {
	_, err := AppVersion("not-a-tag", models.NewReleaseNotes("- change"))
	assert.Error(t, err)
}
