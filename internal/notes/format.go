package notes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
	"github.com/wahlandcase/attuned.deploynotify/internal/version"
)

// DefaultNoreplyDomain is the hosting platform's anonymized email domain
const DefaultNoreplyDomain = "users.noreply.github.com"

var (
	prNumberRe = regexp.MustCompile(`#(\d+)`)
	escaperRe  = regexp.MustCompile("[`\"]")
)

// escapeMessage backslash-escapes backticks and double quotes. Nothing else
// is altered: slashes, angle brackets and plus signs must pass through.
func escapeMessage(s string) string {
	return escaperRe.ReplaceAllString(s, `\$0`)
}

// FormatAuthor renders a commit author as a platform handle when possible,
// falling back to "Name (email)".
func FormatAuthor(c models.Commit, noreplyDomain string) string {
	noreplyRe := regexp.MustCompile(`^(?:\d+\+)?([^@+]+)@` + regexp.QuoteMeta(noreplyDomain) + `$`)
	if m := noreplyRe.FindStringSubmatch(c.AuthorEmail); m != nil {
		return "@" + m[1]
	}

	// A display name without spaces is treated as a handle
	if c.AuthorName != "" && !strings.Contains(c.AuthorName, " ") {
		return "@" + c.AuthorName
	}

	return fmt.Sprintf("%s (%s)", c.AuthorName, c.AuthorEmail)
}

// FormatCommitLine renders one commit as a markdown bullet with a commit
// link, the escaped subject, the author, and a PR link when the subject
// references one.
func FormatCommitLine(c models.Commit, repoURL, noreplyDomain string) string {
	line := fmt.Sprintf("- [%s](%s/commit/%s) - %s by %s",
		c.ShortHash(), repoURL, c.Hash, escapeMessage(c.Message), FormatAuthor(c, noreplyDomain))

	if m := prNumberRe.FindStringSubmatch(c.Message); m != nil {
		line += fmt.Sprintf(" in [#%s](%s/pull/%s)", m[1], repoURL, m[1])
	}

	return line
}

// FormatReleaseNotes renders the full note block for a commit list:
// redundant release merges are dropped, survivors become one line each.
// An empty or nil list yields the NoNewCommits sentinel.
func FormatReleaseNotes(commits []models.Commit, repoURL, releaseBranch, noreplyDomain string) string {
	filtered := FilterOldMergeCommits(commits, releaseBranch)
	if len(filtered) == 0 {
		return models.NoNewCommits
	}

	lines := make([]string, 0, len(filtered))
	for _, c := range filtered {
		lines = append(lines, FormatCommitLine(c, repoURL, noreplyDomain))
	}

	return strings.Join(lines, "\n")
}

// BuildReleaseNotes renders the notes and wraps them with the derived
// has-new-commits flag
func BuildReleaseNotes(commits []models.Commit, repoURL, releaseBranch, noreplyDomain string) models.ReleaseNotes {
	return models.NewReleaseNotes(FormatReleaseNotes(commits, repoURL, releaseBranch, noreplyDomain))
}

// AppVersion derives the version to report for a deployment: the previous
// tag bumped one patch when the notes contain changes, the previous tag
// unchanged otherwise. Bumping only on real content avoids empty releases.
func AppVersion(previousTag string, n models.ReleaseNotes) (string, error) {
	if !n.HasNewCommits {
		return previousTag, nil
	}
	return version.Increment(previousTag, version.LevelPatch)
}
