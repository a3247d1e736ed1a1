package notes

import (
	"regexp"
	"strings"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
)

var (
	// "Merge pull request #123 from owner/branch" as produced by the hosting
	// platform's merge button. Keyword match is case-insensitive.
	integrationMergeRe = regexp.MustCompile(`(?i)^merge pull request #\d+ from ([^/]+)/(.+)$`)

	// "Merge branch 'feature' into dev" as produced by a local git merge
	genericMergeRe = regexp.MustCompile(`^Merge branch '.+' into .+$`)
)

// IsIntegrationMerge reports whether the commit is a hosted pull-request
// merge commit
func IsIntegrationMerge(c models.Commit) bool {
	return integrationMergeRe.MatchString(c.Message)
}

// IsReleaseBranchMerge reports whether the commit merges the designated
// release branch itself (as opposed to a feature or fix branch). The branch
// comparison is case-insensitive and rejects sub-paths.
func IsReleaseBranchMerge(c models.Commit, releaseBranch string) bool {
	m := integrationMergeRe.FindStringSubmatch(c.Message)
	if m == nil {
		return false
	}
	return strings.EqualFold(m[2], releaseBranch)
}

// IsGenericBranchMerge reports whether the commit is a local branch merge
func IsGenericBranchMerge(c models.Commit) bool {
	return genericMergeRe.MatchString(c.Message)
}

// FilterOldMergeCommits drops every release-branch merge after the first
// one. Old release merges can slip past the timestamp cutoff when an
// integration branch re-surfaces them; only the newest belongs in the notes.
// Everything that is not a release-branch merge passes through unchanged.
func FilterOldMergeCommits(commits []models.Commit, releaseBranch string) []models.Commit {
	var kept []models.Commit
	seenReleaseMerge := false

	for _, c := range commits {
		if IsReleaseBranchMerge(c, releaseBranch) {
			if seenReleaseMerge {
				continue
			}
			seenReleaseMerge = true
		}
		kept = append(kept, c)
	}

	return kept
}
