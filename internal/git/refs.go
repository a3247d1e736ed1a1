package git

import (
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/wahlandcase/attuned.deploynotify/internal/version"
)

// CurrentBranch returns the short name of the checked-out branch. An
// explicitly supplied branch name always wins over this detection; it is
// only the fallback.
func (r *Reader) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", &RefNotFoundError{Ref: "HEAD"}
	}
	if !head.Name().IsBranch() {
		return "", &RefNotFoundError{Ref: head.Name().String()}
	}
	return head.Name().Short(), nil
}

// LatestVersionTag returns the highest three-component version tag in the
// repository, or an empty string when none exists. Tags that do not parse
// as versions are skipped.
func (r *Reader) LatestVersionTag() (string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return "", err
	}

	var bestTag string
	var best version.Version
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		v, err := version.Parse(name)
		if err != nil {
			return nil
		}
		if bestTag == "" || versionLess(best, v) {
			best = v
			bestTag = name
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return bestTag, nil
}

func versionLess(a, b version.Version) bool {
	if a.Major != b.Major {
		return a.Major < b.Major
	}
	if a.Minor != b.Minor {
		return a.Minor < b.Minor
	}
	return a.Patch < b.Patch
}
