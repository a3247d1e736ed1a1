package git

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
	"github.com/wahlandcase/attuned.deploynotify/internal/notes"
)

// Reader wraps the VCS queries the notification pipeline needs
type Reader struct {
	repo *git.Repository
	path string
	log  *zap.Logger
}

// Open opens the repository at path
func Open(path string, log *zap.Logger) (*Reader, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &Reader{repo: repo, path: path, log: log}, nil
}

// NewReader wraps an already-open repository. Used by tests that build
// in-memory histories.
func NewReader(repo *git.Repository, log *zap.Logger) *Reader {
	return &Reader{repo: repo, log: log}
}

// RefNotFoundError indicates a ref that does not resolve to a commit
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return "ref not found: " + e.Ref
}

func (r *Reader) resolve(ref string) (plumbing.Hash, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, &RefNotFoundError{Ref: ref}
	}
	return *h, nil
}

// RefExists reports whether ref resolves to a commit. Lookup failures of
// any kind count as "does not exist".
func (r *Reader) RefExists(ref string) bool {
	_, err := r.resolve(ref)
	return err == nil
}

// CommitDate returns the committer timestamp of ref in unix seconds
func (r *Reader) CommitDate(ref string) (int64, error) {
	h, err := r.resolve(ref)
	if err != nil {
		return 0, err
	}

	c, err := r.repo.CommitObject(h)
	if err != nil {
		return 0, &RefNotFoundError{Ref: ref}
	}

	return c.Committer.When.Unix(), nil
}

func toModel(c *object.Commit) models.Commit {
	subject := strings.SplitN(c.Message, "\n", 2)[0]
	return models.NewCommit(c.Hash.String(), c.Committer.When.Unix(), strings.TrimSpace(subject), c.Author.Name, c.Author.Email)
}

// CommitsBetween returns the commits reachable from toRef but not fromRef.
// With firstParentOnly it follows only the mainline parent chain instead.
// Any underlying query failure yields an empty list; range queries are
// best-effort for the notification path.
func (r *Reader) CommitsBetween(fromRef, toRef string, firstParentOnly bool) []models.Commit {
	fromHash, err := r.resolve(fromRef)
	if err != nil {
		r.log.Debug("range query: from ref unresolvable", zap.String("ref", fromRef), zap.Error(err))
		return nil
	}
	toHash, err := r.resolve(toRef)
	if err != nil {
		r.log.Debug("range query: to ref unresolvable", zap.String("ref", toRef), zap.Error(err))
		return nil
	}

	if firstParentOnly {
		commits, err := r.firstParentWalk(fromHash, toHash)
		if err != nil {
			r.log.Debug("first-parent walk failed", zap.Error(err))
			return nil
		}
		return commits
	}

	commits, err := r.setDifference(fromHash, toHash)
	if err != nil {
		r.log.Debug("range walk failed", zap.Error(err))
		return nil
	}
	return commits
}

// firstParentWalk walks from toHash down the first-parent chain, stopping
// (exclusive) at fromHash or at a root commit
func (r *Reader) firstParentWalk(fromHash, toHash plumbing.Hash) ([]models.Commit, error) {
	var out []models.Commit

	c, err := r.repo.CommitObject(toHash)
	if err != nil {
		return nil, err
	}

	for c != nil && c.Hash != fromHash {
		out = append(out, toModel(c))

		if c.NumParents() == 0 {
			break
		}
		c, err = c.Parent(0)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// reachable collects the full ancestor set of a commit, itself included
func (r *Reader) reachable(h plumbing.Hash) (map[plumbing.Hash]bool, error) {
	set := make(map[plumbing.Hash]bool)

	iter, err := r.repo.Log(&git.LogOptions{From: h})
	if err != nil {
		return nil, err
	}

	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// setDifference returns commits reachable from toHash but not fromHash, in
// log order
func (r *Reader) setDifference(fromHash, toHash plumbing.Hash) ([]models.Commit, error) {
	base, err := r.reachable(fromHash)
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Log(&git.LogOptions{From: toHash})
	if err != nil {
		return nil, err
	}

	var out []models.Commit
	seen := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		if seen[c.Hash] || base[c.Hash] {
			return nil
		}
		seen[c.Hash] = true
		out = append(out, toModel(c))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// CommitsBetweenExpandingMerges reconstructs the commits a release actually
// ships when the release branch follows a first-parent merge model.
//
// The first-parent history between fromRef and toRef only contains the merge
// commits that integrated each batch of work. For every such pull-request
// merge, the commits reachable from its second parent but not its first are
// folded in. Everything is deduplicated by hash, and any commit dated at or
// before the fromRef commit is dropped: long-lived integration branches
// re-surface merge commits from before the previous release, and without
// the cutoff each release would re-list the last one's changes.
//
// The cutoff is by committer timestamp, not topology. Rebased history or
// clock skew can make it over- or under-include commits; that is a known
// approximation.
func (r *Reader) CommitsBetweenExpandingMerges(fromRef, toRef string) ([]models.Commit, error) {
	fromHash, err := r.resolve(fromRef)
	if err != nil {
		return nil, err
	}
	toHash, err := r.resolve(toRef)
	if err != nil {
		return nil, err
	}

	fromTime, err := r.CommitDate(fromRef)
	if err != nil {
		return nil, err
	}

	mainline, err := r.firstParentWalk(fromHash, toHash)
	if err != nil {
		return nil, fmt.Errorf("first-parent walk %s..%s: %w", fromRef, toRef, err)
	}

	byHash := make(map[string]models.Commit)
	for _, c := range mainline {
		byHash[c.Hash] = c
	}

	for _, c := range mainline {
		if !notes.IsIntegrationMerge(c) {
			continue
		}

		merged, err := r.mergedCommits(plumbing.NewHash(c.Hash))
		if err != nil {
			r.log.Debug("merge expansion failed", zap.String("hash", c.Hash), zap.Error(err))
			continue
		}
		for _, m := range merged {
			byHash[m.Hash] = m
		}
	}

	var out []models.Commit
	for _, c := range byHash {
		if c.Timestamp <= fromTime {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Hash < out[j].Hash
	})

	return out, nil
}

// mergedCommits returns the commits a merge commit brought in: reachable
// from its second parent but not its first. Non-merge commits yield nothing.
func (r *Reader) mergedCommits(h plumbing.Hash) ([]models.Commit, error) {
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, err
	}
	if c.NumParents() < 2 {
		return nil, nil
	}

	return r.setDifference(c.ParentHashes[0], c.ParentHashes[1])
}

// Fetch fetches branches from origin using CLI git so the SSH agent and
// credential helpers of the environment apply
func (r *Reader) Fetch(branches ...string) error {
	if r.path == "" {
		return fmt.Errorf("fetch: repository has no worktree path")
	}

	args := append([]string{"fetch", "origin"}, branches...)
	cmd := exec.Command("git", args...)
	cmd.Dir = r.path

	output, err := cmd.CombinedOutput()
	if err != nil {
		outputStr := strings.TrimSpace(string(output))
		if outputStr != "" {
			return &GitError{Command: "fetch", Output: outputStr}
		}
		return &GitError{Command: "fetch", Output: "failed to fetch from remote (check network/auth)"}
	}

	return nil
}

// GitError provides better context for git command failures
type GitError struct {
	Command string
	Output  string
}

func (e *GitError) Error() string {
	return "git " + e.Command + ": " + e.Output
}
