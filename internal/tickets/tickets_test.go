package tickets

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/git"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor("IL", "https://linear.app/acme/issue", "dev", zap.NewNop())
	require.NoError(t, err)
	return e
}

func TestFromText(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "fix login IL-1234", []string{"IL-1234"}},
		{"duplicate collapses", "Working on IL-1234 and IL-1234 again", []string{"IL-1234"}},
		{"case normalizes and dedupes", "il-1234 then IL-1234", []string{"IL-1234"}},
		{"first-seen order kept", "IL-999 before IL-123", []string{"IL-999", "IL-123"}},
		{"five digits", "IL-12345 done", []string{"IL-12345"}},
		{"two digits no match", "IL-12 is too short", nil},
		{"six digits no match", "IL-123456 is too long", nil},
		{"other prefix no match", "XX-1234", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.FromText(tt.in))
		})
	}
}

func TestFromTextIdempotent(t *testing.T) {
	e := newExtractor(t)

	first := e.FromText("deploy IL-100 and il-200, then IL-100")
	again := e.FromText(join(first))

	assert.Equal(t, first, again)
}

func join(tickets []string) string {
	out := ""
	for _, t := range tickets {
		out += t + " "
	}
	return out
}

func TestRenderLinks(t *testing.T) {
	e := newExtractor(t)

	assert.Equal(t, "", e.RenderLinks(nil))
	assert.Equal(t,
		"<https://linear.app/acme/issue/IL-100|IL-100>, <https://linear.app/acme/issue/IL-200|IL-200>",
		e.RenderLinks([]string{"IL-100", "IL-200"}))
}

func TestDiff(t *testing.T) {
	assert.Equal(t, []string{"IL-2"}, Diff([]string{"IL-1", "IL-2"}, []string{"IL-1"}))
	assert.Nil(t, Diff([]string{"IL-1"}, []string{"IL-1"}))
	assert.Equal(t, []string{"IL-1", "IL-2"}, Diff([]string{"IL-1", "IL-2"}, nil))
	assert.Nil(t, Diff(nil, []string{"IL-1"}))
}

func TestFromCommitRange(t *testing.T) {
	repo, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(msg string, ts int64, parents ...plumbing.Hash) plumbing.Hash {
		sig := object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: time.Unix(ts, 0)}
		h, err := wt.Commit(msg, &gogit.CommitOptions{
			Author:            &sig,
			Committer:         &sig,
			Parents:           parents,
			AllowEmptyCommits: true,
		})
		require.NoError(t, err)
		return h
	}

	base := commit("base", 1000)
	_, err = repo.CreateTag("v1.0.0", base, nil)
	require.NoError(t, err)

	c1 := commit("fix IL-111 crash", 1010, base)
	tip := commit("feat IL-222 plus il-111 again", 1020, c1)

	reader := git.NewReader(repo, zap.NewNop())
	e := newExtractor(t)

	// fetch fails on a pathless in-memory repo; extraction proceeds anyway
	got := e.FromCommitRange(reader, "v1.0.0", tip.String())

	assert.ElementsMatch(t, []string{"IL-111", "IL-222"}, got)
}
