package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
)

func TestToChatMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"single link",
			"see [docs](https://example.com/docs)",
			"see <https://example.com/docs|docs>",
		},
		{
			"multiple links on one line",
			"[a](http://x) and [b](http://y)",
			"<http://x|a> and <http://y|b>",
		},
		{
			"commit line",
			"- [abc1234](https://github.com/acme/widgets/commit/abc1234) - fix by @janedoe in [#42](https://github.com/acme/widgets/pull/42)",
			"- <https://github.com/acme/widgets/commit/abc1234|abc1234> - fix by @janedoe in <https://github.com/acme/widgets/pull/42|#42>",
		},
		{"no links is a no-op", "plain text with [brackets] and (parens)", "plain text with [brackets] and (parens)"},
		{"sentinel untouched", models.NoNewCommits, models.NoNewCommits},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToChatMarkup(tt.in))
		})
	}
}
