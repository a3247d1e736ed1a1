package notes

import "regexp"

// markdown links: [label](url)
var mdLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// ToChatMarkup converts document-style markdown links to chat-message
// markup: every "[label](url)" becomes "<url|label>". All other text is
// left untouched.
func ToChatMarkup(text string) string {
	if text == "" {
		return ""
	}
	return mdLinkRe.ReplaceAllString(text, "<$2|$1>")
}
