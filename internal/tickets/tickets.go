package tickets

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/git"
)

// Extractor finds issue-tracker keys in free text and renders them as chat
// links. The key pattern is a fixed prefix, a hyphen and a 3-5 digit number,
// matched case-insensitively and normalized to upper case.
type Extractor struct {
	re            *regexp.Regexp
	issueBaseURL  string
	releaseBranch string
	log           *zap.Logger
}

// NewExtractor builds an Extractor for the given ticket prefix (e.g. "ATT")
// and issue base URL
func NewExtractor(prefix, issueBaseURL, releaseBranch string, log *zap.Logger) (*Extractor, error) {
	re, err := regexp.Compile(`(?i)\b(` + regexp.QuoteMeta(prefix) + `-\d{3,5})\b`)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket prefix %q: %w", prefix, err)
	}

	return &Extractor{
		re:            re,
		issueBaseURL:  strings.TrimSuffix(issueBaseURL, "/"),
		releaseBranch: releaseBranch,
		log:           log,
	}, nil
}

// FromText extracts every ticket key from text, upper-cased and deduplicated
// preserving first appearance
func (e *Extractor) FromText(text string) []string {
	matches := e.re.FindAllStringSubmatch(text, -1)

	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		ticket := strings.ToUpper(m[1])
		if seen[ticket] {
			continue
		}
		seen[ticket] = true
		out = append(out, ticket)
	}

	return out
}

// FromCommitRange extracts tickets from every commit subject between two
// refs. The release branch is fetched first so the range reflects upstream,
// but a failed fetch only degrades to local history.
func (e *Extractor) FromCommitRange(reader *git.Reader, fromRef, toRef string) []string {
	if err := reader.Fetch(e.releaseBranch); err != nil {
		e.log.Warn("fetch before ticket extraction failed, using local history",
			zap.String("branch", e.releaseBranch), zap.Error(err))
	}

	commits := reader.CommitsBetween(fromRef, toRef, false)

	subjects := make([]string, 0, len(commits))
	for _, c := range commits {
		subjects = append(subjects, c.Message)
	}

	return e.FromText(strings.Join(subjects, "\n"))
}

// RenderLinks renders tickets as chat-markup links joined by ", ".
// An empty list renders as an empty string.
func (e *Extractor) RenderLinks(ticketKeys []string) string {
	if len(ticketKeys) == 0 {
		return ""
	}

	links := make([]string, 0, len(ticketKeys))
	for _, ticket := range ticketKeys {
		links = append(links, fmt.Sprintf("<%s/%s|%s>", e.issueBaseURL, ticket, ticket))
	}

	return strings.Join(links, ", ")
}

// Diff returns the tickets in candidates that are not already in existing.
// Order of candidates is preserved.
func Diff(candidates, existing []string) []string {
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t] = true
	}

	var out []string
	for _, t := range candidates {
		if !known[t] {
			out = append(out, t)
		}
	}

	return out
}
