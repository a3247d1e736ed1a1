package models

// NoNewCommits is the sentinel release-note body for an empty commit range.
// Callers compare against it to decide whether a deployment changed anything,
// so the exact text is part of the contract.
const NoNewCommits = "No new commits"

// ReleaseNotes is the rendered changelog for one ref range
type ReleaseNotes struct {
	// Text is the joined commit lines, or NoNewCommits
	Text string
	// HasNewCommits is true when at least one commit survived filtering
	HasNewCommits bool
}

// NewReleaseNotes creates ReleaseNotes from rendered text
func NewReleaseNotes(text string) ReleaseNotes {
	return ReleaseNotes{
		Text:          text,
		HasNewCommits: text != NoNewCommits && text != "",
	}
}
