package models

// Commit contains the commit metadata the notification pipeline cares about
type Commit struct {
	// Hash is the full commit hash
	Hash string
	// Timestamp is the committer timestamp in unix seconds; ordering key
	Timestamp int64
	// Message is the first line of the commit message
	Message string
	// AuthorName is the author display name
	AuthorName string
	// AuthorEmail is the author email
	AuthorEmail string
}

// NewCommit creates a new Commit
func NewCommit(hash string, timestamp int64, message, authorName, authorEmail string) Commit {
	return Commit{
		Hash:        hash,
		Timestamp:   timestamp,
		Message:     message,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
	}
}

// ShortHash returns the abbreviated hash used in rendered links
func (c Commit) ShortHash() string {
	if len(c.Hash) <= 7 {
		return c.Hash
	}
	return c.Hash[:7]
}
