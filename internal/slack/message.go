package slack

import (
	"fmt"
	"strings"
)

// Field prefixes in the root message. Updates are line-oriented: the
// preview line is replaced wholesale, the tickets line only ever grows.
const (
	previewPrefix  = "Preview: "
	ticketsPrefix  = "Tickets: "
	threadIDPrefix = "Thread ID: "
)

// DeployInfo carries the facts of one deployment event
type DeployInfo struct {
	Repo        string
	Network     string
	Branch      string
	Description string
	PreviewURL  string
	Author      string
}

// composeRootMessage renders the initial root message body. Preview and
// tickets go last so later amendments stay line-oriented.
func composeRootMessage(info DeployInfo, ticketLinks string) string {
	lines := []string{
		fmt.Sprintf(":rocket: *%s* deployment thread for `%s`", info.Repo, info.Branch),
	}

	if info.Network != "" {
		lines = append(lines, "Network: "+info.Network)
	}
	if info.Description != "" {
		lines = append(lines, info.Description)
	}
	if info.Author != "" {
		lines = append(lines, "Deployed by "+info.Author)
	}
	if ticketLinks != "" {
		lines = append(lines, ticketsPrefix+ticketLinks)
	}
	if info.PreviewURL != "" {
		lines = append(lines, previewPrefix+info.PreviewURL)
	}

	return strings.Join(lines, "\n")
}

// composeReplyMessage renders the threaded reply recording one deployment
// occurrence
func composeReplyMessage(info DeployInfo) string {
	head := "Deployed"
	if info.Network != "" {
		head += " to " + info.Network
	}
	if info.Author != "" {
		head += " by " + info.Author
	}

	lines := []string{head}
	if info.Description != "" {
		lines = append(lines, info.Description)
	}
	if info.PreviewURL != "" {
		lines = append(lines, previewPrefix+info.PreviewURL)
	}

	return strings.Join(lines, "\n")
}

// withThreadID appends the message's own timestamp so the root is
// self-referential for later lookup and debugging
func withThreadID(text, ts string) string {
	return text + "\n" + threadIDPrefix + ts
}

// amendRootText rewrites an existing root message body for a new deployment:
// any previous preview line is dropped and only the current preview URL kept
// (a URL list would bloat across repeated deployments of one branch), and
// new ticket links are appended to the tickets line, which is created when
// absent. Everything else is preserved verbatim.
func amendRootText(existing, previewURL, newTicketLinks string) string {
	var lines []string
	ticketsLineIdx := -1

	for _, line := range strings.Split(existing, "\n") {
		if strings.HasPrefix(line, previewPrefix) {
			continue
		}
		if strings.HasPrefix(line, ticketsPrefix) {
			ticketsLineIdx = len(lines)
		}
		lines = append(lines, line)
	}

	if newTicketLinks != "" {
		if ticketsLineIdx >= 0 {
			lines[ticketsLineIdx] += ", " + newTicketLinks
		} else {
			lines = append(lines, ticketsPrefix+newTicketLinks)
		}
	}

	if previewURL != "" {
		lines = append(lines, previewPrefix+previewURL)
	}

	return strings.Join(lines, "\n")
}
