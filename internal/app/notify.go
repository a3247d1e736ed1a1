package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/config"
	"github.com/wahlandcase/attuned.deploynotify/internal/git"
	"github.com/wahlandcase/attuned.deploynotify/internal/models"
	"github.com/wahlandcase/attuned.deploynotify/internal/slack"
	"github.com/wahlandcase/attuned.deploynotify/internal/tickets"
)

// NotifyOptions are the resolved inputs of one notify run
type NotifyOptions struct {
	RepoPath    string
	Repo        string
	Network     string
	Branch      string
	Description string
	PreviewURL  string
	Author      string
	Channel     string
	SearchToken string
	BotToken    string

	// MessageText is free text to extract tickets from. When empty and a
	// ref range is given, tickets come from the commit subjects instead.
	MessageText string
	FromRef     string
	ToRef       string
}

// RunNotify drives the thread-reconciliation pipeline for one deployment.
// Only configuration problems (missing required inputs) return an error;
// every notification failure is soft and the run still reports success,
// because a broken notification must never fail a deployment.
func RunNotify(ctx context.Context, cfg *config.Config, opts NotifyOptions, log *zap.Logger) error {
	if opts.Repo == "" {
		return &MissingInputError{Name: "repo"}
	}
	if opts.SearchToken == "" {
		return &MissingInputError{Name: "search-token"}
	}
	if opts.BotToken == "" {
		return &MissingInputError{Name: "bot-token"}
	}

	if opts.Channel == "" {
		opts.Channel = cfg.Slack.Channel
	}
	if opts.Description == "" {
		opts.Description = cfg.Notify.DefaultDescription
	}

	extractor, err := tickets.NewExtractor(cfg.Tickets.Prefix, cfg.Tickets.IssueBaseURL, cfg.Git.ReleaseBranch, log)
	if err != nil {
		return err
	}

	// the repository is only needed for branch detection and ticket
	// ranges; a notify run with explicit inputs works without one
	var reader *git.Reader
	if opts.RepoPath != "" {
		reader, err = git.Open(opts.RepoPath, log)
		if err != nil {
			log.Warn("repository not available, skipping branch detection and commit tickets", zap.Error(err))
			reader = nil
		}
	}

	branch := opts.Branch
	if branch == "" && reader != nil {
		if detected, err := reader.CurrentBranch(); err == nil {
			branch = detected
		} else {
			log.Warn("branch detection failed", zap.Error(err))
		}
	}

	ticketKeys := extractTickets(extractor, reader, opts, log)

	client := slack.NewClient(cfg.Slack.APIBaseURL, cfg.RequestTimeout(), cfg.RetryDelay(), cfg.Slack.RetryAttempts, log)
	reconciler := slack.NewReconciler(client, extractor, slack.ReconcilerConfig{
		Channel:     opts.Channel,
		WindowDays:  cfg.Slack.SearchWindowDays,
		SearchToken: opts.SearchToken,
		BotToken:    opts.BotToken,
	}, log)

	result := reconciler.Reconcile(ctx, slack.DeployInfo{
		Repo:        opts.Repo,
		Network:     opts.Network,
		Branch:      branch,
		Description: opts.Description,
		PreviewURL:  opts.PreviewURL,
		Author:      opts.Author,
	}, ticketKeys)

	if models.IsSkipped(result.Status) {
		log.Warn("notification skipped", zap.String("reason", models.SkipReason(result.Status)))
	}

	return WriteOutputs(notifyOutputs(branch, ticketKeys, extractor.RenderLinks(ticketKeys), result))
}

func extractTickets(extractor *tickets.Extractor, reader *git.Reader, opts NotifyOptions, log *zap.Logger) []string {
	if opts.MessageText != "" {
		return extractor.FromText(opts.MessageText)
	}
	if reader != nil && opts.FromRef != "" && opts.ToRef != "" {
		return extractor.FromCommitRange(reader, opts.FromRef, opts.ToRef)
	}
	if opts.FromRef != "" || opts.ToRef != "" {
		log.Warn("ticket ref range ignored: both from-ref and to-ref are required")
	}
	return nil
}

func notifyOutputs(branch string, ticketKeys []string, ticketLinks string, result models.ReconcileResult) []Output {
	found := "false"
	existingTS := ""
	existingChannel := ""
	if result.Found {
		found = "true"
		existingTS = result.ThreadTS
		existingChannel = result.ChannelID
	}

	return []Output{
		{Name: "branch", Value: branch},
		{Name: "tickets", Value: strings.Join(ticketKeys, ",")},
		{Name: "ticket_links", Value: ticketLinks},
		{Name: "message_found", Value: found},
		{Name: "existing_thread_ts", Value: existingTS},
		{Name: "existing_channel_id", Value: existingChannel},
		{Name: "thread_ts", Value: result.ThreadTS},
	}
}
