package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/config"
	"github.com/wahlandcase/attuned.deploynotify/internal/git"
	"github.com/wahlandcase/attuned.deploynotify/internal/notes"
	"github.com/wahlandcase/attuned.deploynotify/internal/slack"
)

// ReleaseNotesOptions are the resolved inputs of one release-notes run
type ReleaseNotesOptions struct {
	RepoPath string
	Repo     string
	Network  string
	FromRef  string
	ToRef    string

	// ChatMarkup converts the notes to chat-message markup before printing
	ChatMarkup bool
	// WebhookURL, when set, additionally posts the deployment webhook
	WebhookURL string
}

// RunReleaseNotes renders the changelog for a ref range and derives the
// application version to report. Unlike notification, the release note is
// a required build artifact: VCS and version errors here are fatal.
func RunReleaseNotes(ctx context.Context, cfg *config.Config, opts ReleaseNotesOptions, out io.Writer, log *zap.Logger) error {
	if opts.Repo == "" {
		return &MissingInputError{Name: "repo"}
	}
	if opts.ToRef == "" {
		opts.ToRef = "HEAD"
	}

	reader, err := git.Open(opts.RepoPath, log)
	if err != nil {
		return err
	}

	fromRef := opts.FromRef
	if fromRef == "" {
		fromRef, err = reader.LatestVersionTag()
		if err != nil {
			return err
		}
		if fromRef == "" {
			return fmt.Errorf("no previous release tag found and no from-ref given")
		}
	}

	commits, err := reader.CommitsBetweenExpandingMerges(fromRef, opts.ToRef)
	if err != nil {
		return fmt.Errorf("collect commits %s..%s: %w", fromRef, opts.ToRef, err)
	}

	repoURL := cfg.Git.RepoURLBase + "/" + opts.Repo
	releaseNotes := notes.BuildReleaseNotes(commits, repoURL, cfg.Git.ReleaseBranch, cfg.Git.NoreplyDomain)

	appVersion, err := notes.AppVersion(fromRef, releaseNotes)
	if err != nil {
		return fmt.Errorf("derive app version from %s: %w", fromRef, err)
	}

	text := releaseNotes.Text
	if opts.ChatMarkup {
		text = notes.ToChatMarkup(text)
	}

	fmt.Fprintln(out, text)

	if err := WriteOutputs([]Output{
		{Name: "app_version", Value: appVersion},
		{Name: "has_new_commits", Value: fmt.Sprintf("%t", releaseNotes.HasNewCommits)},
	}); err != nil {
		return err
	}

	// the webhook is notification, not artifact: failures only warn
	if opts.WebhookURL != "" {
		notifier, err := slack.NewWebhookNotifier(opts.WebhookURL, cfg.Slack.WebhookHost, cfg.RequestTimeout())
		if err != nil {
			log.Warn("webhook rejected", zap.Error(err))
			return nil
		}

		payload := slack.BuildDeployPayload(opts.Repo, opts.Network, appVersion, notes.ToChatMarkup(releaseNotes.Text))
		if err := notifier.Send(ctx, payload); err != nil {
			log.Warn("webhook post failed", zap.Error(err))
		}
	}

	return nil
}
