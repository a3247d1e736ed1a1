package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/app"
	"github.com/wahlandcase/attuned.deploynotify/internal/config"
	"github.com/wahlandcase/attuned.deploynotify/internal/version"
)

var (
	repoPath    string
	repoName    string
	network     string
	branch      string
	description string
	previewURL  string
	author      string
	channel     string
	searchToken string
	botToken    string
	messageText string
	fromRef     string
	toRef       string
	chatMarkup  bool
	webhookURL  string
	bumpLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atdn",
		Short: "Deployment notifications from git history",
	}

	rootCmd.PersistentFlags().StringVar(&repoPath, "repo-path", ".", "Path to the git checkout")

	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Create or amend the deployment thread for a branch",
		RunE:  runNotify,
	}
	notifyCmd.Flags().StringVar(&repoName, "repo", "", "Repository name (required)")
	notifyCmd.Flags().StringVar(&network, "network", "", "Deployment network/environment")
	notifyCmd.Flags().StringVar(&branch, "branch", "", "Branch name (detected from HEAD when empty)")
	notifyCmd.Flags().StringVar(&description, "description", "", "Deployment description")
	notifyCmd.Flags().StringVar(&previewURL, "preview-url", "", "Preview URL of this deployment")
	notifyCmd.Flags().StringVar(&author, "author", "", "Who triggered the deployment")
	notifyCmd.Flags().StringVar(&channel, "channel", "", "Chat channel (config default when empty)")
	notifyCmd.Flags().StringVar(&searchToken, "search-token", "", "Search-scoped API token")
	notifyCmd.Flags().StringVar(&botToken, "bot-token", "", "Write-scoped API token")
	notifyCmd.Flags().StringVar(&messageText, "message-text", "", "Free text to extract tickets from")
	notifyCmd.Flags().StringVar(&fromRef, "from-ref", "", "Ticket extraction range start")
	notifyCmd.Flags().StringVar(&toRef, "to-ref", "", "Ticket extraction range end")

	notesCmd := &cobra.Command{
		Use:   "release-notes",
		Short: "Render the changelog for a ref range",
		RunE:  runReleaseNotes,
	}
	notesCmd.Flags().StringVar(&repoName, "repo", "", "Repository name (required)")
	notesCmd.Flags().StringVar(&network, "network", "", "Deployment network/environment")
	notesCmd.Flags().StringVar(&fromRef, "from-ref", "", "Previous release tag (latest version tag when empty)")
	notesCmd.Flags().StringVar(&toRef, "to-ref", "HEAD", "Release head ref")
	notesCmd.Flags().BoolVar(&chatMarkup, "chat-markup", false, "Render chat-message markup instead of markdown")
	notesCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Also post the deployment webhook")

	bumpCmd := &cobra.Command{
		Use:   "bump <tag>",
		Short: "Increment a version tag",
		Args:  cobra.ExactArgs(1),
		RunE:  runBump,
	}
	bumpCmd.Flags().StringVar(&bumpLevel, "level", version.LevelPatch, "Increment level: major, minor or patch")

	rootCmd.AddCommand(notifyCmd, notesCmd, bumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger()
	defer logger.Sync()

	opts := app.NotifyOptions{
		RepoPath:    repoPath,
		Repo:        app.ResolveInput(repoName, "repo", ""),
		Network:     app.ResolveInput(network, "network", ""),
		Branch:      app.ResolveInput(branch, "branch", ""),
		Description: app.ResolveInput(description, "description", ""),
		PreviewURL:  app.ResolveInput(previewURL, "preview-url", ""),
		Author:      app.ResolveInput(author, "author", ""),
		Channel:     app.ResolveInput(channel, "channel", ""),
		SearchToken: app.ResolveInput(searchToken, "search-token", os.Getenv("SLACK_SEARCH_TOKEN")),
		BotToken:    app.ResolveInput(botToken, "bot-token", os.Getenv("SLACK_BOT_TOKEN")),
		MessageText: app.ResolveInput(messageText, "message-text", ""),
		FromRef:     fromRef,
		ToRef:       toRef,
	}

	return app.RunNotify(cmd.Context(), cfg, opts, logger)
}

func runReleaseNotes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger()
	defer logger.Sync()

	opts := app.ReleaseNotesOptions{
		RepoPath:   repoPath,
		Repo:       app.ResolveInput(repoName, "repo", ""),
		Network:    app.ResolveInput(network, "network", ""),
		FromRef:    fromRef,
		ToRef:      toRef,
		ChatMarkup: chatMarkup,
		WebhookURL: app.ResolveInput(webhookURL, "webhook-url", ""),
	}

	return app.RunReleaseNotes(cmd.Context(), cfg, opts, os.Stdout, logger)
}

func runBump(cmd *cobra.Command, args []string) error {
	bumped, err := version.Increment(args[0], bumpLevel)
	if err != nil {
		return err
	}

	fmt.Println(bumped)
	return nil
}
