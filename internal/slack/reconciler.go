package slack

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wahlandcase/attuned.deploynotify/internal/models"
	"github.com/wahlandcase/attuned.deploynotify/internal/tickets"
)

// ReconcilerConfig is the immutable wiring for a Reconciler
type ReconcilerConfig struct {
	// Channel the deployment threads live in
	Channel string
	// WindowDays bounds the search for an existing root message
	WindowDays int
	// SearchToken is the read/search-scoped credential
	SearchToken string
	// BotToken is the write-scoped credential
	BotToken string
}

// Reconciler maintains the one-root-message-per-(repo, branch) discipline:
// it searches for an existing deployment thread and either creates a new
// root or amends the existing one and records the event as a threaded
// reply.
//
// The invariant is only as strong as search-before-post; two concurrent
// runs for the same branch can race and create two roots. CI serializes
// deployments per branch in practice, so the race is accepted.
type Reconciler struct {
	client    *Client
	extractor *tickets.Extractor
	cfg       ReconcilerConfig
	log       *zap.Logger
}

// NewReconciler creates a Reconciler
func NewReconciler(client *Client, extractor *tickets.Extractor, cfg ReconcilerConfig, log *zap.Logger) *Reconciler {
	return &Reconciler{client: client, extractor: extractor, cfg: cfg, log: log}
}

// Reconcile runs the create-or-amend protocol for one deployment event.
// It never returns an error: a broken notification must not fail the
// deployment pipeline, so every failure is logged and reported as a
// skipped result.
func (r *Reconciler) Reconcile(ctx context.Context, info DeployInfo, ticketKeys []string) models.ReconcileResult {
	match, err := r.client.SearchDeployMessage(ctx, r.cfg.SearchToken, r.cfg.Channel, info.Repo, info.Branch, r.cfg.WindowDays)
	if err != nil {
		r.log.Warn("deployment message search failed, skipping notification",
			zap.String("repo", info.Repo), zap.String("branch", info.Branch), zap.Error(err))
		return skipped("search failed: " + err.Error())
	}

	if match == nil {
		return r.createRoot(ctx, info, ticketKeys)
	}
	return r.amendRoot(ctx, match, info, ticketKeys)
}

func (r *Reconciler) createRoot(ctx context.Context, info DeployInfo, ticketKeys []string) models.ReconcileResult {
	text := composeRootMessage(info, r.extractor.RenderLinks(ticketKeys))

	posted, err := r.client.PostMessage(ctx, r.cfg.BotToken, r.cfg.Channel, text)
	if err != nil {
		r.log.Warn("posting deployment root message failed", zap.String("repo", info.Repo), zap.Error(err))
		return skipped("post failed: " + err.Error())
	}

	// stamp the message with its own timestamp; the root stays findable
	// even when search misbehaves
	if err := r.client.UpdateMessage(ctx, r.cfg.BotToken, posted.Channel, posted.TS, withThreadID(text, posted.TS)); err != nil {
		r.log.Warn("stamping thread id on root message failed", zap.String("ts", posted.TS), zap.Error(err))
	}

	return models.ReconcileResult{
		Status:     models.RootCreated,
		Found:      false,
		ThreadTS:   posted.TS,
		ChannelID:  posted.Channel,
		NewTickets: ticketKeys,
	}
}

func (r *Reconciler) amendRoot(ctx context.Context, match *SearchMatch, info DeployInfo, ticketKeys []string) models.ReconcileResult {
	thread, err := r.client.ThreadReplies(ctx, r.cfg.BotToken, match.Channel.ID, match.TS)
	if err != nil {
		r.log.Warn("fetching deployment thread failed", zap.String("ts", match.TS), zap.Error(err))
		return skipped("thread fetch failed: " + err.Error())
	}

	// the union of every ticket ever posted anywhere in the thread; only
	// genuinely new tickets may be appended to the root
	var bodies []string
	for _, m := range thread {
		bodies = append(bodies, m.Text)
	}
	known := r.extractor.FromText(strings.Join(bodies, "\n"))
	newTickets := tickets.Diff(ticketKeys, known)

	rootText := match.Text
	if len(thread) > 0 {
		rootText = thread[0].Text
	}

	amended := amendRootText(rootText, info.PreviewURL, r.extractor.RenderLinks(newTickets))
	if err := r.client.UpdateMessage(ctx, r.cfg.BotToken, match.Channel.ID, match.TS, amended); err != nil {
		r.log.Warn("updating deployment root message failed", zap.String("ts", match.TS), zap.Error(err))
		return skipped("update failed: " + err.Error())
	}

	// every deployment event gets its reply, new tickets or not
	if _, err := r.client.PostReply(ctx, r.cfg.BotToken, match.Channel.ID, match.TS, composeReplyMessage(info)); err != nil {
		r.log.Warn("posting deployment reply failed", zap.String("ts", match.TS), zap.Error(err))
		return skipped("reply failed: " + err.Error())
	}

	return models.ReconcileResult{
		Status:     models.RootUpdated,
		Found:      true,
		ThreadTS:   match.TS,
		ChannelID:  match.Channel.ID,
		NewTickets: newTickets,
	}
}

func skipped(reason string) models.ReconcileResult {
	return models.ReconcileResult{Status: models.ReconcileSkipped(reason)}
}
