package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/spewlabs/explainer/internal/config"
	"github.com/spewlabs/explainer/internal/jobs"
	"github.com/spewlabs/explainer/internal/logger"
	"github.com/spewlabs/explainer/internal/remote"
)

// Job context keys the handler stores at submission and reads back in
// the terminal callbacks.
const (
	ctxTopic       = "topic"
	ctxPersonaID   = "persona_id"
	ctxPersonaName = "persona_name"
)

// ActionHandler turns parsed mentions into tracked jobs and posts the
// terminal replies. It implements jobs.Handler.
type ActionHandler struct {
	parser  *RequestParser
	catalog *config.Catalog
	tracker *jobs.Tracker
	client  Client
	log     logger.Logger
}

// NewActionHandler creates an ActionHandler. log may be nil.
func NewActionHandler(parser *RequestParser, catalog *config.Catalog, tracker *jobs.Tracker, client Client, log logger.Logger) *ActionHandler {
	return &ActionHandler{
		parser:  parser,
		catalog: catalog,
		tracker: tracker,
		client:  client,
		log:     logger.OrNoOp(log),
	}
}

// HandleMention processes one inbound mention: parse, acknowledge, and
// submit the generation job keyed by the mention id. Parse failures get
// an immediate error reply; they never become jobs.
func (h *ActionHandler) HandleMention(ctx context.Context, m Mention) {
	h.log.LogInfo(fmt.Sprintf("mention %s from %s: %q", m.ID, m.AuthorID, m.Text))

	parsed, userErr := h.parser.Parse(ctx, m.Text)
	if parsed == nil {
		h.replyError(ctx, m.ID, userErr)
		return
	}

	persona, ok := h.catalog.ByID(parsed.PersonaID)
	if !ok {
		// Parser validated against the same catalog; reaching here means
		// the catalog changed mid-flight.
		h.replyError(ctx, m.ID, "Sorry, that celebrity is no longer available.")
		return
	}

	ack := fmt.Sprintf("Working on your video about %q by %s! This will take a couple minutes...", parsed.Topic, persona.Name)
	if err := h.client.PostReply(ctx, m.ID, ack); err != nil {
		// Continue anyway: a lost acknowledgment is not worth losing the job.
		h.log.LogWarn(fmt.Sprintf("mention %s: acknowledgment reply failed: %v", m.ID, err))
	}

	jctx := jobs.Context{
		ctxTopic:       parsed.Topic,
		ctxPersonaID:   persona.ID,
		ctxPersonaName: persona.Name,
	}
	if err := h.tracker.Submit(ctx, m.ID, jctx); err != nil {
		h.log.LogError(fmt.Sprintf("mention %s: submit failed: %v", m.ID, err))
		h.replyError(ctx, m.ID, "Sorry, I encountered an unexpected error. Please try again later.")
	}
}

// OnCompleted posts the finished video as a reply to the triggering
// mention.
func (h *ActionHandler) OnCompleted(job jobs.Job, video remote.File) {
	ctx := context.Background()
	message := fmt.Sprintf("Here's %s explaining %q!", job.Context[ctxPersonaName], job.Context[ctxTopic])
	if err := h.client.PostVideoReply(ctx, job.ID, message, video.Path()); err != nil {
		h.log.LogError(fmt.Sprintf("job %s: video reply failed: %v", job.ID, err))
	}
}

// OnFailed posts an apology reply.
func (h *ActionHandler) OnFailed(job jobs.Job, jobErr error) {
	ctx := context.Background()
	message := fmt.Sprintf("Sorry, I encountered an error generating the video about %q. Please try again later.", job.Context[ctxTopic])
	if err := h.client.PostReply(ctx, job.ID, message); err != nil {
		h.log.LogError(fmt.Sprintf("job %s: failure reply failed: %v", job.ID, err))
	}
}

// replyError posts a user-facing error, appending a usage hint when the
// message suggests the request format was the problem.
func (h *ActionHandler) replyError(ctx context.Context, mentionID, message string) {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "couldn't identify") || strings.Contains(lower, "couldn't determine") {
		message += " Try format: explain [topic] by [celebrity name]."
	}
	if err := h.client.PostReply(ctx, mentionID, message); err != nil {
		h.log.LogError(fmt.Sprintf("mention %s: error reply failed: %v", mentionID, err))
	}
}
