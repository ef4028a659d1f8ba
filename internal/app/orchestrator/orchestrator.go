// Package orchestrator drives a single generation attempt: it picks the
// provider route for a user turn, folds the streamed output into the
// conversation log, and finalizes the target message on success or failure.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prismchat/prism/internal/domain"
	"github.com/prismchat/prism/internal/observability"
	"github.com/prismchat/prism/internal/store"
)

// Interim notice shown while a video operation is in flight.
const videoPendingNotice = "Generating video... This may take a moment."

// Final content of a successful video turn; the playable URI travels in the
// message's Video field.
const videoReadyNotice = "Here is your generated video:"

// Config holds the tunables of the video poll loop. A zero Config gets the
// defaults below.
type Config struct {
	// PollInterval is the fixed wait between operation polls.
	PollInterval time.Duration

	// MaxPolls bounds the poll loop; 0 polls until the provider reports
	// done.
	MaxPolls int

	// Sleep waits for d or until the context is cancelled. Tests inject
	// their own; nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Orchestrator routes user turns to the provider and reconciles streamed
// output into the conversation log. It owns the provider-side session
// handle: absent until the first text-only turn, reused afterwards, and
// discarded on clear or on any error.
type Orchestrator struct {
	provider domain.Provider
	log      *store.Log

	pollInterval time.Duration
	maxPolls     int
	sleep        func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	session domain.ChatSession
}

func New(provider domain.Provider, log *store.Log, cfg Config) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}

	return &Orchestrator{
		provider:     provider,
		log:          log,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		sleep:        cfg.Sleep,
	}
}

// Generate runs one attempt for the target message. It never returns an
// error: failures are classified and written into the target message, which
// is always left with IsStreaming=false as its last mutation.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, att *domain.Attachment, targetID domain.MessageID) {
	log := observability.LoggerFromContext(ctx).With("message_id", targetID)

	route := classifyRoute(prompt, att)
	log.Info("generation started", "route", route)

	var err error
	switch route {
	case routeMedia:
		err = o.analyzeMedia(ctx, prompt, *att, targetID)
	case routeVideo:
		err = o.generateVideo(ctx, prompt, targetID)
	default:
		err = o.chat(ctx, prompt, targetID)
	}

	if err != nil {
		o.failTarget(ctx, targetID, err)
		return
	}

	// Success: partial content stays, only the streaming flag is cleared.
	_ = o.log.Patch(targetID, func(m *domain.Message) {
		m.IsStreaming = false
	})
	log.Info("generation finished")
}

// ResetSession discards the provider-side conversational context. The next
// text-only turn starts from a fresh session.
func (o *Orchestrator) ResetSession() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = nil
}

// HasSession reports whether a provider-side session currently exists.
func (o *Orchestrator) HasSession() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil
}

// ─────────────────────────────────────────────
// Routing
// ─────────────────────────────────────────────

type route string

const (
	routeChat  route = "chat"
	routeMedia route = "media"
	routeVideo route = "video"
)

// videoTriggers are the phrases that switch a text turn onto the video
// generation route. Matched case-insensitively, first match wins.
var videoTriggers = []string{
	"generate a video",
	"create a video",
	"make a video",
}

func classifyRoute(prompt string, att *domain.Attachment) route {
	if att != nil {
		return routeMedia
	}

	lower := strings.ToLower(prompt)
	for _, trigger := range videoTriggers {
		if strings.Contains(lower, trigger) {
			return routeVideo
		}
	}

	return routeChat
}

// ─────────────────────────────────────────────
// Contextual chat route
// ─────────────────────────────────────────────

func (o *Orchestrator) chat(ctx context.Context, prompt string, targetID domain.MessageID) error {
	sess, err := o.ensureSession(ctx)
	if err != nil {
		return err
	}
	return sess.Send(ctx, prompt, o.foldInto(targetID))
}

// ensureSession lazily creates the session handle on the first text-only
// turn and reuses it for the following ones.
func (o *Orchestrator) ensureSession(ctx context.Context) (domain.ChatSession, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != nil {
		return o.session, nil
	}

	sess, err := o.provider.StartChat(ctx)
	if err != nil {
		return nil, err
	}
	o.session = sess
	return sess, nil
}

// ─────────────────────────────────────────────
// Multimodal analysis route
// ─────────────────────────────────────────────

func (o *Orchestrator) analyzeMedia(ctx context.Context, prompt string, att domain.Attachment, targetID domain.MessageID) error {
	// Single-turn call; the session handle is never read or written here.
	return o.provider.AnalyzeMedia(ctx, prompt, att, o.foldInto(targetID))
}

// foldInto returns the chunk handler for a target message: text is appended
// in arrival order, and a chunk carrying sources replaces the message's
// source list (last writer wins, never accumulated).
func (o *Orchestrator) foldInto(targetID domain.MessageID) domain.ChunkFunc {
	return func(c domain.Chunk) {
		_ = o.log.Patch(targetID, func(m *domain.Message) {
			m.Content += c.Text
			if len(c.Sources) > 0 {
				m.GroundingSources = c.Sources
			}
		})
	}
}

// ─────────────────────────────────────────────
// Video generation route
// ─────────────────────────────────────────────

type videoState string

const (
	videoSubmitted videoState = "SUBMITTED"
	videoPolling   videoState = "POLLING"
	videoDone      videoState = "DONE"
	videoFailed    videoState = "FAILED"
)

func (o *Orchestrator) generateVideo(ctx context.Context, prompt string, targetID domain.MessageID) error {
	log := observability.LoggerFromContext(ctx).With("message_id", targetID)

	// Interim notice is a direct overwrite, not a stream chunk.
	if err := o.log.Patch(targetID, func(m *domain.Message) {
		m.Content = videoPendingNotice
	}); err != nil {
		return err
	}

	state := videoSubmitted
	op, err := o.provider.GenerateVideo(ctx, prompt)
	if err != nil {
		return err
	}
	log.Info("video operation submitted", "state", state)

	polls := 0
	for !op.Done() {
		state = videoPolling
		if o.maxPolls > 0 && polls >= o.maxPolls {
			state = videoFailed
			log.Warn("video polling gave up", "state", state, "polls", polls)
			return errors.New("video generation did not complete in time")
		}

		if err := o.sleep(ctx, o.pollInterval); err != nil {
			return err
		}

		op, err = o.provider.PollVideo(ctx, op)
		if err != nil {
			return err
		}
		polls++
	}

	uri := op.VideoURI()
	if uri == "" {
		state = videoFailed
		log.Warn("video operation finished without a video", "state", state)
		return errors.New("video generation completed but no video was returned")
	}

	state = videoDone
	log.Info("video operation finished", "state", state, "polls", polls)

	return o.log.Patch(targetID, func(m *domain.Message) {
		m.Content = videoReadyNotice
		m.Video = &domain.Video{URI: uri}
	})
}

// ─────────────────────────────────────────────
// Shared error path
// ─────────────────────────────────────────────

// failTarget maps the failure onto a user-facing message and finalizes the
// target. The session handle is discarded on every error, even for routes
// that never touch it, so the next attempt starts from clean context.
func (o *Orchestrator) failTarget(ctx context.Context, targetID domain.MessageID, cause error) {
	kind, msg := ClassifyFailure(cause)

	o.ResetSession()

	observability.LoggerFromContext(ctx).Error("generation failed",
		"message_id", targetID,
		"kind", kind,
		"error", cause)

	_ = o.log.Patch(targetID, func(m *domain.Message) {
		m.Content = msg
		m.IsError = true
		m.IsStreaming = false
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
