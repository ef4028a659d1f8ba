package domain

import "context"

// Chunk is one incremental unit of a streamed response. Sources, when
// present, are the grounding citations carried by this chunk.
type Chunk struct {
	Text    string
	Sources []GroundingSource
}

// ChunkFunc receives chunks in strict arrival order.
type ChunkFunc func(Chunk)

// ChatSession is an opaque provider-side conversational context. Multi-turn
// history lives behind the handle, not in this process.
type ChatSession interface {
	// Send streams the reply to prompt, invoking onChunk for every chunk.
	Send(ctx context.Context, prompt string, onChunk ChunkFunc) error
}

// VideoOperation is a provider-side long-running video generation job.
type VideoOperation interface {
	Done() bool
	// VideoURI returns the playable URI once the operation is done,
	// credential included. Empty means the provider produced nothing.
	VideoURI() string
}

// Provider defines how the core talks to the generative-AI service.
type Provider interface {
	// StartChat opens a fresh conversational session.
	StartChat(ctx context.Context) (ChatSession, error)

	// AnalyzeMedia runs a single-turn call carrying the prompt plus an
	// inline media payload. It never touches session state.
	AnalyzeMedia(ctx context.Context, prompt string, att Attachment, onChunk ChunkFunc) error

	// GenerateVideo submits an asynchronous video generation job.
	GenerateVideo(ctx context.Context, prompt string) (VideoOperation, error)

	// PollVideo refreshes the operation handle.
	PollVideo(ctx context.Context, op VideoOperation) (VideoOperation, error)
}
