package llm

import (
	"context"
	"fmt"

	"github.com/prismchat/prism/internal/domain"
)

// MockProvider serves scripted replies so the server can run without an API
// key. Useful for local development and for exercising the full send flow in
// tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) StartChat(ctx context.Context) (domain.ChatSession, error) {
	return &mockChat{}, nil
}

type mockChat struct{}

func (c *mockChat) Send(ctx context.Context, prompt string, onChunk domain.ChunkFunc) error {
	// A few chunks so downstream streaming behavior stays observable.
	onChunk(domain.Chunk{Text: "I hear you. "})
	onChunk(domain.Chunk{Text: fmt.Sprintf("You said %q. ", prompt)})
	onChunk(domain.Chunk{Text: "This is a scripted reply from the mock provider."})
	return nil
}

func (m *MockProvider) AnalyzeMedia(ctx context.Context, prompt string, att domain.Attachment, onChunk domain.ChunkFunc) error {
	onChunk(domain.Chunk{Text: fmt.Sprintf("Pretending to analyze a %s attachment of %d bytes. ", att.MIMEType, len(att.Data))})
	onChunk(domain.Chunk{Text: fmt.Sprintf("You asked: %q.", prompt)})
	return nil
}

func (m *MockProvider) GenerateVideo(ctx context.Context, prompt string) (domain.VideoOperation, error) {
	return &mockVideoOp{}, nil
}

func (m *MockProvider) PollVideo(ctx context.Context, op domain.VideoOperation) (domain.VideoOperation, error) {
	return &mockVideoOp{done: true}, nil
}

type mockVideoOp struct {
	done bool
}

func (v *mockVideoOp) Done() bool { return v.done }

func (v *mockVideoOp) VideoURI() string {
	if !v.done {
		return ""
	}
	return "https://example.com/videos/mock.mp4?key=mock"
}
