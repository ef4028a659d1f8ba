// Package llm adapts the generative-AI provider behind the domain ports.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/prismchat/prism/internal/domain"
)

// GeminiClient implements domain.Provider on top of the Gemini API.
type GeminiClient struct {
	client     *genai.Client
	apiKey     string
	chatModel  string
	videoModel string
}

type GeminiConfig struct {
	APIKey     string
	ChatModel  string
	VideoModel string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		apiKey:     cfg.APIKey,
		chatModel:  cfg.ChatModel,
		videoModel: cfg.VideoModel,
	}, nil
}

// StartChat opens a multi-turn session with the fixed system instruction and
// search grounding enabled.
func (g *GeminiClient) StartChat(ctx context.Context) (domain.ChatSession, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	chat, err := g.client.Chats.Create(ctx, g.chatModel, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("creating chat session: %w", err)
	}

	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, prompt string, onChunk domain.ChunkFunc) error {
	for resp, err := range c.chat.SendMessageStream(ctx, genai.Part{Text: prompt}) {
		if err != nil {
			return fmt.Errorf("chat stream: %w", err)
		}
		onChunk(chunkFromResponse(resp))
	}
	return nil
}

// AnalyzeMedia runs a single-turn call with the inline payload first and the
// prompt after it, the part order the API examples use.
func (g *GeminiClient) AnalyzeMedia(ctx context.Context, prompt string, att domain.Attachment, onChunk domain.ChunkFunc) error {
	parts := []*genai.Part{
		genai.NewPartFromBytes(att.Data, att.MIMEType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.chatModel, contents, nil) {
		if err != nil {
			return fmt.Errorf("media stream: %w", err)
		}
		onChunk(chunkFromResponse(resp))
	}
	return nil
}

func (g *GeminiClient) GenerateVideo(ctx context.Context, prompt string) (domain.VideoOperation, error) {
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    "16:9",
		Resolution:     "720p",
	}

	op, err := g.client.Models.GenerateVideos(ctx, g.videoModel, prompt, nil, cfg)
	if err != nil {
		return nil, fmt.Errorf("submitting video generation: %w", err)
	}

	return &geminiVideoOp{op: op, apiKey: g.apiKey}, nil
}

func (g *GeminiClient) PollVideo(ctx context.Context, op domain.VideoOperation) (domain.VideoOperation, error) {
	gop, ok := op.(*geminiVideoOp)
	if !ok {
		return nil, fmt.Errorf("unexpected video operation type %T", op)
	}

	refreshed, err := g.client.Operations.GetVideosOperation(ctx, gop.op, nil)
	if err != nil {
		return nil, fmt.Errorf("polling video operation: %w", err)
	}

	return &geminiVideoOp{op: refreshed, apiKey: g.apiKey}, nil
}

type geminiVideoOp struct {
	op     *genai.GenerateVideosOperation
	apiKey string
}

func (v *geminiVideoOp) Done() bool {
	return v.op.Done
}

// VideoURI returns the produced URI with the API key appended; the download
// endpoint requires the key as a query parameter.
func (v *geminiVideoOp) VideoURI() string {
	if v.op.Response == nil || len(v.op.Response.GeneratedVideos) == 0 {
		return ""
	}

	video := v.op.Response.GeneratedVideos[0].Video
	if video == nil || video.URI == "" {
		return ""
	}

	return withKey(video.URI, v.apiKey)
}

func withKey(uri, key string) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + "key=" + key
}

// chunkFromResponse flattens one streamed response into the domain chunk
// shape: concatenated text plus any web grounding citations.
func chunkFromResponse(resp *genai.GenerateContentResponse) domain.Chunk {
	chunk := domain.Chunk{Text: resp.Text()}

	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return chunk
	}

	for _, gc := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if gc.Web == nil || gc.Web.URI == "" {
			continue
		}
		chunk.Sources = append(chunk.Sources, domain.GroundingSource{
			Title: gc.Web.Title,
			URI:   gc.Web.URI,
		})
	}

	return chunk
}
