// Package ai wraps the Gemini API behind the small surface the rest of the
// service needs: multi-turn chat completions, one-shot completions, audio
// transcription, speech synthesis and document analysis. Calls are
// synchronous and never retried here; a failure is the caller's to handle.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// ErrUpstream tags any transport or protocol failure from the gateway.
var ErrUpstream = errors.New("completion gateway failure")

const (
	// Transcription runs on the lite model; latency matters more than depth.
	transcribeModel = "gemini-2.0-flash-lite"
	speechModel     = "gemini-2.5-flash-preview-tts"
	speechVoice     = "Leda"
)

const documentInstruction = "You are a legal document analysis assistant.\n\n" +
	"Analyze the following document and provide:\n" +
	"1. Document type and applicable context.\n" +
	"2. Key clauses and obligations of the involved parties.\n" +
	"3. Important rights, limitations, and responsibilities.\n" +
	"4. Potential legal risks, vague clauses, or unfavorable terms for a general user.\n\n" +
	"Base your analysis strictly on the document content and use clear, professional language."

// Client is the process-wide Gemini client, constructed once at startup and
// injected into the services that need it.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{client: c, model: modelName}, nil
}

// Complete sends the accumulated turn history with a system instruction and
// returns the model's reply text.
func (c *Client) Complete(ctx context.Context, history []model.Turn, system string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == model.TurnRoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return text, nil
}

// CompleteOnce is the one-shot variant used for quiz generation and lawyer
// matching: a single synthetic user turn against a system instruction.
func (c *Client) CompleteOnce(ctx context.Context, userText, system string) (string, error) {
	return c.Complete(ctx, []model.Turn{{Role: model.TurnRoleUser, Text: userText}}, system)
}

// SpeechToText transcribes an uploaded audio file.
func (c *Client) SpeechToText(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Please transcribe this audio into text accurately."),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}
	res, err := c.client.Models.GenerateContent(ctx, transcribeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty transcription", ErrUpstream)
	}
	return text, nil
}

// TextToSpeech synthesizes speech for the given text and returns a playable
// WAV file (the API yields raw 24kHz mono PCM).
func (c *Client) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: speechVoice},
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, speechModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no audio candidate", ErrUpstream)
	}
	part := res.Candidates[0].Content.Parts[0]
	if part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return nil, fmt.Errorf("%w: candidate carries no audio data", ErrUpstream)
	}
	return encodeWAV(part.InlineData.Data), nil
}

// AnalyzeDocument runs the fixed document-analysis instruction over extracted
// document text.
func (c *Client) AnalyzeDocument(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(documentInstruction),
			genai.NewPartFromText(text),
		}, genai.RoleUser),
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	out := res.Text()
	if out == "" {
		return "", fmt.Errorf("%w: empty analysis", ErrUpstream)
	}
	return out, nil
}
