package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// --- Gemini API Configuration ---
const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultFlashModel  = "gemini-2.5-flash"
	DefaultProModel    = "gemini-2.5-pro"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"

	maxRetries         = 3
	initialBackoff     = 1 * time.Second
	requestTimeout     = 30 * time.Second
	structuredMimeType = "application/json"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("gemini: API key is not set")

// Config points the client at a Gemini endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	FlashModel  string
	ProModel    string
	SpeechModel string
	Voice       string

	MaxRetries     int
	InitialBackoff time.Duration
	Timeout        time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.FlashModel == "" {
		c.FlashModel = DefaultFlashModel
	}
	if c.ProModel == "" {
		c.ProModel = DefaultProModel
	}
	if c.SpeechModel == "" {
		c.SpeechModel = DefaultSpeechModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = maxRetries
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = initialBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = requestTimeout
	}
	return c
}

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData is base64 encoded media, e.g. the PCM returned by the TTS model.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type GenerationConfig struct {
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseSchema     *GeminiSchema `json:"responseSchema,omitempty"`
	Temperature        *float64      `json:"temperature,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

type SpeechConfig struct {
	VoiceConfig VoiceConfig `json:"voiceConfig"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig PrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content GeminiContent `json:"content"`
	} `json:"candidates"`
}

// firstPart returns the first part of the first candidate.
func (r *GeminiResponse) firstPart() (GeminiPart, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return GeminiPart{}, false
	}
	return r.Candidates[0].Content.Parts[0], true
}

// Client talks to the Gemini REST API.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zerolog.Logger
}

// NewClient builds a client. A nil logger discards output.
func NewClient(cfg Config, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

func (c *Client) endpoint(model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, url.PathEscape(model), url.QueryEscape(c.cfg.APIKey))
}

// GenerateAndParse sends a structured-output request and unmarshals the
// returned JSON text into target.
func (c *Client) GenerateAndParse(ctx context.Context, task, model, systemPrompt, userPrompt string, schema *GeminiSchema, temperature float64, target any) error {
	payload := GeminiPayload{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   schema,
			Temperature:      &temperature,
		},
	}
	if systemPrompt != "" {
		payload.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: systemPrompt}}}
	}

	resp, err := c.callGemini(ctx, task, model, payload)
	if err != nil {
		return err
	}
	part, ok := resp.firstPart()
	if !ok || strings.TrimSpace(part.Text) == "" {
		return fmt.Errorf("%s: no content found in Gemini response", task)
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(part.Text)), target); err != nil {
		return fmt.Errorf("%s: failed to parse structured response: %w", task, err)
	}
	return nil
}

// GenerateText sends a plain prompt and returns the text of the first part.
func (c *Client) GenerateText(ctx context.Context, task, model, userPrompt string) (string, error) {
	payload := GeminiPayload{
		Contents: []GeminiContent{{Parts: []GeminiPart{{Text: userPrompt}}}},
	}
	resp, err := c.callGemini(ctx, task, model, payload)
	if err != nil {
		return "", err
	}
	part, ok := resp.firstPart()
	if !ok || strings.TrimSpace(part.Text) == "" {
		return "", fmt.Errorf("%s: no content found in Gemini response", task)
	}
	return strings.TrimSpace(part.Text), nil
}

// GenerateSpeech asks the TTS model for audio and returns the inline data.
func (c *Client) GenerateSpeech(ctx context.Context, text string) (*InlineData, error) {
	payload := GeminiPayload{
		Contents: []GeminiContent{{Parts: []GeminiPart{{Text: text}}}},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				VoiceConfig: VoiceConfig{PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: c.cfg.Voice}},
			},
		},
	}
	resp, err := c.callGemini(ctx, "speech", c.cfg.SpeechModel, payload)
	if err != nil {
		return nil, err
	}
	part, ok := resp.firstPart()
	if !ok || part.InlineData == nil || part.InlineData.Data == "" {
		return nil, errors.New("speech: no audio found in Gemini response")
	}
	return part.InlineData, nil
}

// callGemini posts payload to model, retrying with exponential backoff.
func (c *Client) callGemini(ctx context.Context, task, model string, payload GeminiPayload) (*GeminiResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for i := 0; i < c.cfg.MaxRetries; i++ {
		if i > 0 {
			backoff := c.cfg.InitialBackoff * time.Duration(math.Pow(2, float64(i-1)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		c.log.Debug().Str("task", task).Str("model", model).Msgf("Attempt %d: Calling Gemini API...", i+1)

		resp, retry, err := c.attempt(ctx, model, payloadBytes)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Str("task", task).Msgf("Attempt %d failed", i+1)
		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("failed to call Gemini API after retries: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, model string, body []byte) (*GeminiResponse, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint(model), bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the request URL, which holds the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(b))
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	return &geminiResp, false, nil
}
