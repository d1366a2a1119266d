package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// PremiumProvider calls a generic HTTP JSON speech vendor: POST a JSON body
// with the text and voice parameters, receive raw audio bytes back.
type PremiumProvider struct {
	name       string
	baseURL    string
	apiKey     string
	client     *http.Client
	log        zerolog.Logger
}

// NewPremiumProvider builds a generic HTTP JSON vendor client. name
// distinguishes this instance in logs and cache keys (the fallback chain
// wires two such vendors under different names).
func NewPremiumProvider(name, baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *PremiumProvider {
	return &PremiumProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("provider", name).Logger(),
	}
}

func (p *PremiumProvider) Name() string { return p.name }

type premiumRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id"`
	Rate    float64 `json:"rate"`
	Pitch   float64 `json:"pitch"`
}

func (p *PremiumProvider) Synthesize(ctx context.Context, text string, voice VoiceParams) (Audio, error) {
	body, err := json.Marshal(premiumRequest{
		Text:    text,
		VoiceID: voice.VoiceID,
		Rate:    voice.Rate,
		Pitch:   voice.Pitch,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/synthesize", bytes.NewReader(body))
	if err != nil {
		return Audio{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("%s request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Audio{}, fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}

	data := make([]byte, 0, 8192)
	buf := make([]byte, 8192)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if readErr != nil {
			break
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	p.log.Debug().Int("bytes", len(data)).Msg("synthesized audio")
	return Audio{Data: data, ContentType: contentType}, nil
}
