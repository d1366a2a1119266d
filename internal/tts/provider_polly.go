package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/rs/zerolog"
)

// pollyClient is the subset of *polly.Client this package calls, narrowed
// for testability without an AWS endpoint.
type pollyClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyProvider synthesizes speech via Amazon Polly.
type PollyProvider struct {
	client pollyClient
	log    zerolog.Logger
}

// NewPollyProvider wraps an AWS Polly client.
func NewPollyProvider(client *polly.Client, log zerolog.Logger) *PollyProvider {
	return &PollyProvider{client: client, log: log.With().Str("provider", "polly").Logger()}
}

func (p *PollyProvider) Name() string { return "polly" }

// pollyVoice maps a preset voice ID to a concrete Polly voice. "alert" gets
// a more emphatic neural voice; everything else uses the standard voice.
func pollyVoice(voiceID string) types.VoiceId {
	if voiceID == "alert" {
		return types.VoiceIdMatthew
	}
	return types.VoiceIdJoanna
}

func (p *PollyProvider) Synthesize(ctx context.Context, text string, voice VoiceParams) (Audio, error) {
	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: types.OutputFormatMp3,
		VoiceId:      pollyVoice(voice.VoiceID),
		Engine:       types.EngineNeural,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("polly synthesize: %w", err)
	}
	defer out.AudioStream.Close()

	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return Audio{}, fmt.Errorf("polly read audio stream: %w", err)
	}

	contentType := "audio/mpeg"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}

	p.log.Debug().Int("bytes", len(data)).Msg("synthesized audio")
	return Audio{Data: data, ContentType: contentType}, nil
}
