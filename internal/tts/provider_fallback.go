package tts

import (
	"context"
	"encoding/binary"
	"math"
)

// FallbackProvider never fails: it synthesizes a deterministic placeholder
// tone whose duration scales with text length. It is the last link in the
// chain so the service always has something to hand back.
type FallbackProvider struct{}

func NewFallbackProvider() *FallbackProvider { return &FallbackProvider{} }

func (f *FallbackProvider) Name() string { return "local-fallback" }

const (
	fallbackSampleRate = 8000
	fallbackFreqHz     = 440.0
)

func (f *FallbackProvider) Synthesize(_ context.Context, text string, voice VoiceParams) (Audio, error) {
	seconds := 0.6 + float64(len(text))*0.04
	if seconds > 8 {
		seconds = 8
	}
	samples := int(seconds * fallbackSampleRate)

	buf := make([]byte, samples*2)
	freq := fallbackFreqHz * voice.Rate
	for i := 0; i < samples; i++ {
		t := float64(i) / fallbackSampleRate
		v := math.Sin(2*math.Pi*freq*t) * 0.2
		sample := int16(v * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}

	return Audio{Data: buf, ContentType: "audio/l16;rate=8000"}, nil
}
