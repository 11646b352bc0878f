package synth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/runbatch"
	"github.com/zrn-ns/curacast/internal/services"
	"github.com/zrn-ns/curacast/internal/textchunk"
)

// Synthesizer runs chunk synthesis in concurrency-bounded windows and
// returns segments in chunk order regardless of completion order.
type Synthesizer struct {
	speaker     Speaker
	concurrency int
	logger      *slog.Logger
}

// NewSynthesizer bounds in-flight speech requests at concurrency.
func NewSynthesizer(speaker Speaker, concurrency int, logger *slog.Logger) *Synthesizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Synthesizer{
		speaker:     speaker,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(logger, "synth"),
	}
}

// SynthesizeAll converts every chunk to audio. segments[i] is the audio for
// chunks[i]. Any chunk failure aborts the whole episode: a partial episode
// with missing narration must never be published.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, chunks []textchunk.Chunk) ([][]byte, error) {
	if len(chunks) == 0 {
		return nil, services.Wrap(services.ErrValidation, "synth", "synthesize", "no chunks to synthesize", nil)
	}

	segments, err := runbatch.Run(ctx, chunks, s.concurrency, func(ctx context.Context, _ int, chunk textchunk.Chunk) ([]byte, error) {
		audio, err := s.speaker.Speak(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}
		s.logger.Debug("chunk synthesized",
			logging.Int("chunk", chunk.Index),
			logging.Int("bytes", len(audio)),
		)
		return audio, nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "synth", "synthesize", "speech synthesis failed", err)
	}

	var total int
	for _, seg := range segments {
		total += len(seg)
	}
	s.logger.Info("synthesis complete",
		logging.Int("chunks", len(chunks)),
		logging.Int("total_bytes", total),
	)
	return segments, nil
}
