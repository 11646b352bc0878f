package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zrn-ns/curacast/internal/fileutil"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/services"
)

// Tags is the metadata embedded into the assembled file alongside artwork.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// Request describes one assembly job.
type Request struct {
	// OutputPath is the final episode file location.
	OutputPath string
	// ArtworkPath is optional; a missing file downgrades to plain audio.
	ArtworkPath string
	Tags        Tags
}

// Result reports the assembled episode file.
type Result struct {
	Path            string
	DurationSeconds float64
	SizeBytes       int64
}

// Assembler merges ordered MP3 segments with ffmpeg.
type Assembler struct {
	ffmpegBin  string
	ffprobeBin string
	logger     *slog.Logger
	run        commandRunner
	probe      durationProber
}

// New constructs an assembler using the given ffmpeg and ffprobe binaries.
func New(ffmpegBin, ffprobeBin string, logger *slog.Logger) *Assembler {
	return &Assembler{
		ffmpegBin:  ffmpegBin,
		ffprobeBin: ffprobeBin,
		logger:     logging.NewComponentLogger(logger, "assemble"),
		run:        defaultCommandRunner,
		probe:      defaultDurationProber,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (a *Assembler) WithCommandRunner(r commandRunner) {
	if a != nil && r != nil {
		a.run = r
	}
}

// WithDurationProber injects a custom duration prober for tests.
func (a *Assembler) WithDurationProber(p durationProber) {
	if a != nil && p != nil {
		a.probe = p
	}
}

// Assemble merges segments, in order, into req.OutputPath. Zero segments
// yield an empty result without touching the filesystem; a single segment
// is written through unchanged. All intermediate files live in a private
// temp directory that is removed on every return path.
func (a *Assembler) Assemble(ctx context.Context, segments [][]byte, req Request) (Result, error) {
	if len(segments) == 0 {
		return Result{}, nil
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "assemble", "validate", "output path is required", nil)
	}

	workDir, err := os.MkdirTemp(filepath.Dir(req.OutputPath), ".assemble-*")
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "assemble", "workdir", "create working directory", err)
	}
	defer os.RemoveAll(workDir)

	merged := filepath.Join(workDir, "merged.mp3")
	if len(segments) == 1 {
		if err := os.WriteFile(merged, segments[0], 0o644); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "assemble", "write", "write single segment", err)
		}
	} else {
		if err := a.concat(ctx, segments, workDir, merged); err != nil {
			return Result{}, err
		}
	}

	final := merged
	if req.ArtworkPath != "" {
		if embedded, embedErr := a.embedArtwork(ctx, merged, workDir, req); embedErr != nil {
			a.logger.Warn("artwork embedding failed, publishing plain audio", logging.Error(embedErr))
		} else {
			final = embedded
		}
	}

	if err := os.Rename(final, req.OutputPath); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "assemble", "finalize", "move episode into place", err)
	}

	result := Result{Path: req.OutputPath}
	if info, err := os.Stat(req.OutputPath); err == nil {
		result.SizeBytes = info.Size()
	}
	duration, err := a.probe(ctx, a.ffprobeBin, req.OutputPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "assemble", "probe", "read back episode duration", err)
	}
	result.DurationSeconds = duration

	a.logger.Info("episode assembled",
		logging.String("path", result.Path),
		logging.Int("segments", len(segments)),
		logging.Int("size_bytes", int(result.SizeBytes)),
		logging.String("duration", fmt.Sprintf("%.1fs", result.DurationSeconds)),
	)
	return result, nil
}

// concat writes each segment to its own file, builds a concat demuxer
// manifest, and lets ffmpeg stitch the frames with correct timing.
func (a *Assembler) concat(ctx context.Context, segments [][]byte, workDir, output string) error {
	var manifest strings.Builder
	for i, segment := range segments {
		segPath := filepath.Join(workDir, fmt.Sprintf("segment-%03d.mp3", i))
		if err := os.WriteFile(segPath, segment, 0o644); err != nil {
			return services.Wrap(services.ErrExternalTool, "assemble", "write", fmt.Sprintf("write segment %d", i), err)
		}
		fmt.Fprintf(&manifest, "file '%s'\n", strings.ReplaceAll(segPath, "'", `'\''`))
	}

	manifestPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "assemble", "write", "write concat manifest", err)
	}

	err := a.run(ctx, a.ffmpegBin,
		"-v", "error", "-hide_banner", "-y",
		"-f", "concat", "-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		output,
	)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "assemble", "concat", "ffmpeg concat failed", err)
	}
	return nil
}

// embedArtwork produces a tagged copy with the artwork as an attached
// picture. The artwork is first staged into the work dir with an
// integrity-checked copy, so a torn read off slow or remote storage is
// caught before ffmpeg bakes it into the episode. Failures here never
// fail the episode.
func (a *Assembler) embedArtwork(ctx context.Context, source, workDir string, req Request) (string, error) {
	staged := filepath.Join(workDir, "artwork"+filepath.Ext(req.ArtworkPath))
	if err := fileutil.CopyFileVerified(req.ArtworkPath, staged); err != nil {
		return "", fmt.Errorf("stage artwork: %w", err)
	}

	output := filepath.Join(workDir, "tagged.mp3")
	args := []string{
		"-v", "error", "-hide_banner", "-y",
		"-i", source,
		"-i", staged,
		"-map", "0:a", "-map", "1:v",
		"-c", "copy",
		"-id3v2_version", "3",
		"-disposition:v", "attached_pic",
	}
	for _, tag := range []struct{ key, value string }{
		{"title", req.Tags.Title},
		{"artist", req.Tags.Artist},
		{"album", req.Tags.Album},
	} {
		if tag.value != "" {
			args = append(args, "-metadata", tag.key+"="+tag.value)
		}
	}
	args = append(args, output)

	if err := a.run(ctx, a.ffmpegBin, args...); err != nil {
		return "", fmt.Errorf("ffmpeg tagging failed: %w", err)
	}
	return output, nil
}
