package assemble

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zrn-ns/curacast/internal/logging"
)

// fakeConcat emulates ffmpeg well enough for assembly tests: concat jobs
// join the manifest's segment files, tagging jobs copy the source through
// with a marker byte appended.
func fakeConcat(t *testing.T) commandRunner {
	t.Helper()
	return func(_ context.Context, name string, args ...string) error {
		output := args[len(args)-1]
		for i, arg := range args {
			if arg == "-f" && i+1 < len(args) && args[i+1] == "concat" {
				return fakeConcatJob(args, output)
			}
		}
		// Tagging pass: -i source ... output
		for i, arg := range args {
			if arg == "-i" {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					return err
				}
				return os.WriteFile(output, append(data, []byte("+art")...), 0o644)
			}
		}
		return errors.New("unrecognized ffmpeg invocation")
	}
}

func fakeConcatJob(args []string, output string) error {
	var manifestPath string
	for i, arg := range args {
		if arg == "-i" {
			manifestPath = args[i+1]
		}
	}
	manifest, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	var joined []byte
	for _, line := range strings.Split(strings.TrimSpace(string(manifest)), "\n") {
		path := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		joined = append(joined, data...)
	}
	return os.WriteFile(output, joined, 0o644)
}

func fixedProber(seconds float64) durationProber {
	return func(_ context.Context, _, _ string) (float64, error) {
		return seconds, nil
	}
}

func newTestAssembler(t *testing.T) *Assembler {
	a := New("ffmpeg", "ffprobe", logging.NewNop())
	a.WithCommandRunner(fakeConcat(t))
	a.WithDurationProber(fixedProber(12.5))
	return a
}

func assertNoLeftoverWorkDirs(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".assemble-") {
			t.Fatalf("leftover work directory %s", entry.Name())
		}
	}
}

func TestAssembleZeroSegments(t *testing.T) {
	dir := t.TempDir()
	result, err := newTestAssembler(t).Assemble(context.Background(), nil, Request{OutputPath: filepath.Join(dir, "out.mp3")})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if result.Path != "" || result.SizeBytes != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.mp3")); !os.IsNotExist(err) {
		t.Fatal("no output file should exist for zero segments")
	}
}

func TestAssembleSingleSegmentPassthrough(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp3")
	segment := []byte("single-segment-audio-bytes")

	result, err := newTestAssembler(t).Assemble(context.Background(), [][]byte{segment}, Request{OutputPath: out})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, segment) {
		t.Fatalf("passthrough altered bytes: %q", got)
	}
	if result.DurationSeconds != 12.5 {
		t.Fatalf("duration = %v", result.DurationSeconds)
	}
	assertNoLeftoverWorkDirs(t, dir)
}

func TestAssembleMultipleSegmentsInOrder(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp3")
	segments := [][]byte{[]byte("AAA"), []byte("BBB"), []byte("CCC")}

	result, err := newTestAssembler(t).Assemble(context.Background(), segments, Request{OutputPath: out})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "AAABBBCCC" {
		t.Fatalf("segments out of order: %q", got)
	}
	if result.SizeBytes != int64(len("AAABBBCCC")) {
		t.Fatalf("size = %d", result.SizeBytes)
	}
	assertNoLeftoverWorkDirs(t, dir)
}

func TestAssembleEmbedsArtworkWhenPresent(t *testing.T) {
	dir := t.TempDir()
	artwork := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(artwork, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.mp3")

	_, err := newTestAssembler(t).Assemble(context.Background(), [][]byte{[]byte("AAA"), []byte("BBB")}, Request{
		OutputPath:  out,
		ArtworkPath: artwork,
		Tags:        Tags{Title: "Episode", Artist: "Host"},
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	got, _ := os.ReadFile(out)
	if !strings.HasSuffix(string(got), "+art") {
		t.Fatalf("artwork pass did not run: %q", got)
	}
}

func TestAssembleStagesArtworkBeforeTagging(t *testing.T) {
	dir := t.TempDir()
	artwork := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(artwork, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.mp3")

	// Capture the artwork input of the tagging pass while the work dir
	// still exists.
	var taggedInput string
	var taggedBytes []byte
	base := fakeConcat(t)
	a := New("ffmpeg", "ffprobe", logging.NewNop())
	a.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		var inputs []string
		for i, arg := range args {
			if arg == "-i" && i+1 < len(args) {
				inputs = append(inputs, args[i+1])
			}
		}
		if len(inputs) == 2 {
			taggedInput = inputs[1]
			taggedBytes, _ = os.ReadFile(inputs[1])
		}
		return base(ctx, name, args...)
	})
	a.WithDurationProber(fixedProber(1))

	_, err := a.Assemble(context.Background(), [][]byte{[]byte("AAA"), []byte("BBB")}, Request{
		OutputPath:  out,
		ArtworkPath: artwork,
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if taggedInput == "" {
		t.Fatal("tagging pass never ran")
	}
	if taggedInput == artwork {
		t.Fatal("artwork used in place instead of a staged copy")
	}
	if !strings.Contains(taggedInput, ".assemble-") {
		t.Fatalf("artwork staged outside the work dir: %s", taggedInput)
	}
	if string(taggedBytes) != "jpeg-bytes" {
		t.Fatalf("staged artwork corrupted: %q", taggedBytes)
	}
}

func TestAssembleMissingArtworkFallsBackToPlainAudio(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp3")

	_, err := newTestAssembler(t).Assemble(context.Background(), [][]byte{[]byte("AAA"), []byte("BBB")}, Request{
		OutputPath:  out,
		ArtworkPath: filepath.Join(dir, "no-such-cover.jpg"),
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	got, _ := os.ReadFile(out)
	if string(got) != "AAABBB" {
		t.Fatalf("expected plain audio fallback, got %q", got)
	}
}

func TestAssembleCleansUpOnConcatFailure(t *testing.T) {
	dir := t.TempDir()
	a := New("ffmpeg", "ffprobe", logging.NewNop())
	a.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		return errors.New("ffmpeg exploded")
	})
	a.WithDurationProber(fixedProber(1))

	_, err := a.Assemble(context.Background(), [][]byte{[]byte("A"), []byte("B")}, Request{OutputPath: filepath.Join(dir, "out.mp3")})
	if err == nil {
		t.Fatal("expected concat failure")
	}
	assertNoLeftoverWorkDirs(t, dir)
}
