package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

var formatPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// Transcoder converts audio in a source container to WAV.
type Transcoder interface {
	ToWAV(ctx context.Context, audio []byte, format string) ([]byte, error)
}

// FFmpegTranscoder shells out to ffmpeg and resamples to 16 kHz mono PCM,
// the input whisper models expect.
type FFmpegTranscoder struct {
	path string
}

func NewFFmpegTranscoder(path string) *FFmpegTranscoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegTranscoder{path: path}
}

func (t *FFmpegTranscoder) ToWAV(ctx context.Context, audio []byte, format string) ([]byte, error) {
	format = strings.ToLower(format)
	if !formatPattern.MatchString(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	dir, err := os.MkdirTemp("", "transcode-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input."+format)
	out := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(in, audio, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage audio: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path,
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le",
		out,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed to convert %s: %w: %s", format, err, strings.TrimSpace(stderr.String()))
	}

	wav, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	return wav, nil
}
