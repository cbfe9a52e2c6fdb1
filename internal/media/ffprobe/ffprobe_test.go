package ffprobe_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"framecast/internal/media/ffprobe"
)

func writeStub(t *testing.T, payload any) string {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal stub payload: %v", err)
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe-stub")
	script := "#!/bin/sh\ncat <<'EOF'\n" + string(body) + "\nEOF\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return stub
}

func TestInspectParsesStreams(t *testing.T) {
	stub := writeStub(t, map[string]any{
		"streams": []map[string]any{
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1080, "height": 1920},
			{"index": 1, "codec_type": "audio", "codec_name": "aac"},
		},
		"format": map[string]any{"duration": "12.48", "nb_streams": 2},
	})

	result, err := ffprobe.Inspect(context.Background(), stub, "whatever.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Errorf("video streams = %d, want 1", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 1 {
		t.Errorf("audio streams = %d, want 1", result.AudioStreamCount())
	}
	if got := result.DurationSeconds(); got != 12.48 {
		t.Errorf("duration = %v, want 12.48", got)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := ffprobe.Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDurationSecondsUnparsable(t *testing.T) {
	result := ffprobe.Result{Format: ffprobe.Format{Duration: "N/A"}}
	if got := result.DurationSeconds(); got != 0 {
		t.Errorf("duration = %v, want 0", got)
	}
}
