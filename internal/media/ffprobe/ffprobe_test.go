package ffprobe

import "testing"

const wavProbe = `{
  "streams": [
    {"index": 0, "codec_name": "pcm_s16le", "codec_type": "audio", "sample_rate": "16000", "channels": 1, "duration": "12.480000"}
  ],
  "format": {"filename": "abc.wav", "format_name": "wav", "duration": "12.480000", "size": "399404"}
}`

func TestParseAudioHelpers(t *testing.T) {
	result, err := Parse([]byte(wavProbe))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.DurationSeconds() != 12.48 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SampleRate() != 16000 {
		t.Fatalf("unexpected sample rate: %d", result.SampleRate())
	}
	if result.Channels() != 1 {
		t.Fatalf("unexpected channels: %d", result.Channels())
	}
	if result.FormatName() != "wav" {
		t.Fatalf("unexpected format: %q", result.FormatName())
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video"}, {CodecType: "audio", Duration: "3.5"}},
		Format:  Format{Duration: "N/A", FormatName: "mov,mp4,m4a"},
	}
	if result.DurationSeconds() != 3.5 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if result.FormatName() != "mov" {
		t.Fatalf("expected first format name, got %q", result.FormatName())
	}
}

func TestHelpersWithoutAudio(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if result.DurationSeconds() != 0 || result.SampleRate() != 0 || result.Channels() != 0 {
		t.Fatalf("expected zero values, got %v %d %d", result.DurationSeconds(), result.SampleRate(), result.Channels())
	}
	if _, err := Parse([]byte("nope")); err == nil {
		t.Fatal("expected parse error")
	}
}
