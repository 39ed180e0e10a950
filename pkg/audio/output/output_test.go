// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backend kinds, probe order and interface conformance
package output

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/resample"
)

func TestBackendsImplementInterface(t *testing.T) {
	var _ Backend = (*Oto)(nil)
	var _ Backend = (*Malgo)(nil)
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnresolved, "unresolved"},
		{KindPush, "push"},
		{KindCallback, "callback"},
		{KindBridge, "bridge"},
		{Kind(99), "unresolved"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDefaultProbesOrder(t *testing.T) {
	probes := DefaultProbes()
	want := []Kind{KindPush, KindCallback, KindBridge}

	if len(probes) != len(want) {
		t.Fatalf("expected %d probes, got %d", len(want), len(probes))
	}
	for i, p := range probes {
		if p.Kind != want[i] {
			t.Errorf("probe %d: expected %v, got %v", i, want[i], p.Kind)
		}
		if p.Open == nil {
			t.Errorf("probe %d has no opener", i)
		}
	}
}

func TestUnavailableWrapsSentinel(t *testing.T) {
	err := unavailable("test", errors.New("no device"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := err.Error(); got != "audio backend unavailable: test: no device" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestBackendPipelineFailureIsUnavailable(t *testing.T) {
	_, err := newBackendPipeline("malgo", Config{SampleRate: 0, Channels: 2, MaxBufferSize: 8192, Volume: 1}, 48000)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, resample.ErrInvalidSettings) {
		t.Errorf("expected the pipeline cause to be kept, got %v", err)
	}

	p, err := newBackendPipeline("malgo", Config{SampleRate: 44100, Channels: 2, MaxBufferSize: 8192, Volume: 1}, 48000)
	if err != nil || p == nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}
