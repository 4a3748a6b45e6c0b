package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil error", nil, ""},
		{"unclassified", errors.New("plain"), ""},
		{"not ready", New(KindNotReady, "index empty"), KindNotReady},
		{"infrastructure", Wrap(KindInfrastructure, "redis", errors.New("dial tcp")), KindInfrastructure},
		{"wrapped with fmt", fmt.Errorf("outer: %w", New(KindConfiguration, "missing template")), KindConfiguration},
		{
			"application over infrastructure keeps outermost",
			Wrap(KindApplication, "turn failed", Wrap(KindInfrastructure, "model", errors.New("eof"))),
			KindApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not ready retries", New(KindNotReady, "warming up"), true},
		{"infrastructure retries", New(KindInfrastructure, "connection refused"), true},
		{"application is final", New(KindApplication, "turn failed"), false},
		{"configuration is final", New(KindConfiguration, "bad threshold"), false},
		{"unclassified is final", errors.New("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindInfrastructure, "noop", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindApplication, "save history", Wrap(KindInfrastructure, "redis rpush", cause))
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the root cause through two wraps")
	}
}
