package startup

import (
	"context"
	"strings"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

const probePrompt = "Startup Check: Respond with 'OK'"

// Pinger is a backend with a connectivity probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports the number of chunks in the knowledge index.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Generator produces an answer from the assembled prompt parts.
type Generator interface {
	Generate(ctx context.Context, query, contextText, history string) (string, error)
}

// PingCheck probes a backend's connectivity.
func PingCheck(name string, p Pinger) Check {
	return Check{
		Name: name,
		Run: func(ctx context.Context) error {
			return p.Ping(ctx)
		},
	}
}

// IndexCheck verifies the vector index answers a count query. An empty
// index passes: documents may be ingested after the server is up.
func IndexCheck(c Counter) Check {
	return Check{
		Name: "vector-index",
		Run: func(ctx context.Context) error {
			_, err := c.Count(ctx)
			return err
		},
	}
}

// GenerationCheck runs one end-to-end probe through the chat model and
// verifies it produces a non-empty response.
func GenerationCheck(g Generator) Check {
	return Check{
		Name: "chat-model",
		Run: func(ctx context.Context) error {
			out, err := g.Generate(ctx, probePrompt, "", "")
			if err != nil {
				return err
			}
			if strings.TrimSpace(out) == "" {
				return fault.New(fault.KindNotReady, "chat model returned an empty probe response")
			}
			return nil
		},
	}
}
