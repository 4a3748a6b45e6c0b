// Package index provides the SurrealDB-backed document chunk index used
// for semantic retrieval.
package index

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

func init() {
	// WebSocket upgrade needs HTTP/1.1 semantics; HTTP/2 ALPN breaks wss.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// Options holds SurrealDB connection settings for the chunk index.
type Options struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string

	// Dimension is the embedding vector dimension the HNSW index is
	// built for. Must match the embedder's output dimension.
	Dimension int
}

// Client wraps a SurrealDB connection holding the chunk index.
type Client struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	opts   Options
	logger logger.Logger
}

// NewClient connects to SurrealDB with an auto-reconnecting WebSocket,
// authenticates and selects the namespace/database.
func NewClient(ctx context.Context, opts Options, log *slog.Logger) (*Client, error) {
	var sdkLogger logger.Logger
	if log != nil {
		sdkLogger = logger.New(log.Handler())
	} else {
		sdkLogger = logger.New(slog.Default().Handler())
	}

	codec := surrealcbor.New()

	// gorillaws appends /rpc itself.
	baseURL := strings.TrimSuffix(opts.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			ws := gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			})
			return ws, nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", opts.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fault.Wrap(fault.KindInfrastructure, "connect surrealdb", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fault.Wrap(fault.KindInfrastructure, "wrap surrealdb connection", err)
	}

	if _, err = db.SignIn(ctx, surrealdb.Auth{
		Username: opts.Username,
		Password: opts.Password,
	}); err != nil {
		_ = conn.Close(ctx)
		return nil, fault.Wrap(fault.KindInfrastructure, "signin surrealdb", err)
	}

	if err := db.Use(ctx, opts.Namespace, opts.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fault.Wrap(fault.KindInfrastructure, "select namespace/database", err)
	}

	sdkLogger.Info("SurrealDB connection established",
		"namespace", opts.Namespace, "database", opts.Database)
	return &Client{conn: conn, db: db, opts: opts, logger: sdkLogger}, nil
}

// InitSchema creates the chunk table and its HNSW index.
func (c *Client) InitSchema(ctx context.Context) error {
	c.logger.Info("initializing chunk index schema", "dimension", c.opts.Dimension)
	if _, err := surrealdb.Query[any](ctx, c.db, fmt.Sprintf(schemaTemplate, c.opts.Dimension), nil); err != nil {
		return fault.Wrap(fault.KindInfrastructure, "init chunk schema", err)
	}
	return nil
}

// Close closes the SurrealDB connection.
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("closing SurrealDB connection")
	return c.conn.Close(ctx)
}
