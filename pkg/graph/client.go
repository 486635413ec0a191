// Package graph is the Neo4j persistence layer: schema setup, batch
// loading of enriched content, entity maintenance and the read queries
// the retrieval and dashboard surfaces are built on.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agoralab/agora/backend/pkg/logger"
)

// Client wraps the Neo4j driver together with the target database name.
// It is safe for concurrent use and is shared process-wide.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// NewClientParams configures a graph Client.
type NewClientParams struct {
	URI      string
	User     string
	Password string
	Database string

	TimeoutSec  int
	MaxPoolSize int
}

// NewClient connects to Neo4j and verifies connectivity before returning.
// The pipeline refuses to start against an unreachable graph.
func NewClient(ctx context.Context, params NewClientParams) (*Client, error) {
	if params.URI == "" {
		return nil, fmt.Errorf("graph: missing URI")
	}
	if params.User == "" {
		params.User = "neo4j"
	}
	if params.Database == "" {
		params.Database = "neo4j"
	}
	if params.TimeoutSec <= 0 {
		params.TimeoutSec = 10
	}
	if params.MaxPoolSize <= 0 {
		params.MaxPoolSize = 50
	}

	auth := neo4j.BasicAuth(params.User, params.Password, "")
	driver, err := neo4j.NewDriverWithContext(params.URI, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = params.MaxPoolSize
		cfg.SocketConnectTimeout = time.Duration(params.TimeoutSec) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("graph: init driver: %w", err)
	}

	vCtx, cancel := context.WithTimeout(ctx, time.Duration(params.TimeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(vCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}

	logger.Info("[Graph] connected", "uri", params.URI, "database", params.Database)
	return &Client{Driver: driver, Database: params.Database}, nil
}

// Close releases the driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

func (c *Client) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
}

func (c *Client) readSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.Database,
	})
}
