package supabase

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Select fetches every visible row of a collection. Row-level security scopes
// the result to the authenticated user when a token is supplied.
func Select[T any](ctx context.Context, c *Client, table, token string) ([]T, error) {
	var rows []T

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.bearer(token)).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/rest/v1/" + table)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("select %s: status %d: %s", table, resp.StatusCode(), resp.String())
	}

	return rows, nil
}

// Upsert writes a full record-set snapshot into a collection. Rows carrying an
// id merge onto their existing remote row; rows without one are inserted and
// assigned an id by the remote store. Re-pushing an unchanged snapshot is
// idempotent.
func Upsert[T any](ctx context.Context, c *Client, table, token string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.bearer(token)).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(rows).
		Post("/rest/v1/" + table)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("upsert %s: status %d: %s", table, resp.StatusCode(), resp.String())
	}

	c.logger.Debug("upsert completed", zap.String("table", table), zap.Int("rows", len(rows)))
	return nil
}

func (c *Client) bearer(token string) string {
	if token != "" {
		return token
	}
	return c.key
}

// Collection adapts one PostgREST table to the reconciler's remote-store
// contract for a concrete record type.
type Collection[T any] struct {
	client *Client
	table  string
}

// NewCollection binds a client to a named collection.
func NewCollection[T any](client *Client, table string) *Collection[T] {
	return &Collection[T]{client: client, table: table}
}

// Fetch returns the remote snapshot of the collection.
func (col *Collection[T]) Fetch(ctx context.Context, token string) ([]T, error) {
	return Select[T](ctx, col.client, col.table, token)
}

// Upsert pushes a snapshot into the collection.
func (col *Collection[T]) Upsert(ctx context.Context, token string, rows []T) error {
	return Upsert(ctx, col.client, col.table, token, rows)
}
