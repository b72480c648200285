/*
 * Copyright 2024 Canonical Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canonical/hwapi/pkg/logger"
)

// querier abstracts the pgx query surface so the same lookups can run on a
// pooled connection or inside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store wraps the connection pool. Reads happen on short-lived sessions,
// writes inside per-item transactions.
type Store struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewStore builds a Store over an established pool.
func NewStore(pool *pgxpool.Pool, log logger.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Session is a single-connection read scope. One session serves exactly one
// request; sharing sessions across requests is a defect.
type Session struct {
	conn *pgxpool.Conn
	q    querier
}

// ReadSession acquires a dedicated connection for one request's reads.
// The caller must Close it.
func (s *Store) ReadSession(ctx context.Context) (*Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("db: acquire session: %w", err)
	}

	return &Session{conn: conn, q: conn}, nil
}

// Close returns the session's connection to the pool.
func (s *Session) Close() {
	s.conn.Release()
}

// Tx is a write scope for a single importer item. All get-or-create calls
// of one upstream item share it, so one bad row rolls back atomically.
type Tx struct {
	q querier
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(pgtx pgx.Tx) error {
		return fn(&Tx{q: pgtx})
	})
}
