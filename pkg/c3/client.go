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

// Package c3 imports the certification corpus from the upstream
// certification system's public API.
package c3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/logger"
)

const (
	maxAttempts    = 5
	baseDelay      = 2 * time.Second
	maxDelay       = 60 * time.Second
	attemptTimeout = 90 * time.Second

	devicePageLimit = 1000
)

// Client fetches the upstream corpus and materializes it through a Store.
// The public listing endpoints need no credentials.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   Store
	log     logger.Logger
	delay   func(attempt int) time.Duration
}

// NewClient builds an importer client against the given upstream base URL.
func NewClient(baseURL string, store Store, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: attemptTimeout},
		store:   store,
		log:     log.WithComponent("c3"),
		delay:   backoffDelay,
	}
}

// backoffDelay is an exponential backoff capped at maxDelay: 2s, 4s, 8s, ...
func backoffDelay(attempt int) time.Duration {
	return min(baseDelay<<attempt, maxDelay)
}

// LoadHardwareData runs the full import: the CPU-ID catalog first, then the
// certified configurations, then the per-certificate device instances. The
// ordering matters: device items reference machines and certificates by
// business key and are skipped when the referent is missing.
func (c *Client) LoadHardwareData(ctx context.Context) error {
	c.log.Info().Str("url", c.baseURL).Msg("Importing CPU IDs and codenames")

	if err := c.importCPUIDs(ctx); err != nil {
		return err
	}

	c.log.Info().Str("url", c.baseURL).Msg("Importing certified configurations and machines")

	if err := importPaginated(ctx, c, certificatesURL(c.baseURL), "certificate", c.loadCertificate); err != nil {
		return err
	}

	c.log.Info().Str("url", c.baseURL).Msg("Importing devices")

	return importPaginated(ctx, c, deviceInstancesURL(c.baseURL, devicePageLimit), "device", c.loadDeviceInstance)
}

// importCPUIDs loads the {codename: [pattern, ...]} catalog. Unlike the
// listing imports there is nothing to skip here, so any failure aborts.
func (c *Client) importCPUIDs(ctx context.Context) error {
	body, err := c.getWithRetries(ctx, cpuIDsURL(c.baseURL))
	if err != nil {
		return err
	}

	var catalog map[string][]string
	if err := json.Unmarshal(body, &catalog); err != nil {
		return fmt.Errorf("c3: decode cpuid catalog: %w", err)
	}

	for codename, patterns := range catalog {
		for _, pattern := range patterns {
			err := c.store.WithTx(ctx, func(tx Tx) error {
				_, _, err := tx.GetOrCreateCpuID(ctx, pattern, codename)
				return err
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// importPaginated walks a limit/offset listing following the server's next
// URL. Item failures are logged and skipped; fetch failures abort.
// Cancellation is honored at page boundaries.
func importPaginated[T any](
	ctx context.Context, c *Client, startURL, kind string, load func(ctx context.Context, item *T) error) error {
	next := &startURL
	counter := 0
	total := 0
	previousDecile := -1
	first := true

	for next != nil {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.getWithRetries(ctx, *next)
		if err != nil {
			return err
		}

		var pg page[T]
		if err := json.Unmarshal(body, &pg); err != nil {
			return fmt.Errorf("c3: decode %s page: %w", kind, err)
		}

		if first {
			// count repeats on every page; only the first one seeds
			// the progress indicator.
			total = pg.Count
			c.log.Info().Int("total", total).Str("kind", kind).Msg("Total items to process")
			first = false
		}

		next = pg.Next

		for i := range pg.Results {
			if err := load(ctx, &pg.Results[i]); err != nil {
				if db.IsIntegrityViolation(err) {
					c.log.Error().Err(err).Str("kind", kind).
						Msg("A DB error occurred while importing data from C3")
				} else {
					c.log.Error().Err(err).Str("kind", kind).
						Msg("An error occurred while importing data from C3")
				}

				continue
			}

			counter++

			if total > 0 {
				decile := 10 * counter / total
				if decile != previousDecile {
					c.log.Info().Str("kind", kind).Int("done", counter).
						Int("total", total).Int("percent", decile*10).Msg("Import progress")
					previousDecile = decile
				}
			}
		}
	}

	return nil
}

// getWithRetries fetches url, retrying transport failures, 429 and 5xx with
// exponential backoff. Other 4xx are returned immediately.
func (c *Client) getWithRetries(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		c.log.Debug().Str("url", url).Int("attempt", attempt+1).Int("max", maxAttempts).Msg("Fetching")

		body, retryable, err := c.fetch(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if !retryable {
			c.log.Error().Err(err).Str("url", url).Msg("Non-retryable upstream error")
			return nil, err
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := c.delay(attempt)
		c.log.Warn().Err(err).Str("url", url).Dur("delay", delay).
			Int("attempt", attempt+1).Int("max", maxAttempts).Msg("Request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("c3: fetch %s failed after %d attempts: %w", url, maxAttempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("c3: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Timeouts and connection errors are worth another attempt.
		return nil, true, fmt.Errorf("c3: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("c3: read %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("c3: fetch %s: status %s", url, resp.Status)
	default:
		return nil, false, fmt.Errorf("c3: fetch %s: status %s", url, resp.Status)
	}
}
