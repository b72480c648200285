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

package api

import (
	"context"

	"github.com/canonical/hwapi/pkg/certification"
	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/models"
)

// StatusService runs the decision engine over a per-request read session.
type StatusService struct {
	store  *db.Store
	engine *certification.Engine
}

// NewStatusService wires the engine to the store.
func NewStatusService(store *db.Store, engine *certification.Engine) *StatusService {
	return &StatusService{store: store, engine: engine}
}

// CheckStatus opens one read session for the request and classifies it.
func (s *StatusService) CheckStatus(
	ctx context.Context, req *models.CertificationStatusRequest) (models.CertificationStatusResponse, error) {
	session, err := s.store.ReadSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return s.engine.CheckStatus(ctx, session, req)
}
