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

package c3

import (
	"context"

	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/models"
)

// Tx is the write surface one imported item needs. A *db.Tx satisfies it.
type Tx interface {
	GetMachineByCanonicalID(ctx context.Context, canonicalID string) (*models.Machine, error)
	GetCertificateByName(ctx context.Context, machineID int64, name string) (*models.Certificate, error)
	GetVendorByName(ctx context.Context, name string) (*models.Vendor, error)
	GetOrCreateVendor(ctx context.Context, name string) (*models.Vendor, bool, error)
	GetOrCreatePlatform(ctx context.Context, name string, vendorID int64) (*models.Platform, bool, error)
	GetOrCreateConfiguration(ctx context.Context, name string, platformID int64) (*models.Configuration, bool, error)
	GetOrCreateMachine(ctx context.Context, canonicalID string, configurationID int64) (*models.Machine, bool, error)
	GetOrCreateKernel(ctx context.Context, version string) (*models.Kernel, bool, error)
	GetOrCreateBios(ctx context.Context, firmwareRevision *string, version string, vendorID int64) (*models.Bios, bool, error)
	GetOrCreateRelease(ctx context.Context, params db.ReleaseParams) (*models.Release, bool, error)
	GetOrCreateCertificate(ctx context.Context, params db.CertificateParams) (*models.Certificate, bool, error)
	GetOrCreateReport(ctx context.Context, architecture string, kernelID, biosID *int64, certificateID int64) (*models.Report, bool, error)
	GetOrCreateReportForCertificate(ctx context.Context, certificateID int64) (*models.Report, bool, error)
	GetOrCreateDevice(ctx context.Context, key db.DeviceKey, defaults db.DeviceDefaults) (*models.Device, bool, error)
	GetOrCreateCpuID(ctx context.Context, idPattern, codename string) (*models.CpuId, bool, error)
	AttachDeviceToReport(ctx context.Context, deviceID, reportID int64) error
	UpdateDeviceCodename(ctx context.Context, deviceID int64, codename string) error
}

// Store runs each imported item in its own transaction, so a bad row rolls
// back without poisoning the batch.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

type dbStore struct {
	inner *db.Store
}

// NewStore adapts the database layer to the importer's store contract.
func NewStore(s *db.Store) Store {
	return dbStore{inner: s}
}

func (s dbStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.inner.WithTx(ctx, func(tx *db.Tx) error {
		return fn(tx)
	})
}
