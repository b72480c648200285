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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/canonical/hwapi/pkg/models"
)

// getOrCreate implements the shared lookup-then-insert contract. The insert
// statement must use ON CONFLICT DO NOTHING with a RETURNING clause; when a
// concurrent writer wins the insert race, the row is re-read.
func getOrCreate[T any](
	ctx context.Context,
	sel func(context.Context) (*T, error),
	ins func(context.Context) (*T, error),
) (*T, bool, error) {
	row, err := sel(ctx)
	if err != nil {
		return nil, false, err
	}

	if row != nil {
		return row, false, nil
	}

	row, err = ins(ctx)
	if err != nil {
		return nil, false, err
	}

	if row != nil {
		return row, true, nil
	}

	// Insert hit a conflict: another writer created the row first.
	row, err = sel(ctx)
	if err != nil {
		return nil, false, err
	}

	if row == nil {
		return nil, false, errors.New("db: row vanished after insert conflict")
	}

	return row, false, nil
}

// noRowsToNil maps the empty RETURNING result of a conflicting insert to a
// nil row so getOrCreate can re-read.
func noRowsToNil[T any](row *T, err error) (*T, error) {
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	return row, err
}

// GetMachineByCanonicalID looks up a machine by its durable upstream id.
func (t *Tx) GetMachineByCanonicalID(ctx context.Context, canonicalID string) (*models.Machine, error) {
	return getMachineByCanonicalID(ctx, t.q, canonicalID)
}

// GetCertificateByName looks up a certificate by name within one machine.
func (t *Tx) GetCertificateByName(ctx context.Context, machineID int64, name string) (*models.Certificate, error) {
	return getCertificateByName(ctx, t.q, machineID, name)
}

// GetVendorByName matches a vendor by normalized name, case-insensitively.
func (t *Tx) GetVendorByName(ctx context.Context, name string) (*models.Vendor, error) {
	return getVendorByName(ctx, t.q, name)
}

// GetOrCreateVendor resolves a vendor by exact name.
func (t *Tx) GetOrCreateVendor(ctx context.Context, name string) (*models.Vendor, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Vendor, error) {
			return scanVendor(t.q.QueryRow(ctx, `SELECT id, name FROM vendor WHERE name = $1`, name))
		},
		func(ctx context.Context) (*models.Vendor, error) {
			var v models.Vendor
			err := t.q.QueryRow(ctx,
				`INSERT INTO vendor (name) VALUES ($1) ON CONFLICT DO NOTHING RETURNING id, name`,
				name).Scan(&v.ID, &v.Name)
			return noRowsToNil(&v, err)
		})
}

// GetOrCreatePlatform resolves a platform by (name, vendor).
func (t *Tx) GetOrCreatePlatform(ctx context.Context, name string, vendorID int64) (*models.Platform, bool, error) {
	scan := func(row pgx.Row) (*models.Platform, error) {
		var p models.Platform
		if err := row.Scan(&p.ID, &p.Name, &p.VendorID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("db: scan platform: %w", err)
		}

		return &p, nil
	}

	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Platform, error) {
			return scan(t.q.QueryRow(ctx,
				`SELECT id, name, vendor_id FROM platform WHERE name = $1 AND vendor_id = $2`, name, vendorID))
		},
		func(ctx context.Context) (*models.Platform, error) {
			var p models.Platform
			err := t.q.QueryRow(ctx,
				`INSERT INTO platform (name, vendor_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING RETURNING id, name, vendor_id`,
				name, vendorID).Scan(&p.ID, &p.Name, &p.VendorID)
			return noRowsToNil(&p, err)
		})
}

// GetOrCreateConfiguration resolves a configuration by (name, platform).
func (t *Tx) GetOrCreateConfiguration(ctx context.Context, name string, platformID int64) (*models.Configuration, bool, error) {
	scan := func(row pgx.Row) (*models.Configuration, error) {
		var c models.Configuration
		if err := row.Scan(&c.ID, &c.Name, &c.PlatformID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("db: scan configuration: %w", err)
		}

		return &c, nil
	}

	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Configuration, error) {
			return scan(t.q.QueryRow(ctx,
				`SELECT id, name, platform_id FROM configuration WHERE name = $1 AND platform_id = $2`,
				name, platformID))
		},
		func(ctx context.Context) (*models.Configuration, error) {
			var c models.Configuration
			err := t.q.QueryRow(ctx,
				`INSERT INTO configuration (name, platform_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING RETURNING id, name, platform_id`,
				name, platformID).Scan(&c.ID, &c.Name, &c.PlatformID)
			return noRowsToNil(&c, err)
		})
}

// GetOrCreateMachine resolves a machine by canonical id.
func (t *Tx) GetOrCreateMachine(ctx context.Context, canonicalID string, configurationID int64) (*models.Machine, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Machine, error) {
			return scanMachine(t.q.QueryRow(ctx,
				`SELECT id, canonical_id, configuration_id FROM machine
				 WHERE canonical_id = $1 AND configuration_id = $2`,
				canonicalID, configurationID))
		},
		func(ctx context.Context) (*models.Machine, error) {
			var m models.Machine
			err := t.q.QueryRow(ctx,
				`INSERT INTO machine (canonical_id, configuration_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING RETURNING id, canonical_id, configuration_id`,
				canonicalID, configurationID).Scan(&m.ID, &m.CanonicalID, &m.ConfigurationID)
			return noRowsToNil(&m, err)
		})
}

// GetOrCreateKernel resolves a kernel by version.
func (t *Tx) GetOrCreateKernel(ctx context.Context, version string) (*models.Kernel, bool, error) {
	scan := func(row pgx.Row) (*models.Kernel, error) {
		var k models.Kernel
		if err := row.Scan(&k.ID, &k.Name, &k.Version, &k.Signature); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("db: scan kernel: %w", err)
		}

		return &k, nil
	}

	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Kernel, error) {
			return scan(t.q.QueryRow(ctx,
				`SELECT id, name, version, signature FROM kernel WHERE version = $1`, version))
		},
		func(ctx context.Context) (*models.Kernel, error) {
			var k models.Kernel
			err := t.q.QueryRow(ctx,
				`INSERT INTO kernel (version) VALUES ($1)
				 ON CONFLICT DO NOTHING RETURNING id, name, version, signature`,
				version).Scan(&k.ID, &k.Name, &k.Version, &k.Signature)
			return noRowsToNil(&k, err)
		})
}

// GetOrCreateBios resolves a BIOS by (firmware revision, version, vendor).
func (t *Tx) GetOrCreateBios(
	ctx context.Context, firmwareRevision *string, version string, vendorID int64) (*models.Bios, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Bios, error) {
			return scanBios(t.q.QueryRow(ctx,
				`SELECT id, release_date, firmware_revision, revision, version, vendor_id
				 FROM bios
				 WHERE firmware_revision IS NOT DISTINCT FROM $1 AND version = $2 AND vendor_id = $3`,
				firmwareRevision, version, vendorID))
		},
		func(ctx context.Context) (*models.Bios, error) {
			var b models.Bios
			err := t.q.QueryRow(ctx,
				`INSERT INTO bios (firmware_revision, version, vendor_id) VALUES ($1, $2, $3)
				 ON CONFLICT DO NOTHING
				 RETURNING id, release_date, firmware_revision, revision, version, vendor_id`,
				firmwareRevision, version, vendorID).
				Scan(&b.ID, &b.ReleaseDate, &b.FirmwareRevision, &b.Revision, &b.Version, &b.VendorID)
			return noRowsToNil(&b, err)
		})
}

// ReleaseParams is the full identity of an upstream release row.
type ReleaseParams struct {
	Codename       string
	Release        string
	ReleaseDate    *time.Time
	SupportedUntil *time.Time
	IVersion       *int
}

// GetOrCreateRelease resolves a release by its full identity.
func (t *Tx) GetOrCreateRelease(ctx context.Context, params ReleaseParams) (*models.Release, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Release, error) {
			return scanRelease(t.q.QueryRow(ctx,
				`SELECT id, codename, release, release_date, supported_until, i_version
				 FROM release
				 WHERE codename = $1 AND release = $2
				   AND release_date IS NOT DISTINCT FROM $3
				   AND supported_until IS NOT DISTINCT FROM $4
				   AND i_version IS NOT DISTINCT FROM $5`,
				params.Codename, params.Release, params.ReleaseDate, params.SupportedUntil, params.IVersion))
		},
		func(ctx context.Context) (*models.Release, error) {
			var r models.Release
			err := t.q.QueryRow(ctx,
				`INSERT INTO release (codename, release, release_date, supported_until, i_version)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT DO NOTHING
				 RETURNING id, codename, release, release_date, supported_until, i_version`,
				params.Codename, params.Release, params.ReleaseDate, params.SupportedUntil, params.IVersion).
				Scan(&r.ID, &r.Codename, &r.Release, &r.ReleaseDate, &r.SupportedUntil, &r.IVersion)
			return noRowsToNil(&r, err)
		})
}

// CertificateParams is the identity of an upstream certificate.
type CertificateParams struct {
	Name      string
	CreatedAt time.Time
	Completed *time.Time
	MachineID int64
	ReleaseID *int64
}

// GetOrCreateCertificate resolves a certificate by its full identity.
func (t *Tx) GetOrCreateCertificate(ctx context.Context, params CertificateParams) (*models.Certificate, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Certificate, error) {
			return scanCertificate(t.q.QueryRow(ctx,
				`SELECT id, name, created_at, completed, machine_id, release_id
				 FROM certificate
				 WHERE name = $1 AND created_at = $2
				   AND completed IS NOT DISTINCT FROM $3
				   AND machine_id = $4
				   AND release_id IS NOT DISTINCT FROM $5`,
				params.Name, params.CreatedAt, params.Completed, params.MachineID, params.ReleaseID))
		},
		func(ctx context.Context) (*models.Certificate, error) {
			var c models.Certificate
			err := t.q.QueryRow(ctx,
				`INSERT INTO certificate (name, created_at, completed, machine_id, release_id)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT DO NOTHING
				 RETURNING id, name, created_at, completed, machine_id, release_id`,
				params.Name, params.CreatedAt, params.Completed, params.MachineID, params.ReleaseID).
				Scan(&c.ID, &c.Name, &c.CreatedAt, &c.Completed, &c.MachineID, &c.ReleaseID)
			return noRowsToNil(&c, err)
		})
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var r models.Report
	if err := row.Scan(&r.ID, &r.Architecture, &r.KernelID, &r.BiosID, &r.CertificateID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan report: %w", err)
	}

	return &r, nil
}

// GetOrCreateReport resolves a report by its full identity.
func (t *Tx) GetOrCreateReport(
	ctx context.Context, architecture string, kernelID, biosID *int64, certificateID int64) (*models.Report, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Report, error) {
			return scanReport(t.q.QueryRow(ctx,
				`SELECT id, architecture, kernel_id, bios_id, certificate_id
				 FROM report
				 WHERE architecture = $1
				   AND kernel_id IS NOT DISTINCT FROM $2
				   AND bios_id IS NOT DISTINCT FROM $3
				   AND certificate_id = $4`,
				architecture, kernelID, biosID, certificateID))
		},
		func(ctx context.Context) (*models.Report, error) {
			var r models.Report
			err := t.q.QueryRow(ctx,
				`INSERT INTO report (architecture, kernel_id, bios_id, certificate_id)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT DO NOTHING
				 RETURNING id, architecture, kernel_id, bios_id, certificate_id`,
				architecture, kernelID, biosID, certificateID).
				Scan(&r.ID, &r.Architecture, &r.KernelID, &r.BiosID, &r.CertificateID)
			return noRowsToNil(&r, err)
		})
}

// GetOrCreateReportForCertificate returns the certificate's report, creating
// an empty one when the certificate has none yet. The device importer uses
// it to attach devices to certificates imported without report details.
func (t *Tx) GetOrCreateReportForCertificate(ctx context.Context, certificateID int64) (*models.Report, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Report, error) {
			return scanReport(t.q.QueryRow(ctx,
				`SELECT id, architecture, kernel_id, bios_id, certificate_id
				 FROM report WHERE certificate_id = $1 LIMIT 1`, certificateID))
		},
		func(ctx context.Context) (*models.Report, error) {
			var r models.Report
			err := t.q.QueryRow(ctx,
				`INSERT INTO report (architecture, certificate_id) VALUES ('', $1)
				 ON CONFLICT DO NOTHING
				 RETURNING id, architecture, kernel_id, bios_id, certificate_id`,
				certificateID).
				Scan(&r.ID, &r.Architecture, &r.KernelID, &r.BiosID, &r.CertificateID)
			return noRowsToNil(&r, err)
		})
}

// DeviceKey is the identity tuple devices are deduplicated on.
type DeviceKey struct {
	Name      string
	Version   string
	VendorID  int64
	Subsystem string
	Bus       models.BusType
	Category  models.DeviceCategory
}

// DeviceDefaults supplies the remaining columns on first insert.
type DeviceDefaults struct {
	Identifier     string
	SubproductName string
	DeviceType     string
	Codename       string
}

// GetOrCreateDevice resolves a device by its identity tuple, inserting it
// with the given defaults when absent.
func (t *Tx) GetOrCreateDevice(ctx context.Context, key DeviceKey, defaults DeviceDefaults) (*models.Device, bool, error) {
	return getOrCreate(ctx,
		func(ctx context.Context) (*models.Device, error) {
			return scanDevice(t.q.QueryRow(ctx,
				`SELECT id, identifier, name, subproduct_name, device_type, bus,
				        version, subsystem, category, codename, vendor_id
				 FROM device
				 WHERE name = $1 AND version = $2 AND vendor_id = $3
				   AND subsystem = $4 AND bus = $5 AND category = $6`,
				key.Name, key.Version, key.VendorID, key.Subsystem, string(key.Bus), string(key.Category)))
		},
		func(ctx context.Context) (*models.Device, error) {
			var d models.Device
			err := t.q.QueryRow(ctx,
				`INSERT INTO device (identifier, name, subproduct_name, device_type, bus,
				                     version, subsystem, category, codename, vendor_id)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				 ON CONFLICT DO NOTHING
				 RETURNING id, identifier, name, subproduct_name, device_type, bus,
				           version, subsystem, category, codename, vendor_id`,
				defaults.Identifier, key.Name, defaults.SubproductName, defaults.DeviceType,
				string(key.Bus), key.Version, key.Subsystem, string(key.Category),
				defaults.Codename, key.VendorID).
				Scan(&d.ID, &d.Identifier, &d.Name, &d.SubproductName, &d.DeviceType,
					&d.Bus, &d.Version, &d.Subsystem, &d.Category, &d.Codename, &d.VendorID)
			return noRowsToNil(&d, err)
		})
}

// GetOrCreateCpuID resolves a CPU-ID pattern row.
func (t *Tx) GetOrCreateCpuID(ctx context.Context, idPattern, codename string) (*models.CpuId, bool, error) {
	scan := func(row pgx.Row) (*models.CpuId, error) {
		var c models.CpuId
		if err := row.Scan(&c.ID, &c.IDPattern, &c.Codename); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("db: scan cpu id: %w", err)
		}

		return &c, nil
	}

	return getOrCreate(ctx,
		func(ctx context.Context) (*models.CpuId, error) {
			return scan(t.q.QueryRow(ctx,
				`SELECT id, id_pattern, codename FROM cpu_id WHERE id_pattern = $1 AND codename = $2`,
				idPattern, codename))
		},
		func(ctx context.Context) (*models.CpuId, error) {
			var c models.CpuId
			err := t.q.QueryRow(ctx,
				`INSERT INTO cpu_id (id_pattern, codename) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING RETURNING id, id_pattern, codename`,
				idPattern, codename).Scan(&c.ID, &c.IDPattern, &c.Codename)
			return noRowsToNil(&c, err)
		})
}

// AttachDeviceToReport links a device to a report; attaching twice is a
// no-op.
func (t *Tx) AttachDeviceToReport(ctx context.Context, deviceID, reportID int64) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO device_report_association (device_id, report_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		deviceID, reportID)
	if err != nil {
		return fmt.Errorf("db: attach device to report: %w", err)
	}

	return nil
}

// UpdateDeviceCodename sets a device's CPU codename.
func (t *Tx) UpdateDeviceCodename(ctx context.Context, deviceID int64, codename string) error {
	_, err := t.q.Exec(ctx, `UPDATE device SET codename = $1 WHERE id = $2`, codename, deviceID)
	if err != nil {
		return fmt.Errorf("db: update device codename: %w", err)
	}

	return nil
}
