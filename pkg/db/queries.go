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
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/canonical/hwapi/pkg/certification"
	"github.com/canonical/hwapi/pkg/models"
)

const (
	selectVendorByNameSQL = `
SELECT id, name FROM vendor
WHERE name ILIKE '%' || $1 || '%'
LIMIT 1`

	selectVendorNameSQL = `
SELECT name FROM vendor WHERE id = $1`

	selectBoardSQL = `
SELECT d.id, d.identifier, d.name, d.subproduct_name, d.device_type, d.bus,
       d.version, d.subsystem, d.category, d.codename, d.vendor_id
FROM device d
JOIN vendor v ON v.id = d.vendor_id
WHERE v.name ILIKE $1
  AND d.name ILIKE $2
  AND d.category = ANY($3)
LIMIT 1`

	selectBiosListSQL = `
SELECT b.id, b.release_date, b.firmware_revision, b.revision, b.version, b.vendor_id
FROM bios b
JOIN vendor v ON v.id = b.vendor_id
WHERE v.name ILIKE '%' || $1 || '%'
  AND b.version ILIKE $2`

	selectMachineSameHardwareSQL = `
SELECT DISTINCT m.id, m.canonical_id, m.configuration_id
FROM machine m
JOIN certificate c ON c.machine_id = m.id
JOIN report r ON r.certificate_id = c.id
JOIN device_report_association dra ON dra.report_id = r.id
WHERE dra.device_id = $1
  AND r.architecture = $2
  AND %s
LIMIT 1`

	selectCPUForMachineSQL = `
SELECT d.id, d.identifier, d.name, d.subproduct_name, d.device_type, d.bus,
       d.version, d.subsystem, d.category, d.codename, d.vendor_id
FROM machine m
JOIN certificate c ON c.machine_id = m.id
JOIN report r ON r.certificate_id = c.id
JOIN device_report_association dra ON dra.report_id = r.id
JOIN device d ON d.id = dra.device_id
WHERE m.id = $1
  AND d.category = $2
ORDER BY c.created_at DESC
LIMIT 1`

	selectReleasesAndKernelsSQL = `
SELECT DISTINCT rel.id, rel.codename, rel.release, rel.release_date, rel.supported_until, rel.i_version,
       k.id, k.name, k.version, k.signature
FROM certificate c
JOIN report r ON r.certificate_id = c.id
JOIN release rel ON rel.id = c.release_id
JOIN kernel k ON k.id = r.kernel_id
WHERE c.machine_id = $1`

	selectReleaseSQL = `
SELECT id, codename, release, release_date, supported_until, i_version
FROM release
WHERE release = $1 AND codename = $2
LIMIT 1`

	selectMachineArchitectureSQL = `
SELECT r.architecture
FROM report r
JOIN certificate c ON c.id = r.certificate_id
WHERE c.machine_id = $1
ORDER BY c.created_at DESC
LIMIT 1`

	selectMachineBiosSQL = `
SELECT b.id, b.release_date, b.firmware_revision, b.revision, b.version, b.vendor_id
FROM bios b
JOIN report r ON r.bios_id = b.id
JOIN certificate c ON c.id = r.certificate_id
WHERE c.machine_id = $1
ORDER BY c.created_at DESC
LIMIT 1`

	selectMachineByCanonicalIDSQL = `
SELECT id, canonical_id, configuration_id
FROM machine
WHERE canonical_id = $1
LIMIT 1`

	selectCertificateByNameSQL = `
SELECT id, name, created_at, completed, machine_id, release_id
FROM certificate
WHERE name = $1 AND machine_id = $2
LIMIT 1`

	selectAllCPUIDsSQL = `
SELECT id, id_pattern, codename FROM cpu_id`
)

func scanVendor(row pgx.Row) (*models.Vendor, error) {
	var v models.Vendor
	if err := row.Scan(&v.ID, &v.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan vendor: %w", err)
	}

	return &v, nil
}

func scanDevice(row pgx.Row) (*models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.Identifier, &d.Name, &d.SubproductName, &d.DeviceType,
		&d.Bus, &d.Version, &d.Subsystem, &d.Category, &d.Codename, &d.VendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan device: %w", err)
	}

	return &d, nil
}

func scanBios(row pgx.Row) (*models.Bios, error) {
	var b models.Bios
	err := row.Scan(&b.ID, &b.ReleaseDate, &b.FirmwareRevision, &b.Revision, &b.Version, &b.VendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan bios: %w", err)
	}

	return &b, nil
}

func scanMachine(row pgx.Row) (*models.Machine, error) {
	var m models.Machine
	if err := row.Scan(&m.ID, &m.CanonicalID, &m.ConfigurationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan machine: %w", err)
	}

	return &m, nil
}

func scanRelease(row pgx.Row) (*models.Release, error) {
	var r models.Release
	err := row.Scan(&r.ID, &r.Codename, &r.Release, &r.ReleaseDate, &r.SupportedUntil, &r.IVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan release: %w", err)
	}

	return &r, nil
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.Completed, &c.MachineID, &c.ReleaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("db: scan certificate: %w", err)
	}

	return &c, nil
}

func getVendorByName(ctx context.Context, q querier, name string) (*models.Vendor, error) {
	normalized := certification.NormalizeVendorName(name)
	return scanVendor(q.QueryRow(ctx, selectVendorByNameSQL, normalized))
}

func getMachineByCanonicalID(ctx context.Context, q querier, canonicalID string) (*models.Machine, error) {
	return scanMachine(q.QueryRow(ctx, selectMachineByCanonicalIDSQL, canonicalID))
}

func getCertificateByName(ctx context.Context, q querier, machineID int64, name string) (*models.Certificate, error) {
	return scanCertificate(q.QueryRow(ctx, selectCertificateByNameSQL, name, machineID))
}

// GetVendorByName matches a vendor by normalized name, case-insensitively.
func (s *Session) GetVendorByName(ctx context.Context, name string) (*models.Vendor, error) {
	return getVendorByName(ctx, s.q, name)
}

// GetVendorName resolves a vendor's stored name by id.
func (s *Session) GetVendorName(ctx context.Context, vendorID int64) (string, error) {
	var name string
	if err := s.q.QueryRow(ctx, selectVendorNameSQL, vendorID).Scan(&name); err != nil {
		return "", fmt.Errorf("db: vendor name: %w", err)
	}

	return name, nil
}

// GetBoard finds a BOARD or OTHER device whose vendor and product name match
// the request, case-insensitively.
func (s *Session) GetBoard(ctx context.Context, vendorName, productName string) (*models.Device, error) {
	normalized := certification.NormalizeVendorName(vendorName)
	categories := []string{string(models.CategoryBoard), string(models.CategoryOther)}

	return scanDevice(s.q.QueryRow(ctx, selectBoardSQL, normalized, productName, categories))
}

// GetBiosList returns every BIOS row matching (vendor, version). Rows
// differing only by revision all qualify.
func (s *Session) GetBiosList(ctx context.Context, vendorName, version string) ([]models.Bios, error) {
	normalized := certification.NormalizeVendorName(vendorName)

	rows, err := s.q.Query(ctx, selectBiosListSQL, normalized, version)
	if err != nil {
		return nil, fmt.Errorf("db: bios list: %w", err)
	}
	defer rows.Close()

	var list []models.Bios

	for rows.Next() {
		var b models.Bios
		if err := rows.Scan(&b.ID, &b.ReleaseDate, &b.FirmwareRevision, &b.Revision, &b.Version, &b.VendorID); err != nil {
			return nil, fmt.Errorf("db: scan bios row: %w", err)
		}

		list = append(list, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterate bios rows: %w", err)
	}

	return list, nil
}

// GetMachineWithSameHardwareParams traverses machine → certificate → report
// → device and returns the first machine whose reports carry the given
// board, architecture, and one of the BIOS ids. An empty biosIDs slice
// requires reports without a BIOS.
func (s *Session) GetMachineWithSameHardwareParams(
	ctx context.Context, arch string, boardID int64, biosIDs []int64) (*models.Machine, error) {
	var (
		clause string
		args   []any
	)

	args = []any{boardID, arch}

	if len(biosIDs) > 0 {
		clause = "r.bios_id = ANY($3)"
		args = append(args, biosIDs)
	} else {
		clause = "r.bios_id IS NULL"
	}

	query := fmt.Sprintf(selectMachineSameHardwareSQL, clause)

	return scanMachine(s.q.QueryRow(ctx, query, args...))
}

// GetCPUForMachine returns the PROCESSOR device from the machine's most
// recent certificate.
func (s *Session) GetCPUForMachine(ctx context.Context, machineID int64) (*models.Device, error) {
	return scanDevice(s.q.QueryRow(ctx, selectCPUForMachineSQL, machineID, string(models.CategoryProcessor)))
}

// GetReleasesAndKernelsForMachine returns the distinct (release, kernel)
// pairs across the machine's reports, index-aligned.
func (s *Session) GetReleasesAndKernelsForMachine(
	ctx context.Context, machineID int64) ([]models.Release, []models.Kernel, error) {
	rows, err := s.q.Query(ctx, selectReleasesAndKernelsSQL, machineID)
	if err != nil {
		return nil, nil, fmt.Errorf("db: releases and kernels: %w", err)
	}
	defer rows.Close()

	var (
		releases []models.Release
		kernels  []models.Kernel
	)

	for rows.Next() {
		var (
			r models.Release
			k models.Kernel
		)

		err := rows.Scan(&r.ID, &r.Codename, &r.Release, &r.ReleaseDate, &r.SupportedUntil, &r.IVersion,
			&k.ID, &k.Name, &k.Version, &k.Signature)
		if err != nil {
			return nil, nil, fmt.Errorf("db: scan release/kernel row: %w", err)
		}

		releases = append(releases, r)
		kernels = append(kernels, k)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("db: iterate release/kernel rows: %w", err)
	}

	return releases, kernels, nil
}

// GetReleaseObject is an exact-match release lookup.
func (s *Session) GetReleaseObject(ctx context.Context, version, codename string) (*models.Release, error) {
	return scanRelease(s.q.QueryRow(ctx, selectReleaseSQL, version, codename))
}

// GetMachineArchitecture returns the architecture recorded by the latest
// report of the machine's latest certificate, or "" when none exists.
func (s *Session) GetMachineArchitecture(ctx context.Context, machineID int64) (string, error) {
	var arch string
	if err := s.q.QueryRow(ctx, selectMachineArchitectureSQL, machineID).Scan(&arch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("db: machine architecture: %w", err)
	}

	return arch, nil
}

// GetMachineBios returns the BIOS attached to the machine's most recent
// certified report, if any.
func (s *Session) GetMachineBios(ctx context.Context, machineID int64) (*models.Bios, error) {
	return scanBios(s.q.QueryRow(ctx, selectMachineBiosSQL, machineID))
}

// GetCPUIDObject scans all stored CPU-ID rows for one whose pattern is a
// substring of cpuid. Patterns are short hex fragments, so a map lookup
// cannot replace the scan.
func (s *Session) GetCPUIDObject(ctx context.Context, cpuid string) (*models.CpuId, error) {
	rows, err := s.q.Query(ctx, selectAllCPUIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("db: cpu ids: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(cpuid)

	for rows.Next() {
		var c models.CpuId
		if err := rows.Scan(&c.ID, &c.IDPattern, &c.Codename); err != nil {
			return nil, fmt.Errorf("db: scan cpu id row: %w", err)
		}

		if strings.Contains(needle, strings.ToLower(c.IDPattern)) {
			return &c, nil
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterate cpu id rows: %w", err)
	}

	return nil, nil
}
