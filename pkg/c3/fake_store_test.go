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
	"strings"

	"github.com/canonical/hwapi/pkg/certification"
	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/models"
)

// fakeStore runs loader callbacks against an in-memory fakeTx. It does not
// emulate rollback; skip-safety tests assert that no write happened at all.
type fakeStore struct {
	tx      *fakeTx
	failTx  error
	txCount int
}

func (s *fakeStore) WithTx(_ context.Context, fn func(tx Tx) error) error {
	s.txCount++

	if s.failTx != nil {
		return s.failTx
	}

	return fn(s.tx)
}

type attachment struct {
	deviceID int64
	reportID int64
}

type fakeTx struct {
	nextID int64

	vendors        []models.Vendor
	platforms      []models.Platform
	configurations []models.Configuration
	machines       []models.Machine
	kernels        []models.Kernel
	bioses         []models.Bios
	releases       []models.Release
	certificates   []models.Certificate
	reports        []models.Report
	devices        []models.Device
	cpuIDs         []models.CpuId

	attachments     []attachment
	codenameUpdates map[int64]string
	createdRowCount int
}

func newFakeTx() *fakeTx {
	return &fakeTx{codenameUpdates: map[int64]string{}}
}

func (f *fakeTx) id() int64 {
	f.nextID++
	f.createdRowCount++

	return f.nextID
}

func (f *fakeTx) GetMachineByCanonicalID(_ context.Context, canonicalID string) (*models.Machine, error) {
	for i := range f.machines {
		if f.machines[i].CanonicalID == canonicalID {
			return &f.machines[i], nil
		}
	}

	return nil, nil
}

func (f *fakeTx) GetCertificateByName(_ context.Context, machineID int64, name string) (*models.Certificate, error) {
	for i := range f.certificates {
		if f.certificates[i].MachineID == machineID && f.certificates[i].Name == name {
			return &f.certificates[i], nil
		}
	}

	return nil, nil
}

func (f *fakeTx) GetVendorByName(_ context.Context, name string) (*models.Vendor, error) {
	needle := strings.ToLower(certification.NormalizeVendorName(name))
	for i := range f.vendors {
		if strings.Contains(strings.ToLower(f.vendors[i].Name), needle) {
			return &f.vendors[i], nil
		}
	}

	return nil, nil
}

func (f *fakeTx) GetOrCreateVendor(_ context.Context, name string) (*models.Vendor, bool, error) {
	for i := range f.vendors {
		if f.vendors[i].Name == name {
			return &f.vendors[i], false, nil
		}
	}

	f.vendors = append(f.vendors, models.Vendor{ID: f.id(), Name: name})

	return &f.vendors[len(f.vendors)-1], true, nil
}

func (f *fakeTx) GetOrCreatePlatform(_ context.Context, name string, vendorID int64) (*models.Platform, bool, error) {
	for i := range f.platforms {
		if f.platforms[i].Name == name && f.platforms[i].VendorID == vendorID {
			return &f.platforms[i], false, nil
		}
	}

	f.platforms = append(f.platforms, models.Platform{ID: f.id(), Name: name, VendorID: vendorID})

	return &f.platforms[len(f.platforms)-1], true, nil
}

func (f *fakeTx) GetOrCreateConfiguration(_ context.Context, name string, platformID int64) (*models.Configuration, bool, error) {
	for i := range f.configurations {
		if f.configurations[i].Name == name && f.configurations[i].PlatformID == platformID {
			return &f.configurations[i], false, nil
		}
	}

	f.configurations = append(f.configurations,
		models.Configuration{ID: f.id(), Name: name, PlatformID: platformID})

	return &f.configurations[len(f.configurations)-1], true, nil
}

func (f *fakeTx) GetOrCreateMachine(_ context.Context, canonicalID string, configurationID int64) (*models.Machine, bool, error) {
	for i := range f.machines {
		if f.machines[i].CanonicalID == canonicalID {
			return &f.machines[i], false, nil
		}
	}

	f.machines = append(f.machines,
		models.Machine{ID: f.id(), CanonicalID: canonicalID, ConfigurationID: configurationID})

	return &f.machines[len(f.machines)-1], true, nil
}

func (f *fakeTx) GetOrCreateKernel(_ context.Context, version string) (*models.Kernel, bool, error) {
	for i := range f.kernels {
		if f.kernels[i].Version == version {
			return &f.kernels[i], false, nil
		}
	}

	f.kernels = append(f.kernels, models.Kernel{ID: f.id(), Version: version})

	return &f.kernels[len(f.kernels)-1], true, nil
}

func (f *fakeTx) GetOrCreateBios(
	_ context.Context, firmwareRevision *string, version string, vendorID int64) (*models.Bios, bool, error) {
	for i := range f.bioses {
		if f.bioses[i].Version == version && f.bioses[i].VendorID == vendorID &&
			equalPtr(f.bioses[i].FirmwareRevision, firmwareRevision) {
			return &f.bioses[i], false, nil
		}
	}

	f.bioses = append(f.bioses,
		models.Bios{ID: f.id(), FirmwareRevision: firmwareRevision, Version: version, VendorID: vendorID})

	return &f.bioses[len(f.bioses)-1], true, nil
}

func (f *fakeTx) GetOrCreateRelease(_ context.Context, params db.ReleaseParams) (*models.Release, bool, error) {
	for i := range f.releases {
		if f.releases[i].Codename == params.Codename && f.releases[i].Release == params.Release {
			return &f.releases[i], false, nil
		}
	}

	f.releases = append(f.releases, models.Release{
		ID:             f.id(),
		Codename:       params.Codename,
		Release:        params.Release,
		ReleaseDate:    params.ReleaseDate,
		SupportedUntil: params.SupportedUntil,
		IVersion:       params.IVersion,
	})

	return &f.releases[len(f.releases)-1], true, nil
}

func (f *fakeTx) GetOrCreateCertificate(_ context.Context, params db.CertificateParams) (*models.Certificate, bool, error) {
	for i := range f.certificates {
		if f.certificates[i].Name == params.Name && f.certificates[i].MachineID == params.MachineID {
			return &f.certificates[i], false, nil
		}
	}

	f.certificates = append(f.certificates, models.Certificate{
		ID:        f.id(),
		Name:      params.Name,
		CreatedAt: params.CreatedAt,
		Completed: params.Completed,
		MachineID: params.MachineID,
		ReleaseID: params.ReleaseID,
	})

	return &f.certificates[len(f.certificates)-1], true, nil
}

func (f *fakeTx) GetOrCreateReport(
	_ context.Context, architecture string, kernelID, biosID *int64, certificateID int64) (*models.Report, bool, error) {
	for i := range f.reports {
		if f.reports[i].CertificateID == certificateID && f.reports[i].Architecture == architecture &&
			equalPtr(f.reports[i].KernelID, kernelID) && equalPtr(f.reports[i].BiosID, biosID) {
			return &f.reports[i], false, nil
		}
	}

	f.reports = append(f.reports, models.Report{
		ID:            f.id(),
		Architecture:  architecture,
		KernelID:      kernelID,
		BiosID:        biosID,
		CertificateID: certificateID,
	})

	return &f.reports[len(f.reports)-1], true, nil
}

func (f *fakeTx) GetOrCreateReportForCertificate(_ context.Context, certificateID int64) (*models.Report, bool, error) {
	for i := range f.reports {
		if f.reports[i].CertificateID == certificateID {
			return &f.reports[i], false, nil
		}
	}

	f.reports = append(f.reports, models.Report{ID: f.id(), CertificateID: certificateID})

	return &f.reports[len(f.reports)-1], true, nil
}

func (f *fakeTx) GetOrCreateDevice(_ context.Context, key db.DeviceKey, defaults db.DeviceDefaults) (*models.Device, bool, error) {
	for i := range f.devices {
		d := &f.devices[i]
		if d.Name == key.Name && d.Version == key.Version && d.VendorID == key.VendorID &&
			d.Subsystem == key.Subsystem && d.Bus == key.Bus && d.Category == key.Category {
			return d, false, nil
		}
	}

	f.devices = append(f.devices, models.Device{
		ID:             f.id(),
		Identifier:     defaults.Identifier,
		Name:           key.Name,
		SubproductName: defaults.SubproductName,
		DeviceType:     defaults.DeviceType,
		Bus:            key.Bus,
		Version:        key.Version,
		Subsystem:      key.Subsystem,
		Category:       key.Category,
		Codename:       defaults.Codename,
		VendorID:       key.VendorID,
	})

	return &f.devices[len(f.devices)-1], true, nil
}

func (f *fakeTx) GetOrCreateCpuID(_ context.Context, idPattern, codename string) (*models.CpuId, bool, error) {
	for i := range f.cpuIDs {
		if f.cpuIDs[i].IDPattern == idPattern && f.cpuIDs[i].Codename == codename {
			return &f.cpuIDs[i], false, nil
		}
	}

	f.cpuIDs = append(f.cpuIDs, models.CpuId{ID: f.id(), IDPattern: idPattern, Codename: codename})

	return &f.cpuIDs[len(f.cpuIDs)-1], true, nil
}

func (f *fakeTx) AttachDeviceToReport(_ context.Context, deviceID, reportID int64) error {
	for _, a := range f.attachments {
		if a.deviceID == deviceID && a.reportID == reportID {
			return nil
		}
	}

	f.attachments = append(f.attachments, attachment{deviceID: deviceID, reportID: reportID})

	return nil
}

func (f *fakeTx) UpdateDeviceCodename(_ context.Context, deviceID int64, codename string) error {
	f.codenameUpdates[deviceID] = codename

	for i := range f.devices {
		if f.devices[i].ID == deviceID {
			f.devices[i].Codename = codename
		}
	}

	return nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
