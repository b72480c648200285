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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/hwapi/pkg/logger"
	"github.com/canonical/hwapi/pkg/models"
)

func newTestClient(t *testing.T, tx *fakeTx) (*Client, *fakeStore) {
	t.Helper()

	store := &fakeStore{tx: tx}
	c := NewClient(DefaultBaseURL, store, logger.NewTestLogger())
	c.delay = func(int) time.Duration { return 0 }

	return c, store
}

func strPtr(s string) *string { return &s }

func certificateFixture() *PublicCertificate {
	created := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	completed := created.Add(48 * time.Hour)

	return &PublicCertificate{
		CanonicalID:   "202401-33265",
		Vendor:        "Dell",
		Platform:      "Precision 3680",
		Configuration: "Precision 3680 (i7)",
		CreatedAt:     created,
		Completed:     &completed,
		Name:          "2401-33265",
		Release: ReleaseInfo{
			Codename:       "noble",
			Release:        "24.04 LTS",
			ReleaseDate:    Date{time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC)},
			SupportedUntil: Date{time.Date(2029, 4, 25, 0, 0, 0, 0, time.UTC)},
			IVersion:       2404,
		},
		Architecture:     strPtr("amd64"),
		KernelVersion:    strPtr("6.8.0-31-generic"),
		Bios:             &BiosInfo{Name: "1.2.3", Vendor: "Dell Inc.", Version: "1.2.3", FirmwareType: "UEFI"},
		FirmwareRevision: strPtr("1.2"),
	}
}

func TestLoadCertificateCreatesEntityChain(t *testing.T) {
	tx := newFakeTx()
	c, _ := newTestClient(t, tx)

	require.NoError(t, c.loadCertificate(context.Background(), certificateFixture()))

	require.Len(t, tx.machines, 1)
	assert.Equal(t, "202401-33265", tx.machines[0].CanonicalID)

	require.Len(t, tx.platforms, 1)
	assert.Equal(t, "Precision 3680", tx.platforms[0].Name)

	require.Len(t, tx.kernels, 1)
	assert.Equal(t, "6.8.0-31-generic", tx.kernels[0].Version)

	require.Len(t, tx.releases, 1)
	assert.Equal(t, "24.04", tx.releases[0].Release, "trailing LTS token is stripped")
	assert.Equal(t, "noble", tx.releases[0].Codename)

	require.Len(t, tx.certificates, 1)
	assert.Equal(t, "2401-33265", tx.certificates[0].Name)
	require.NotNil(t, tx.certificates[0].ReleaseID)
	assert.Equal(t, tx.releases[0].ID, *tx.certificates[0].ReleaseID)

	require.Len(t, tx.reports, 1)
	assert.Equal(t, "amd64", tx.reports[0].Architecture)
	require.NotNil(t, tx.reports[0].KernelID)
	require.NotNil(t, tx.reports[0].BiosID)
	assert.Equal(t, tx.bioses[0].ID, *tx.reports[0].BiosID)
}

func TestLoadCertificateWithoutKernelOrBios(t *testing.T) {
	tx := newFakeTx()
	c, _ := newTestClient(t, tx)

	item := certificateFixture()
	item.KernelVersion = nil
	item.Bios = nil
	item.Architecture = nil

	require.NoError(t, c.loadCertificate(context.Background(), item))

	assert.Empty(t, tx.kernels)
	assert.Empty(t, tx.bioses)
	require.Len(t, tx.reports, 1)
	assert.Nil(t, tx.reports[0].KernelID)
	assert.Nil(t, tx.reports[0].BiosID)
	assert.Equal(t, "", tx.reports[0].Architecture)
}

func TestLoadCertificateBiosVersionFallsBackToName(t *testing.T) {
	tx := newFakeTx()
	c, _ := newTestClient(t, tx)

	item := certificateFixture()
	item.Bios.Version = ""
	item.Bios.Name = "A08"

	require.NoError(t, c.loadCertificate(context.Background(), item))

	require.Len(t, tx.bioses, 1)
	assert.Equal(t, "A08", tx.bioses[0].Version)
}

func TestLoadCertificateBiosVendorMatchesNormalized(t *testing.T) {
	tx := newFakeTx()
	// The machine vendor row exists already under the bare name; the BIOS
	// block spells it with the Inc. suffix.
	tx.vendors = append(tx.vendors, models.Vendor{ID: 1, Name: "Dell"})
	tx.nextID = 1

	c, _ := newTestClient(t, tx)

	require.NoError(t, c.loadCertificate(context.Background(), certificateFixture()))

	require.Len(t, tx.vendors, 1, "no duplicate vendor for the BIOS spelling")
	assert.Equal(t, int64(1), tx.bioses[0].VendorID)
}

func TestLoadCertificateBiosVendorCreatedWhenUnknown(t *testing.T) {
	tx := newFakeTx()
	c, _ := newTestClient(t, tx)

	item := certificateFixture()
	item.Bios.Vendor = "American Megatrends Inc."

	require.NoError(t, c.loadCertificate(context.Background(), item))

	names := make([]string, 0, len(tx.vendors))
	for _, v := range tx.vendors {
		names = append(names, v.Name)
	}

	assert.Contains(t, names, "Dell")
	assert.Contains(t, names, "American Megatrends Inc.")
}

func deviceInstanceFixture() *PublicDeviceInstance {
	return &PublicDeviceInstance{
		MachineCanonicalID: "202401-33265",
		CertificateName:    "2401-33265",
		Device: DeviceInfo{
			Name:       strPtr("Core i7-14700"),
			Vendor:     "Intel Corp.",
			DeviceType: strPtr("processor"),
			Bus:        models.BusDMI,
			Identifier: "dmi:intel-corp:core-i7-14700",
			Subsystem:  strPtr(""),
			Version:    strPtr("14700"),
			Category:   categoryPtr(models.CategoryProcessor),
		},
		DriverName:  "",
		CPUCodename: "Raptor Lake",
	}
}

func categoryPtr(c models.DeviceCategory) *models.DeviceCategory { return &c }

// seedMachineAndCertificate installs the rows a device item references.
func seedMachineAndCertificate(tx *fakeTx) {
	tx.machines = append(tx.machines, models.Machine{ID: 1, CanonicalID: "202401-33265", ConfigurationID: 1})
	tx.certificates = append(tx.certificates, models.Certificate{ID: 2, Name: "2401-33265", MachineID: 1})
	tx.nextID = 10
}

func TestLoadDeviceInstanceAttachesDevice(t *testing.T) {
	tx := newFakeTx()
	seedMachineAndCertificate(tx)
	c, _ := newTestClient(t, tx)

	require.NoError(t, c.loadDeviceInstance(context.Background(), deviceInstanceFixture()))

	require.Len(t, tx.devices, 1)
	assert.Equal(t, "Core i7-14700", tx.devices[0].Name)
	assert.Equal(t, models.CategoryProcessor, tx.devices[0].Category)
	assert.Equal(t, "Raptor Lake", tx.devices[0].Codename)

	require.Len(t, tx.reports, 1, "an empty report is created for the certificate")
	assert.Equal(t, int64(2), tx.reports[0].CertificateID)

	require.Len(t, tx.attachments, 1)
	assert.Equal(t, tx.devices[0].ID, tx.attachments[0].deviceID)
	assert.Equal(t, tx.reports[0].ID, tx.attachments[0].reportID)
}

func TestLoadDeviceInstanceDefaultsCategoryToOther(t *testing.T) {
	tx := newFakeTx()
	seedMachineAndCertificate(tx)
	c, _ := newTestClient(t, tx)

	item := deviceInstanceFixture()
	item.Device.Category = nil
	item.CPUCodename = ""

	require.NoError(t, c.loadDeviceInstance(context.Background(), item))

	require.Len(t, tx.devices, 1)
	assert.Equal(t, models.CategoryOther, tx.devices[0].Category)
	assert.Empty(t, tx.codenameUpdates)
}

func TestLoadDeviceInstanceKeepsKnownCodenameOverUnknown(t *testing.T) {
	tx := newFakeTx()
	seedMachineAndCertificate(tx)
	tx.vendors = append(tx.vendors, models.Vendor{ID: 3, Name: "Intel Corp."})
	tx.devices = append(tx.devices, models.Device{
		ID:       5,
		Name:     "Core i7-14700",
		VendorID: 3,
		Version:  "14700",
		Bus:      models.BusDMI,
		Category: models.CategoryProcessor,
		Codename: "Raptor Lake",
	})

	c, _ := newTestClient(t, tx)

	item := deviceInstanceFixture()
	item.CPUCodename = unknownCodename

	require.NoError(t, c.loadDeviceInstance(context.Background(), item))
	assert.Equal(t, "Raptor Lake", tx.devices[0].Codename)
	assert.Empty(t, tx.codenameUpdates)
}

func TestLoadDeviceInstanceUnknownMachineWritesNothing(t *testing.T) {
	tx := newFakeTx()
	c, _ := newTestClient(t, tx)

	err := c.loadDeviceInstance(context.Background(), deviceInstanceFixture())

	require.Error(t, err)
	assert.ErrorContains(t, err, "202401-33265")
	assert.Zero(t, tx.createdRowCount)
}

func TestLoadDeviceInstanceUnknownCertificateWritesNothing(t *testing.T) {
	tx := newFakeTx()
	tx.machines = append(tx.machines, models.Machine{ID: 1, CanonicalID: "202401-33265"})
	c, _ := newTestClient(t, tx)

	err := c.loadDeviceInstance(context.Background(), deviceInstanceFixture())

	require.Error(t, err)
	assert.ErrorContains(t, err, "2401-33265")
	assert.Zero(t, tx.createdRowCount)
}
