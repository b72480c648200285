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
	"fmt"
	"strings"

	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/models"
)

const unknownCodename = "Unknown"

// loadCertificate materializes the entity chain behind one public
// certificate: vendor, platform, configuration, machine, optional kernel and
// BIOS, release, certificate, report.
func (c *Client) loadCertificate(ctx context.Context, item *PublicCertificate) error {
	return c.store.WithTx(ctx, func(tx Tx) error {
		vendor, _, err := tx.GetOrCreateVendor(ctx, item.Vendor)
		if err != nil {
			return err
		}

		platform, _, err := tx.GetOrCreatePlatform(ctx, item.Platform, vendor.ID)
		if err != nil {
			return err
		}

		configuration, _, err := tx.GetOrCreateConfiguration(ctx, item.Configuration, platform.ID)
		if err != nil {
			return err
		}

		machine, _, err := tx.GetOrCreateMachine(ctx, item.CanonicalID, configuration.ID)
		if err != nil {
			return err
		}

		c.log.Debug().Str("vendor", vendor.Name).Str("configuration", configuration.Name).
			Str("machine", machine.CanonicalID).Msg("Imported configuration")

		var kernelID *int64

		if v := orEmpty(item.KernelVersion); v != "" {
			kernel, _, err := tx.GetOrCreateKernel(ctx, v)
			if err != nil {
				return err
			}

			kernelID = &kernel.ID
		}

		var biosID *int64

		if item.Bios != nil {
			bios, err := c.resolveBios(ctx, tx, item)
			if err != nil {
				return err
			}

			biosID = &bios.ID
		}

		release, _, err := tx.GetOrCreateRelease(ctx, db.ReleaseParams{
			Codename:       item.Release.Codename,
			Release:        strings.TrimSpace(strings.ReplaceAll(item.Release.Release, "LTS", "")),
			ReleaseDate:    item.Release.ReleaseDate.Ptr(),
			SupportedUntil: item.Release.SupportedUntil.Ptr(),
			IVersion:       &item.Release.IVersion,
		})
		if err != nil {
			return err
		}

		certificate, _, err := tx.GetOrCreateCertificate(ctx, db.CertificateParams{
			Name:      item.Name,
			CreatedAt: item.CreatedAt,
			Completed: item.Completed,
			MachineID: machine.ID,
			ReleaseID: &release.ID,
		})
		if err != nil {
			return err
		}

		_, _, err = tx.GetOrCreateReport(ctx, orEmpty(item.Architecture), kernelID, biosID, certificate.ID)

		return err
	})
}

// resolveBios finds the BIOS vendor by normalized name, falling back to
// creating it under the raw upstream name, then resolves the BIOS row. An
// empty upstream version falls back to the BIOS name.
func (c *Client) resolveBios(ctx context.Context, tx Tx, item *PublicCertificate) (*models.Bios, error) {
	vendor, err := tx.GetVendorByName(ctx, item.Bios.Vendor)
	if err != nil {
		return nil, err
	}

	if vendor == nil {
		vendor, _, err = tx.GetOrCreateVendor(ctx, item.Bios.Vendor)
		if err != nil {
			return nil, err
		}
	}

	version := item.Bios.Version
	if version == "" {
		version = item.Bios.Name
	}

	bios, _, err := tx.GetOrCreateBios(ctx, item.FirmwareRevision, version, vendor.ID)
	if err != nil {
		return nil, err
	}

	return bios, nil
}

// loadDeviceInstance attaches one observed device to the report of an
// already imported certificate. Items referencing a machine or certificate
// the corpus does not have fail before any write, so the caller can skip
// them cleanly.
func (c *Client) loadDeviceInstance(ctx context.Context, item *PublicDeviceInstance) error {
	return c.store.WithTx(ctx, func(tx Tx) error {
		machine, err := tx.GetMachineByCanonicalID(ctx, item.MachineCanonicalID)
		if err != nil {
			return err
		}

		if machine == nil {
			return fmt.Errorf("c3: machine with canonical ID %s does not exist", item.MachineCanonicalID)
		}

		certificate, err := tx.GetCertificateByName(ctx, machine.ID, item.CertificateName)
		if err != nil {
			return err
		}

		if certificate == nil {
			return fmt.Errorf("c3: certificate with name %s does not exist", item.CertificateName)
		}

		vendor, _, err := tx.GetOrCreateVendor(ctx, item.Device.Vendor)
		if err != nil {
			return err
		}

		category := models.CategoryOther
		if item.Device.Category != nil {
			category = *item.Device.Category
		}

		device, created, err := tx.GetOrCreateDevice(ctx,
			db.DeviceKey{
				Name:      orEmpty(item.Device.Name),
				Version:   orEmpty(item.Device.Version),
				VendorID:  vendor.ID,
				Subsystem: orEmpty(item.Device.Subsystem),
				Bus:       item.Device.Bus,
				Category:  category,
			},
			db.DeviceDefaults{
				Identifier:     item.Device.Identifier,
				SubproductName: orEmpty(item.Device.SubproductName),
				DeviceType:     orEmpty(item.Device.DeviceType),
				Codename:       orEmpty(item.Device.Codename),
			})
		if err != nil {
			return err
		}

		c.log.Debug().Str("name", orEmpty(item.Device.Name)).
			Str("identifier", item.Device.Identifier).Bool("created", created).Msg("Imported device")

		if device.Category == models.CategoryProcessor && item.CPUCodename != "" {
			// A known codename is never overwritten with Unknown.
			if !(item.CPUCodename == unknownCodename && device.Codename != "") {
				if err := tx.UpdateDeviceCodename(ctx, device.ID, item.CPUCodename); err != nil {
					return err
				}
			}
		}

		report, _, err := tx.GetOrCreateReportForCertificate(ctx, certificate.ID)
		if err != nil {
			return err
		}

		return tx.AttachDeviceToReport(ctx, device.ID, report.ID)
	})
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
