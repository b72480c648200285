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
	"fmt"
	"time"

	"github.com/canonical/hwapi/pkg/models"
)

const dateLayout = "2006-01-02"

// Date decodes the upstream's date-only fields (YYYY-MM-DD).
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}

	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("c3: date is not a JSON string: %s", s)
	}

	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("c3: parse date: %w", err)
	}

	d.Time = t

	return nil
}

// Ptr returns the date as *time.Time, nil when the zero value.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}

	t := d.Time

	return &t
}

// ReleaseInfo is the release block embedded in a public certificate.
type ReleaseInfo struct {
	Codename       string `json:"codename"`
	Release        string `json:"release"`
	ReleaseDate    Date   `json:"release_date"`
	SupportedUntil Date   `json:"supported_until"`
	IVersion       int    `json:"i_version"`
}

// BiosInfo is the BIOS block embedded in a public certificate.
type BiosInfo struct {
	Name         string `json:"name"`
	Vendor       string `json:"vendor"`
	Version      string `json:"version"`
	FirmwareType string `json:"firmware_type"`
}

// DeviceInfo describes one device observed during certification testing.
type DeviceInfo struct {
	Name           *string                `json:"name"`
	SubproductName *string                `json:"subproduct_name"`
	Vendor         string                 `json:"vendor"`
	DeviceType     *string                `json:"device_type"`
	Bus            models.BusType         `json:"bus"`
	Identifier     string                 `json:"identifier"`
	Subsystem      *string                `json:"subsystem"`
	Version        *string                `json:"version"`
	Category       *models.DeviceCategory `json:"category"`
	Codename       *string                `json:"codename"`
}

// PublicCertificate is one item of the public-certificates listing.
type PublicCertificate struct {
	CanonicalID      string      `json:"canonical_id"`
	Vendor           string      `json:"vendor"`
	Platform         string      `json:"platform"`
	Configuration    string      `json:"configuration"`
	CreatedAt        time.Time   `json:"created_at"`
	Completed        *time.Time  `json:"completed"`
	Name             string      `json:"name"`
	Release          ReleaseInfo `json:"release"`
	Architecture     *string     `json:"architecture"`
	KernelVersion    *string     `json:"kernel_version"`
	Bios             *BiosInfo   `json:"bios"`
	FirmwareRevision *string     `json:"firmware_revision"`
}

// PublicDeviceInstance is one item of the public-device-instances listing.
// It references its machine and certificate by the upstream business keys.
type PublicDeviceInstance struct {
	MachineCanonicalID string     `json:"machine_canonical_id"`
	CertificateName    string     `json:"certificate_name"`
	Device             DeviceInfo `json:"device"`
	DriverName         string     `json:"driver_name"`
	CPUCodename        string     `json:"cpu_codename"`
}

// page is the upstream's limit/offset pagination envelope. Next carries the
// full URL of the following page, nil on the last one.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
