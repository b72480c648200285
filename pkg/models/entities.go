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

// Package models holds the persisted entity graph and the wire-level DTOs
// for the certification status endpoint.
package models

import "time"

// Vendor is the root of the hardware graph. Names are stored verbatim and
// matched case-insensitively on their normalized form.
type Vendor struct {
	ID   int64
	Name string
}

// Platform is a named product line of a vendor.
type Platform struct {
	ID       int64
	Name     string
	VendorID int64
}

// Configuration is a named hardware variant of a platform.
type Configuration struct {
	ID         int64
	Name       string
	PlatformID int64
}

// Machine is a physical machine known to the certification corpus,
// identified globally by its canonical ID.
type Machine struct {
	ID              int64
	CanonicalID     string
	ConfigurationID int64
}

// Release is an Ubuntu release. The release string carries no LTS suffix.
type Release struct {
	ID             int64
	Codename       string
	Release        string
	ReleaseDate    *time.Time
	SupportedUntil *time.Time
	IVersion       *int
}

// Certificate asserts that a machine passed certification for a release.
type Certificate struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Completed *time.Time
	MachineID int64
	ReleaseID *int64
}

// Kernel describes the kernel a report was produced with.
type Kernel struct {
	ID        int64
	Name      *string
	Version   string
	Signature *string
}

// Bios is a firmware row. Rows with identical (vendor, version) may coexist
// and differ only in revision or firmware revision.
type Bios struct {
	ID               int64
	ReleaseDate      *time.Time
	FirmwareRevision *string
	Revision         *string
	Version          string
	VendorID         int64
}

// Report is a hardware snapshot tied to a certificate.
type Report struct {
	ID            int64
	Architecture  string
	KernelID      *int64
	BiosID        *int64
	CertificateID int64
}

// Device is a single hardware component attached to reports.
type Device struct {
	ID             int64
	Identifier     string
	Name           string
	SubproductName string
	DeviceType     string
	Bus            BusType
	Version        string
	Subsystem      string
	Category       DeviceCategory
	Codename       string
	VendorID       int64
}

// CpuId maps a CPUID hex fragment to a CPU codename. Patterns are matched
// by substring against the decoded CPUID, not by equality.
type CpuId struct {
	ID        int64
	IDPattern string
	Codename  string
}
