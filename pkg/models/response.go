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

package models

// CertificationStatusResponse is the tagged union returned by the status
// endpoint. The concrete types below serialize with their literal status
// string as the discriminant.
type CertificationStatusResponse interface {
	CertificationStatus() CertificationStatus
}

// NotSeenResponse means no part of the described hardware is known.
type NotSeenResponse struct {
	Status CertificationStatus `json:"status"`
}

// NewNotSeenResponse builds the Not Seen payload.
func NewNotSeenResponse() NotSeenResponse {
	return NotSeenResponse{Status: StatusNotSeen}
}

func (r NotSeenResponse) CertificationStatus() CertificationStatus { return r.Status }

// CertifiedResponse means the exact hardware bundle was certified for the
// requested release.
type CertifiedResponse struct {
	Status            CertificationStatus `json:"status"`
	Architecture      string              `json:"architecture"`
	Board             BoardInfo           `json:"board"`
	Bios              *BiosInfo           `json:"bios"`
	Chassis           *ChassisInfo        `json:"chassis"`
	AvailableReleases []OSInfo            `json:"available_releases"`
}

func (r CertifiedResponse) CertificationStatus() CertificationStatus { return r.Status }

// CertifiedImageExistsResponse means the hardware was certified, but for a
// different release than the one requested.
type CertifiedImageExistsResponse struct {
	Status            CertificationStatus `json:"status"`
	Architecture      string              `json:"architecture"`
	Board             BoardInfo           `json:"board"`
	Bios              *BiosInfo           `json:"bios"`
	Chassis           *ChassisInfo        `json:"chassis"`
	AvailableReleases []OSInfo            `json:"available_releases"`
}

func (r CertifiedImageExistsResponse) CertificationStatus() CertificationStatus { return r.Status }

// RelatedCertifiedSystemExistsResponse means a machine sharing the board and
// BIOS was certified, but its CPU differs from the one in the request.
type RelatedCertifiedSystemExistsResponse struct {
	Status            CertificationStatus   `json:"status"`
	Architecture      string                `json:"architecture"`
	Board             BoardInfo             `json:"board"`
	Bios              *BiosInfo             `json:"bios"`
	Chassis           *ChassisInfo          `json:"chassis"`
	GPU               []GPUInfo             `json:"gpu"`
	Audio             []AudioInfo           `json:"audio"`
	Video             []VideoCaptureInfo    `json:"video"`
	Network           []NetworkAdapterInfo  `json:"network"`
	Wireless          []WirelessAdapterInfo `json:"wireless"`
	PCIPeripherals    []PCIPeripheralInfo   `json:"pci_peripherals"`
	USBPeripherals    []USBPeripheralInfo   `json:"usb_peripherals"`
	AvailableReleases []OSInfo              `json:"available_releases"`
}

func (r RelatedCertifiedSystemExistsResponse) CertificationStatus() CertificationStatus {
	return r.Status
}
