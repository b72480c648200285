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

import "errors"

var (
	ErrMissingVendor       = errors.New("vendor is required")
	ErrMissingModel        = errors.New("model is required")
	ErrMissingArchitecture = errors.New("architecture is required")
)

// BoardInfo describes a motherboard as reported by the client or shaped
// into a response payload.
type BoardInfo struct {
	Manufacturer string `json:"manufacturer"`
	ProductName  string `json:"product_name"`
	Version      string `json:"version"`
}

// BiosInfo describes firmware. ReleaseDate is a pre-formatted MM/DD/YYYY
// string in responses.
type BiosInfo struct {
	Vendor           string  `json:"vendor"`
	Version          string  `json:"version"`
	Revision         *string `json:"revision,omitempty"`
	FirmwareRevision *string `json:"firmware_revision,omitempty"`
	ReleaseDate      *string `json:"release_date,omitempty"`
}

// ChassisInfo describes the machine chassis.
type ChassisInfo struct {
	ChassisType  string `json:"chassis_type"`
	Manufacturer string `json:"manufacturer"`
	SKU          string `json:"sku"`
	Version      string `json:"version"`
}

// KernelPackageInfo describes the kernel of an OS entry.
type KernelPackageInfo struct {
	Name          *string  `json:"name"`
	Version       string   `json:"version"`
	Signature     *string  `json:"signature"`
	LoadedModules []string `json:"loaded_modules"`
}

// OSInfo describes an operating system release plus its kernel.
type OSInfo struct {
	Distributor string            `json:"distributor"`
	Version     string            `json:"version"`
	Codename    string            `json:"codename"`
	Kernel      KernelPackageInfo `json:"kernel"`
}

// ProcessorInfo describes the CPU of the machine under query. Identifier
// carries the raw CPUID leaf bytes when the client could read them. It is
// declared as []int because the wire format is a JSON array of numbers,
// which encoding/json will not decode into []byte.
type ProcessorInfo struct {
	Identifier   []int  `json:"identifier"`
	Frequency    int    `json:"frequency"`
	Manufacturer string `json:"manufacturer"`
	Version      string `json:"version"`
}

// GPUInfo describes a graphics adapter.
type GPUInfo struct {
	Manufacturer string  `json:"manufacturer"`
	Version      string  `json:"version"`
	Identifier   string  `json:"identifier"`
	Codename     *string `json:"codename,omitempty"`
}

// AudioInfo describes an audio device.
type AudioInfo struct {
	Model      string `json:"model"`
	Vendor     string `json:"vendor"`
	Identifier string `json:"identifier"`
}

// VideoCaptureInfo describes a video capture device.
type VideoCaptureInfo struct {
	Model      string `json:"model"`
	Vendor     string `json:"vendor"`
	Identifier string `json:"identifier"`
}

// NetworkAdapterInfo describes a wired network adapter.
type NetworkAdapterInfo struct {
	Bus        string `json:"bus"`
	Identifier string `json:"identifier"`
	Model      string `json:"model"`
	Vendor     string `json:"vendor"`
	Capacity   int    `json:"capacity"`
}

// WirelessAdapterInfo describes a wireless network adapter.
type WirelessAdapterInfo struct {
	Model      string `json:"model"`
	Vendor     string `json:"vendor"`
	Identifier string `json:"identifier"`
}

// PCIPeripheralInfo describes an arbitrary PCI device.
type PCIPeripheralInfo struct {
	PCIID  string `json:"pci_id"`
	Name   string `json:"name"`
	Vendor string `json:"vendor"`
}

// USBPeripheralInfo describes an arbitrary USB device.
type USBPeripheralInfo struct {
	USBID  string `json:"usb_id"`
	Name   string `json:"name"`
	Vendor string `json:"vendor"`
}

// CertificationStatusRequest is the body of POST /v1/certification/status.
// The peripheral lists are accepted but not consulted by the decision
// pipeline.
type CertificationStatusRequest struct {
	Vendor         string                `json:"vendor"`
	Model          string                `json:"model"`
	Architecture   string                `json:"architecture"`
	Board          BoardInfo             `json:"board"`
	Bios           *BiosInfo             `json:"bios,omitempty"`
	OS             OSInfo                `json:"os"`
	Processor      ProcessorInfo         `json:"processor"`
	Chassis        *ChassisInfo          `json:"chassis,omitempty"`
	GPU            []GPUInfo             `json:"gpu,omitempty"`
	Audio          []AudioInfo           `json:"audio,omitempty"`
	Video          []VideoCaptureInfo    `json:"video,omitempty"`
	Network        []NetworkAdapterInfo  `json:"network,omitempty"`
	Wireless       []WirelessAdapterInfo `json:"wireless,omitempty"`
	PCIPeripherals []PCIPeripheralInfo   `json:"pci_peripherals,omitempty"`
	USBPeripherals []USBPeripheralInfo   `json:"usb_peripherals,omitempty"`
}

// Validate rejects requests missing the fields the pipeline matches on.
func (r *CertificationStatusRequest) Validate() error {
	if r.Vendor == "" {
		return ErrMissingVendor
	}

	if r.Model == "" {
		return ErrMissingModel
	}

	if r.Architecture == "" {
		return ErrMissingArchitecture
	}

	return nil
}
