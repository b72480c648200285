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

// BusType identifies the bus a device instance was observed on.
type BusType string

const (
	BusPCI         BusType = "pci"
	BusUSB         BusType = "usb"
	BusDMI         BusType = "dmi"
	BusNet         BusType = "net"
	BusSerial      BusType = "serial"
	BusFirewire    BusType = "firewire"
	BusSCSI        BusType = "scsi"
	BusBlock       BusType = "block"
	BusInput       BusType = "input"
	BusBluetooth   BusType = "bluetooth"
	BusThunderbolt BusType = "thunderbolt"
)

// DeviceCategory is the coarse classification assigned by the upstream
// certification system.
type DeviceCategory string

const (
	CategoryProcessor DeviceCategory = "PROCESSOR"
	CategoryBoard     DeviceCategory = "BOARD"
	CategoryNetwork   DeviceCategory = "NETWORK"
	CategoryWireless  DeviceCategory = "WIRELESS"
	CategoryVideo     DeviceCategory = "VIDEO"
	CategoryAudio     DeviceCategory = "AUDIO"
	CategoryUSB       DeviceCategory = "USB"
	CategoryBios      DeviceCategory = "BIOS"
	CategoryChassis   DeviceCategory = "CHASSIS"
	CategoryDisk      DeviceCategory = "DISK"
	CategoryBluetooth DeviceCategory = "BLUETOOTH"
	CategoryOther     DeviceCategory = "OTHER"
)

// CertificationStatus discriminates the four response payloads.
type CertificationStatus string

const (
	StatusCertified            CertificationStatus = "Certified"
	StatusCertifiedImageExists CertificationStatus = "Certified Image Exists"
	StatusRelatedCertified     CertificationStatus = "Related Certified System Exists"
	StatusNotSeen              CertificationStatus = "Not Seen"
)
