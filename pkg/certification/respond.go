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

package certification

import (
	"context"

	"github.com/canonical/hwapi/pkg/models"
)

const (
	distributorUbuntu = "Ubuntu"

	// biosDateLayout is %m/%d/%Y; test fixtures elsewhere show ISO dates,
	// but the response contract uses the US form.
	biosDateLayout = "01/02/2006"
)

// payload carries the fields shared by the three non-NotSeen responses.
type payload struct {
	architecture      string
	board             models.BoardInfo
	bios              *models.BiosInfo
	availableReleases []models.OSInfo
}

func (e *Engine) buildPayload(
	ctx context.Context,
	repo Repository,
	machine *models.Machine,
	board *models.Device,
	bios *models.Bios,
	releases []models.Release,
	kernels []models.Kernel,
) (*payload, error) {
	architecture, err := repo.GetMachineArchitecture(ctx, machine.ID)
	if err != nil {
		return nil, err
	}

	boardVendor, err := repo.GetVendorName(ctx, board.VendorID)
	if err != nil {
		return nil, err
	}

	p := &payload{
		architecture: architecture,
		board: models.BoardInfo{
			Manufacturer: boardVendor,
			ProductName:  board.Name,
			Version:      board.Version,
		},
		availableReleases: make([]models.OSInfo, 0, len(releases)),
	}

	if bios != nil {
		biosVendor, err := repo.GetVendorName(ctx, bios.VendorID)
		if err != nil {
			return nil, err
		}

		info := &models.BiosInfo{
			Vendor:           biosVendor,
			Version:          bios.Version,
			Revision:         bios.Revision,
			FirmwareRevision: bios.FirmwareRevision,
		}

		if bios.ReleaseDate != nil {
			formatted := bios.ReleaseDate.Format(biosDateLayout)
			info.ReleaseDate = &formatted
		}

		p.bios = info
	}

	for i := range releases {
		p.availableReleases = append(p.availableReleases, models.OSInfo{
			Distributor: distributorUbuntu,
			Version:     releases[i].Release,
			Codename:    releases[i].Codename,
			Kernel: models.KernelPackageInfo{
				Name:          kernels[i].Name,
				Version:       kernels[i].Version,
				Signature:     kernels[i].Signature,
				LoadedModules: []string{},
			},
		})
	}

	return p, nil
}

func (e *Engine) buildCertifiedResponse(
	ctx context.Context, repo Repository, machine *models.Machine, board *models.Device,
	bios *models.Bios, releases []models.Release, kernels []models.Kernel,
) (models.CertificationStatusResponse, error) {
	p, err := e.buildPayload(ctx, repo, machine, board, bios, releases, kernels)
	if err != nil {
		return nil, err
	}

	return models.CertifiedResponse{
		Status:            models.StatusCertified,
		Architecture:      p.architecture,
		Board:             p.board,
		Bios:              p.bios,
		AvailableReleases: p.availableReleases,
	}, nil
}

func (e *Engine) buildCertifiedImageExistsResponse(
	ctx context.Context, repo Repository, machine *models.Machine, board *models.Device,
	bios *models.Bios, releases []models.Release, kernels []models.Kernel,
) (models.CertificationStatusResponse, error) {
	p, err := e.buildPayload(ctx, repo, machine, board, bios, releases, kernels)
	if err != nil {
		return nil, err
	}

	return models.CertifiedImageExistsResponse{
		Status:            models.StatusCertifiedImageExists,
		Architecture:      p.architecture,
		Board:             p.board,
		Bios:              p.bios,
		AvailableReleases: p.availableReleases,
	}, nil
}

func (e *Engine) buildRelatedCertifiedResponse(
	ctx context.Context, repo Repository, machine *models.Machine, board *models.Device,
	bios *models.Bios, releases []models.Release, kernels []models.Kernel,
) (models.CertificationStatusResponse, error) {
	p, err := e.buildPayload(ctx, repo, machine, board, bios, releases, kernels)
	if err != nil {
		return nil, err
	}

	// The matched component lists beyond the board are not populated yet,
	// only the board itself participates in matching.
	return models.RelatedCertifiedSystemExistsResponse{
		Status:            models.StatusRelatedCertified,
		Architecture:      p.architecture,
		Board:             p.board,
		Bios:              p.bios,
		PCIPeripherals:    []models.PCIPeripheralInfo{},
		USBPeripherals:    []models.USBPeripheralInfo{},
		AvailableReleases: p.availableReleases,
	}, nil
}
