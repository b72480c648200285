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

	"github.com/canonical/hwapi/pkg/logger"
	"github.com/canonical/hwapi/pkg/models"
)

// unknownCodename is the codename assigned when a CPUID has no entry in the
// dictionary.
const unknownCodename = "Unknown"

// Repository is the read surface the decision pipeline needs. A *db.Session
// satisfies it; one repository serves exactly one request.
type Repository interface {
	GetVendorByName(ctx context.Context, name string) (*models.Vendor, error)
	GetVendorName(ctx context.Context, vendorID int64) (string, error)
	GetBoard(ctx context.Context, vendorName, productName string) (*models.Device, error)
	GetBiosList(ctx context.Context, vendorName, version string) ([]models.Bios, error)
	GetMachineWithSameHardwareParams(ctx context.Context, arch string, boardID int64, biosIDs []int64) (*models.Machine, error)
	GetCPUForMachine(ctx context.Context, machineID int64) (*models.Device, error)
	GetReleasesAndKernelsForMachine(ctx context.Context, machineID int64) ([]models.Release, []models.Kernel, error)
	GetReleaseObject(ctx context.Context, version, codename string) (*models.Release, error)
	GetMachineArchitecture(ctx context.Context, machineID int64) (string, error)
	GetMachineBios(ctx context.Context, machineID int64) (*models.Bios, error)
	GetCPUIDObject(ctx context.Context, cpuid string) (*models.CpuId, error)
}

// Engine classifies machine descriptions against the certification corpus.
// It holds no state between requests; the outcome is a pure function of the
// request and the store.
type Engine struct {
	log logger.Logger
}

// NewEngine builds the decision engine.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: log.WithComponent("certification")}
}

// CheckStatus walks the gate sequence: vendor, board, BIOS, related
// machine, CPU compatibility, release. The first miss in the hardware gates
// yields Not Seen; a CPU mismatch yields Related Certified System Exists; a
// release mismatch yields Certified Image Exists. Store I/O errors
// propagate unclassified.
func (e *Engine) CheckStatus(
	ctx context.Context, repo Repository, req *models.CertificationStatusRequest) (models.CertificationStatusResponse, error) {
	vendor, err := repo.GetVendorByName(ctx, req.Vendor)
	if err != nil {
		return nil, err
	}

	if vendor == nil {
		e.log.Warn().Str("vendor", req.Vendor).Msg("Failed to match vendor")
		return models.NewNotSeenResponse(), nil
	}

	board, err := repo.GetBoard(ctx, req.Board.Manufacturer, req.Board.ProductName)
	if err != nil {
		return nil, err
	}

	if board == nil {
		e.warnNotSeen(req)
		return models.NewNotSeenResponse(), nil
	}

	var biosIDs []int64

	if req.Bios != nil {
		biosList, err := repo.GetBiosList(ctx, req.Bios.Vendor, req.Bios.Version)
		if err != nil {
			return nil, err
		}

		if len(biosList) == 0 {
			e.warnNotSeen(req)
			return models.NewNotSeenResponse(), nil
		}

		biosIDs = make([]int64, 0, len(biosList))
		for i := range biosList {
			biosIDs = append(biosIDs, biosList[i].ID)
		}
	}

	machine, err := repo.GetMachineWithSameHardwareParams(ctx, req.Architecture, board.ID, biosIDs)
	if err != nil {
		return nil, err
	}

	if machine == nil {
		e.warnNotSeen(req)
		return models.NewNotSeenResponse(), nil
	}

	machineBios, err := repo.GetMachineBios(ctx, machine.ID)
	if err != nil {
		return nil, err
	}

	releases, kernels, err := repo.GetReleasesAndKernelsForMachine(ctx, machine.ID)
	if err != nil {
		return nil, err
	}

	compatible, err := e.checkCPUCompatibility(ctx, repo, machine, &req.Processor)
	if err != nil {
		return nil, err
	}

	if !compatible {
		return e.buildRelatedCertifiedResponse(ctx, repo, machine, board, machineBios, releases, kernels)
	}

	requested, err := repo.GetReleaseObject(ctx, req.OS.Version, req.OS.Codename)
	if err != nil {
		return nil, err
	}

	if requested != nil && containsRelease(releases, requested.ID) {
		return e.buildCertifiedResponse(ctx, repo, machine, board, machineBios, releases, kernels)
	}

	return e.buildCertifiedImageExistsResponse(ctx, repo, machine, board, machineBios, releases, kernels)
}

// checkCPUCompatibility decides whether the certified machine's CPU matches
// the one in the request. Without a complete CPUID the comparison falls back
// to the CPU model string.
func (e *Engine) checkCPUCompatibility(
	ctx context.Context, repo Repository, machine *models.Machine, proc *models.ProcessorInfo) (bool, error) {
	cpu, err := repo.GetCPUForMachine(ctx, machine.ID)
	if err != nil {
		return false, err
	}

	if cpu == nil {
		return false, nil
	}

	if len(proc.Identifier) < cpuidSignificantBytes {
		return cpu.Version == proc.Version, nil
	}

	cpuid := DecodeCPUID(proc.Identifier)

	match, err := repo.GetCPUIDObject(ctx, cpuid)
	if err != nil {
		return false, err
	}

	targetCodename := unknownCodename
	if match != nil {
		targetCodename = match.Codename
	}

	return cpu.Codename == targetCodename, nil
}

func containsRelease(releases []models.Release, id int64) bool {
	for i := range releases {
		if releases[i].ID == id {
			return true
		}
	}

	return false
}

// warnNotSeen emits the single triage line for hardware that missed a gate.
func (e *Engine) warnNotSeen(req *models.CertificationStatusRequest) {
	event := e.log.Warn().
		Str("vendor", req.Vendor).
		Str("model", req.Model).
		Str("board_model", req.Board.ProductName).
		Str("board_version", req.Board.Version)

	if req.Bios != nil {
		event = event.Str("bios_version", req.Bios.Version)
	}

	event.Msg("Hardware cannot be found")
}
