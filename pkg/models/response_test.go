package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusDiscriminantsAreLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp CertificationStatusResponse
		want string
	}{
		{"not seen", NewNotSeenResponse(), "Not Seen"},
		{"certified", CertifiedResponse{Status: StatusCertified}, "Certified"},
		{"image exists", CertifiedImageExistsResponse{Status: StatusCertifiedImageExists}, "Certified Image Exists"},
		{"related", RelatedCertifiedSystemExistsResponse{Status: StatusRelatedCertified}, "Related Certified System Exists"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := json.Marshal(tt.resp)
			require.NoError(t, err)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, tt.want, decoded["status"])
		})
	}
}

func TestCertifiedResponseShape(t *testing.T) {
	t.Parallel()

	sig := "0000000"
	resp := CertifiedResponse{
		Status:       StatusCertified,
		Architecture: "amd64",
		Board:        BoardInfo{Manufacturer: "Dell", ProductName: "0K240Y", Version: "A01"},
		AvailableReleases: []OSInfo{{
			Distributor: "Ubuntu",
			Version:     "22.04",
			Codename:    "jammy",
			Kernel: KernelPackageInfo{
				Version:       "5.15.0-71-generic",
				Signature:     &sig,
				LoadedModules: []string{},
			},
		}},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// Nullable fields are emitted explicitly, not omitted.
	assert.Contains(t, decoded, "bios")
	assert.Nil(t, decoded["bios"])
	assert.Contains(t, decoded, "chassis")
	assert.Nil(t, decoded["chassis"])

	releases, ok := decoded["available_releases"].([]any)
	require.True(t, ok)
	require.Len(t, releases, 1)

	release, ok := releases[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ubuntu", release["distributor"])

	kernel, ok := release["kernel"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, kernel["loaded_modules"])
	assert.Nil(t, kernel["name"])
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()

	req := CertificationStatusRequest{Model: "XPS", Architecture: "amd64"}
	assert.ErrorIs(t, req.Validate(), ErrMissingVendor)

	req.Vendor = "Dell"
	req.Model = ""
	assert.ErrorIs(t, req.Validate(), ErrMissingModel)

	req.Model = "XPS"
	req.Architecture = ""
	assert.ErrorIs(t, req.Validate(), ErrMissingArchitecture)

	req.Architecture = "amd64"
	assert.NoError(t, req.Validate())
}

func TestProcessorIdentifierDecodesFromNumberArray(t *testing.T) {
	t.Parallel()

	var req CertificationStatusRequest

	body := `{"vendor":"Dell","model":"XPS","architecture":"amd64",
		"board":{"manufacturer":"Dell","product_name":"0K240Y","version":"A00"},
		"os":{"distributor":"Ubuntu","version":"22.04","codename":"jammy",
			"kernel":{"name":null,"version":"5.15","signature":null}},
		"processor":{"identifier":[113,6,11],"frequency":1800,"manufacturer":"Intel Corp.","version":"i5-7300U"}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, []int{0x71, 0x06, 0x0B}, req.Processor.Identifier)
}
