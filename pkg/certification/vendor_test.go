package certification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVendorName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Dell Inc.", "Dell"},
		{"Dell Inc", "Dell"},
		{"Dell", "Dell"},
		{"  Lenovo  ", "Lenovo"},
		{"Incredible Systems", "redible Systems"},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeVendorName(tt.in))
		})
	}
}

func TestNormalizeVendorNameIdempotent(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Dell Inc.", "HP Inc", "ASUSTeK COMPUTER INC.", " Intel Corp. ", ""} {
		once := NormalizeVendorName(s)
		assert.Equal(t, once, NormalizeVendorName(once))
	}
}
