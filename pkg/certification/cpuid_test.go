package certification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCPUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []int
		want string
	}{
		{"raptor lake", []int{0x71, 0x06, 0x0B}, "0xb0671"},
		{"amber lake", []int{0x71, 0x06, 0x08}, "0x80671"},
		{"zero high byte", []int{0xEA, 0x06, 0x00}, "0x006ea"},
		{"all zero", []int{0, 0, 0}, "0x00000"},
		{"extra bytes ignored", []int{0x71, 0x06, 0x0B, 0xFF, 0xFF}, "0xb0671"},
		{"values masked to bytes", []int{0x171, 0x106, 0x10B}, "0xb0671"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DecodeCPUID(tt.in))
		})
	}
}
