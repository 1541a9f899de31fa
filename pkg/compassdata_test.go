package evb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardChannelUUIDRoundTrip(t *testing.T) {
	seen := make(map[uint32]struct{})
	for board := uint32(0); board < 64; board++ {
		for channel := uint32(0); channel < 64; channel++ {
			uuid := BoardChannelUUID(board, channel)
			_, dup := seen[uuid]
			require.False(t, dup, "pairing id %d for (%d, %d) not unique", uuid, board, channel)
			seen[uuid] = struct{}{}

			b, c := DecomposeUUID(uuid)
			require.Equal(t, board, b)
			require.Equal(t, channel, c)
		}
	}
}

func TestBoardChannelUUIDLargeValues(t *testing.T) {
	for _, pair := range [][2]uint32{{0, 0}, {9999, 0}, {0, 9999}, {9999, 9999}, {1234, 5678}} {
		uuid := BoardChannelUUID(pair[0], pair[1])
		b, c := DecomposeUUID(uuid)
		assert.Equal(t, pair[0], b)
		assert.Equal(t, pair[1], c)
	}
}

func TestNewHitTimestampConversion(t *testing.T) {
	raw := RawHit{Board: 1, Channel: 2, Timestamp: 2_000_000, Energy: 100, EnergyShort: 50}
	hit := NewHit(&raw, nil)

	assert.Equal(t, BoardChannelUUID(1, 2), hit.UUID)
	// Raw ticks are picosecond scale; 2e6 ticks = 2000 ns.
	assert.Equal(t, 2000.0, hit.Timestamp)

	// Energies carry a [0,1) dither on top of the ADC value.
	assert.GreaterOrEqual(t, hit.Energy, 100.0)
	assert.Less(t, hit.Energy, 101.0)
	assert.GreaterOrEqual(t, hit.EnergyShort, 50.0)
	assert.Less(t, hit.EnergyShort, 51.0)
}

func TestNewHitAppliesTimeShift(t *testing.T) {
	shifts := NewShiftMap([]ShiftEntry{{Board: 1, Channel: 2, TimeShift: -35.5}})
	raw := RawHit{Board: 1, Channel: 2, Timestamp: 2_000_000}
	hit := NewHit(&raw, shifts)
	assert.Equal(t, 2000.0-35.5, hit.Timestamp)

	// Channels without an entry shift by zero.
	other := RawHit{Board: 1, Channel: 3, Timestamp: 2_000_000}
	assert.Equal(t, 2000.0, NewHit(&other, shifts).Timestamp)
}
