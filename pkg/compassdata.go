package evb

import (
	"math"
	"math/rand"
)

// DataFlags is the 2-byte header bitmask written by CoMPASS at the start of
// every list-mode binary file. It declares which optional fields are present
// in each record of that file.
type DataFlags uint16

const (
	FlagEnergy           DataFlags = 0x0001
	FlagEnergyCalibrated DataFlags = 0x0002
	FlagEnergyShort      DataFlags = 0x0004
	FlagWaves            DataFlags = 0x0008
)

// RawHit is one binary record as read from disk, before any normalization.
type RawHit struct {
	Board            uint16
	Channel          uint16
	Timestamp        uint64
	Energy           uint16
	EnergyCalibrated uint64
	EnergyShort      uint16
}

// BoardChannelUUID folds a (board, channel) pair into a single integer with
// the Szudzik pairing function. The mapping is invertible, see DecomposeUUID.
func BoardChannelUUID(board, channel uint32) uint32 {
	if board >= channel {
		return board*board + board + channel
	}
	return channel*channel + board
}

// DecomposeUUID recovers the (board, channel) pair from a pairing id.
func DecomposeUUID(uuid uint32) (board, channel uint32) {
	root := uint32(math.Floor(math.Sqrt(float64(uuid))))
	rem := uuid - root*root
	if rem >= root {
		return root, rem - root
	}
	return rem, root
}

// Hit is a normalized digitizer hit: pairing id, dithered energies and a
// timestamp in nanoseconds with the per-channel shift applied.
type Hit struct {
	UUID        uint32
	Energy      float64
	EnergyShort float64
	Timestamp   float64
}

// NewHit normalizes a raw record. Integer ADC values get a uniform [0,1)
// dither so later histogramming does not see artificial quantization combs.
// The raw timestamp is in picosecond-scale ticks, converted here to ns.
func NewHit(raw *RawHit, shifts *ShiftMap) Hit {
	uuid := BoardChannelUUID(uint32(raw.Board), uint32(raw.Channel))
	timestamp := float64(raw.Timestamp) * 1.0e-3
	if shifts != nil {
		timestamp += shifts.TimeShift(uuid)
	}
	return Hit{
		UUID:        uuid,
		Energy:      float64(raw.Energy) + rand.Float64(),
		EnergyShort: float64(raw.EnergyShort) + rand.Float64(),
		Timestamp:   timestamp,
	}
}

// BoardChannel returns the (board, channel) pair this hit came from.
func (h *Hit) BoardChannel() (uint32, uint32) {
	return DecomposeUUID(h.UUID)
}
