package evb

// ShiftEntry is one per-channel time offset correction from the configuration.
type ShiftEntry struct {
	Board     uint32  `json:"board"`
	Channel   uint32  `json:"channel"`
	TimeShift float64 `json:"time_shift"` // ns
}

// ShiftMap resolves a board/channel pairing id to its time shift in ns.
// Unmapped channels shift by 0.0. The shift is applied exactly once, at hit
// normalization time.
type ShiftMap struct {
	m map[uint32]float64
}

func NewShiftMap(entries []ShiftEntry) *ShiftMap {
	smap := &ShiftMap{m: make(map[uint32]float64)}
	for _, entry := range entries {
		smap.m[BoardChannelUUID(entry.Board, entry.Channel)] = entry.TimeShift
	}
	return smap
}

func (s *ShiftMap) TimeShift(uuid uint32) float64 {
	if shift, ok := s.m[uuid]; ok {
		return shift
	}
	return 0.0
}
