package evb

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// Size in hits of the read buffer for each binary data file.
const bufferSizeHits = 2400

// CompassFile is a cursor over one per-channel list-mode binary file. The
// record width is fixed per file, derived once from the 2-byte header. The
// cursor caches the current hit; PeekHit returns it without consuming, and
// Advance parses the next record. Once the file is exhausted the cursor stays
// in its terminal state.
type CompassFile struct {
	file       *os.File
	reader     *bufio.Reader
	sizeBytes  int64
	flags      DataFlags
	recordSize int
	shifts     *ShiftMap
	current    Hit
	eof        bool
	record     []byte
}

// OpenCompassFile opens a binary file, reads the header word and primes the
// cursor with the first record. Files flagged as containing waveform data are
// rejected with ErrWaveData.
func OpenCompassFile(path string, shifts *ShiftMap) (*CompassFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}

	var header [2]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		file.Close()
		return nil, &ErrParse{Filename: path, Err: err}
	}
	word := DataFlags(binary.LittleEndian.Uint16(header[:]))

	var flags DataFlags
	// Minimum 16 bytes for board, channel, timestamp, flags.
	recordSize := 16
	if word&FlagEnergy != 0 {
		flags |= FlagEnergy
		recordSize += 2
	}
	if word&FlagEnergyShort != 0 {
		flags |= FlagEnergyShort
		recordSize += 2
	}
	if word&FlagEnergyCalibrated != 0 {
		flags |= FlagEnergyCalibrated
		recordSize += 8
	}
	if word&FlagWaves != 0 {
		file.Close()
		return nil, ErrWaveData
	}

	f := &CompassFile{
		file:       file,
		reader:     bufio.NewReaderSize(file, recordSize*bufferSizeHits),
		sizeBytes:  info.Size(),
		flags:      flags,
		recordSize: recordSize,
		shifts:     shifts,
		record:     make([]byte, recordSize),
	}
	if err := f.Advance(); err != nil {
		file.Close()
		return nil, err
	}
	return f, nil
}

// PeekHit returns the current hit without consuming it. ok is false once the
// file is exhausted.
func (f *CompassFile) PeekHit() (Hit, bool) {
	return f.current, !f.eof
}

// Advance parses the next record into the cursor. Running off the end of the
// file is not an error; it flips the cursor into its terminal state. A
// partial trailing record is treated as end of file as well.
func (f *CompassFile) Advance() error {
	if f.eof {
		return nil
	}
	if _, err := io.ReadFull(f.reader, f.record); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			f.eof = true
			return nil
		}
		return &ErrParse{Filename: f.file.Name(), Err: err}
	}

	var raw RawHit
	pos := 0
	raw.Board = binary.LittleEndian.Uint16(f.record[pos:])
	pos += 2
	raw.Channel = binary.LittleEndian.Uint16(f.record[pos:])
	pos += 2
	raw.Timestamp = binary.LittleEndian.Uint64(f.record[pos:])
	pos += 8
	if f.flags&FlagEnergy != 0 {
		raw.Energy = binary.LittleEndian.Uint16(f.record[pos:])
		pos += 2
	}
	if f.flags&FlagEnergyCalibrated != 0 {
		raw.EnergyCalibrated = binary.LittleEndian.Uint64(f.record[pos:])
		pos += 8
	}
	if f.flags&FlagEnergyShort != 0 {
		raw.EnergyShort = binary.LittleEndian.Uint16(f.record[pos:])
		pos += 2
	}
	// Trailing u32 flags field, read but not used.
	_ = binary.LittleEndian.Uint32(f.record[pos:])

	f.current = NewHit(&raw, f.shifts)
	return nil
}

// IsEOF reports whether the cursor has run off the end of the file.
func (f *CompassFile) IsEOF() bool {
	return f.eof
}

// NumHits returns the number of records in the file, computed from the file
// size and the per-record width.
func (f *CompassFile) NumHits() uint64 {
	return uint64(f.sizeBytes) / uint64(f.recordSize)
}

// RecordSize returns the fixed per-record byte width of this file.
func (f *CompassFile) RecordSize() int {
	return f.recordSize
}

func (f *CompassFile) Close() error {
	return f.file.Close()
}
