package evb

import (
	"errors"
	"fmt"
)

// ErrWaveData is returned when a file header advertises waveform samples.
// Waveform mode is not supported by the event builder.
var ErrWaveData = errors.New("file contains waveform data, which is not supported")

// ErrOpenFile represents an error when opening a binary data file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrArchive represents an error unpacking a run archive.
type ErrArchive struct {
	Archive string
	Err     error
}

func (e *ErrArchive) Error() string {
	return fmt.Sprintf("error unpacking archive %q: %v", e.Archive, e.Err)
}

func (e *ErrArchive) Unwrap() error { return e.Err }

// ErrParse represents a malformed binary record in a data file.
type ErrParse struct {
	Filename string
	Err      error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("error parsing data from file %q: %v", e.Filename, e.Err)
}

func (e *ErrParse) Unwrap() error { return e.Err }

// ErrChannelMap represents an error building the channel map.
type ErrChannelMap struct {
	Reason string
}

func (e *ErrChannelMap) Error() string {
	return fmt.Sprintf("error in channel map: %s", e.Reason)
}

// ErrMassTable represents an error reading the nuclear mass table.
type ErrMassTable struct {
	Filename string
	Err      error
}

func (e *ErrMassTable) Error() string {
	return fmt.Sprintf("error reading mass table %q: %v", e.Filename, e.Err)
}

func (e *ErrMassTable) Unwrap() error { return e.Err }

// ErrWrite represents an error writing an output file.
type ErrWrite struct {
	Filename string
	Err      error
}

func (e *ErrWrite) Error() string {
	return fmt.Sprintf("error writing file %q: %v", e.Filename, e.Err)
}

func (e *ErrWrite) Unwrap() error { return e.Err }
