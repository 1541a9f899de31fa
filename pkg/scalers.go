package evb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScalerEntry names one scaler channel and the file name prefix its raw
// count file carries inside a run archive.
type ScalerEntry struct {
	FilePattern string `json:"file_pattern"`
	Name        string `json:"scaler_name"`
}

type scaler struct {
	pattern string
	name    string
	value   uint64
}

// ScalerList recognizes scaler count files among the unpacked run files and
// collects their counts. Scaler files hold raw channel counts, not list-mode
// hits, and are excluded from event building.
type ScalerList struct {
	list       []scaler
	recognized bool
}

func NewScalerList(entries []ScalerEntry) *ScalerList {
	list := make([]scaler, 0, len(entries))
	for _, entry := range entries {
		list = append(list, scaler{pattern: entry.FilePattern, name: entry.Name})
	}
	return &ScalerList{list: list}
}

// Empty reports whether any scaler patterns are configured.
func (s *ScalerList) Empty() bool {
	return len(s.list) == 0
}

// Recognized reports whether at least one scaler file was consumed. Only then
// is a report worth writing.
func (s *ScalerList) Recognized() bool {
	return s.recognized
}

// ReadScaler checks whether the file matches a configured scaler pattern and
// if so consumes it, recording the record count. Returns true when the file
// was recognized and should be skipped by the event builder.
func (s *ScalerList) ReadScaler(path string) bool {
	name := filepath.Base(path)
	for i := range s.list {
		if !strings.HasPrefix(name, s.list[i].pattern) {
			continue
		}
		file, err := OpenCompassFile(path, nil)
		if err != nil {
			continue
		}
		s.list[i].value = file.NumHits()
		file.Close()
		s.recognized = true
		return true
	}
	return false
}

// WriteReport writes the scaler counts as a plain text report.
func (s *ScalerList) WriteReport(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &ErrWrite{Filename: path, Err: err}
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "SPS Scaler Data\n")
	for _, entry := range s.list {
		fmt.Fprintf(writer, "%s %d\n", entry.name, entry.value)
	}
	if err := writer.Flush(); err != nil {
		return &ErrWrite{Filename: path, Err: err}
	}
	return nil
}
