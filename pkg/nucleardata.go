package evb

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	u2MeV        = 931.49410242
	electronMass = 0.51099895000 // MeV
)

// NuclearData is one isotope entry from the AMDC mass evaluation.
type NuclearData struct {
	Z       uint32
	A       uint32
	Mass    float64 // MeV, electron masses removed
	Isotope string
	Element string
}

// MassMap holds the nuclear mass table, keyed by the (Z, A) pairing id.
type MassMap struct {
	m    map[uint32]NuclearData
	path string
}

func nucleusID(z, a uint32) uint32 {
	return BoardChannelUUID(z, a)
}

// NewMassMap parses an AMDC 2016 style mass table. The first two lines are
// headers; each following line holds N, Z, A, element, mass (integer and
// micro-u parts).
func NewMassMap(path string) (*MassMap, error) {
	mmap := &MassMap{m: make(map[uint32]NuclearData), path: path}
	logger.Info(fmt.Sprintf("mass file: %s", path), "nucleardata")

	file, err := os.Open(path)
	if err != nil {
		return nil, &ErrMassTable{Filename: path, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if line <= 2 {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			return nil, &ErrMassTable{Filename: path, Err: fmt.Errorf("line %d: expected 6 fields, got %d", line, len(fields))}
		}

		var data NuclearData
		z, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, &ErrMassTable{Filename: path, Err: err}
		}
		a, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, &ErrMassTable{Filename: path, Err: err}
		}
		massU, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, &ErrMassTable{Filename: path, Err: err}
		}
		massMicroU, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &ErrMassTable{Filename: path, Err: err}
		}

		data.Z = uint32(z)
		data.A = uint32(a)
		data.Element = fields[3]
		data.Isotope = fmt.Sprintf("%d%s", data.A, data.Element)
		data.Mass = (massU+1.0e-6*massMicroU)*u2MeV - float64(data.Z)*electronMass
		mmap.m[nucleusID(data.Z, data.A)] = data
	}
	if err := scanner.Err(); err != nil {
		return nil, &ErrMassTable{Filename: path, Err: err}
	}

	return mmap, nil
}

// Data returns the mass entry for the nucleus (z, a).
func (m *MassMap) Data(z, a uint32) (NuclearData, bool) {
	data, ok := m.m[nucleusID(z, a)]
	return data, ok
}
