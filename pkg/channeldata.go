package evb

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/maps"
)

// InvalidValue marks a column slot that was not filled for an event.
const InvalidValue = -1.0e6

// ColumnField enumerates the output columns in schema order.
type ColumnField int

const (
	ColAnodeFrontEnergy ColumnField = iota
	ColAnodeFrontShort
	ColAnodeFrontTime
	ColAnodeBackEnergy
	ColAnodeBackShort
	ColAnodeBackTime
	ColScintLeftEnergy
	ColScintLeftShort
	ColScintLeftTime
	ColScintRightEnergy
	ColScintRightShort
	ColScintRightTime
	ColCathodeEnergy
	ColCathodeShort
	ColCathodeTime
	ColDelayFrontLeftEnergy
	ColDelayFrontLeftShort
	ColDelayFrontLeftTime
	ColDelayFrontRightEnergy
	ColDelayFrontRightShort
	ColDelayFrontRightTime
	ColDelayBackLeftEnergy
	ColDelayBackLeftShort
	ColDelayBackLeftTime
	ColDelayBackRightEnergy
	ColDelayBackRightShort
	ColDelayBackRightTime
	ColX1
	ColX2
	ColXavg
	ColTheta

	numColumns
)

// Energy, short-gate and time columns for each mappable detector channel.
var detectorColumns = map[ChannelType][3]ColumnField{
	ChannelAnodeFront:      {ColAnodeFrontEnergy, ColAnodeFrontShort, ColAnodeFrontTime},
	ChannelAnodeBack:       {ColAnodeBackEnergy, ColAnodeBackShort, ColAnodeBackTime},
	ChannelScintLeft:       {ColScintLeftEnergy, ColScintLeftShort, ColScintLeftTime},
	ChannelScintRight:      {ColScintRightEnergy, ColScintRightShort, ColScintRightTime},
	ChannelCathode:         {ColCathodeEnergy, ColCathodeShort, ColCathodeTime},
	ChannelDelayFrontLeft:  {ColDelayFrontLeftEnergy, ColDelayFrontLeftShort, ColDelayFrontLeftTime},
	ChannelDelayFrontRight: {ColDelayFrontRightEnergy, ColDelayFrontRightShort, ColDelayFrontRightTime},
	ChannelDelayBackLeft:   {ColDelayBackLeftEnergy, ColDelayBackLeftShort, ColDelayBackLeftTime},
	ChannelDelayBackRight:  {ColDelayBackRightEnergy, ColDelayBackRightShort, ColDelayBackRightTime},
}

// ChannelData accumulates one row per built event across a fixed set of
// columns. Every column always holds exactly Rows values; slots not filled by
// an event carry InvalidValue so the columns stay length aligned.
type ChannelData struct {
	fields map[ColumnField][]float64
	rows   int
	// Number of times a second hit of an already-filled channel type
	// overwrote the first within one event.
	overwrites uint64
}

func NewChannelData() *ChannelData {
	data := &ChannelData{fields: make(map[ColumnField][]float64, numColumns)}
	for field := ColumnField(0); field < numColumns; field++ {
		data.fields[field] = nil
	}
	return data
}

func (d *ChannelData) Rows() int {
	return d.rows
}

// Overwrites reports how many duplicate-channel hits were silently replaced
// by a later hit of the same type within one event.
func (d *ChannelData) Overwrites() uint64 {
	return d.overwrites
}

// sortedFields returns the column fields in schema order.
func (d *ChannelData) sortedFields() []ColumnField {
	fields := maps.Keys(d.fields)
	slices.Sort(fields)
	return fields
}

// checkAligned verifies every column holds exactly one value per row. Run
// before the table is written out.
func (d *ChannelData) checkAligned() error {
	for _, field := range d.sortedFields() {
		if len(d.fields[field]) != d.rows {
			return fmt.Errorf("column %d holds %d values for %d rows", field, len(d.fields[field]), d.rows)
		}
	}
	return nil
}

// To keep columns all the same length, push invalid values as necessary.
func (d *ChannelData) pushDefaults() {
	for field, column := range d.fields {
		if len(column) < d.rows {
			d.fields[field] = append(column, InvalidValue)
		}
	}
}

// Update the last element of the column to the given value.
func (d *ChannelData) setValue(field ColumnField, value float64) {
	column := d.fields[field]
	if len(column) > 0 {
		column[len(column)-1] = value
	}
}

// AppendEvent maps one built event onto a new row. Hits are dispatched to
// their detector columns through the channel map; hits on unmapped channels
// are skipped. If two hits of the same channel type land in one event, the
// later write wins. The focal-plane columns X1, X2, Theta and Xavg are
// derived afterwards from the delay-line times when those are present.
func (d *ChannelData) AppendEvent(event []Hit, cmap *ChannelMap, weights *Weights) {
	d.rows++
	d.pushDefaults()

	dflTime := InvalidValue
	dfrTime := InvalidValue
	dblTime := InvalidValue
	dbrTime := InvalidValue

	for i := range event {
		hit := &event[i]
		channelType := cmap.Type(hit.UUID)
		columns, ok := detectorColumns[channelType]
		if !ok {
			continue
		}

		if current := d.fields[columns[2]]; len(current) > 0 && current[len(current)-1] != InvalidValue {
			d.overwrites++
		}

		d.setValue(columns[0], hit.Energy)
		d.setValue(columns[1], hit.EnergyShort)
		d.setValue(columns[2], hit.Timestamp)

		switch channelType {
		case ChannelDelayFrontLeft:
			dflTime = hit.Timestamp
		case ChannelDelayFrontRight:
			dfrTime = hit.Timestamp
		case ChannelDelayBackLeft:
			dblTime = hit.Timestamp
		case ChannelDelayBackRight:
			dbrTime = hit.Timestamp
		}
	}

	x1 := InvalidValue
	x2 := InvalidValue
	if dfrTime != InvalidValue && dflTime != InvalidValue {
		x1 = (dflTime - dfrTime) * 0.5 / 2.1
		d.setValue(ColX1, x1)
	}
	if dbrTime != InvalidValue && dblTime != InvalidValue {
		x2 = (dblTime - dbrTime) * 0.5 / 1.98
		d.setValue(ColX2, x2)
	}
	if x1 != InvalidValue && x2 != InvalidValue {
		diff := x2 - x1
		switch {
		case diff > 0.0:
			d.setValue(ColTheta, math.Atan(diff/36.0))
		case diff < 0.0:
			d.setValue(ColTheta, math.Pi+math.Atan(diff/36.0))
		default:
			d.setValue(ColTheta, math.Pi*0.5)
		}

		if weights != nil {
			d.setValue(ColXavg, weights.X1*x1+weights.X2*x2)
		}
	}
}

// UsedSize estimates the memory held by the column vectors, in bytes. Used
// to trigger fragmentation of the in-memory table.
func (d *ChannelData) UsedSize() int {
	size := 0
	for _, column := range d.fields {
		size += len(column) * 8
	}
	return size
}
