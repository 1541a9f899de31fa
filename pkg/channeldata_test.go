package evb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func focalPlaneMap() *ChannelMap {
	var board Board
	board.Channels[0] = ChannelDelayFrontLeft
	board.Channels[1] = ChannelDelayFrontRight
	board.Channels[2] = ChannelDelayBackLeft
	board.Channels[3] = ChannelDelayBackRight
	board.Channels[4] = ChannelAnodeFront
	return NewChannelMap([]Board{board})
}

func channelHit(channel uint32, ts, energy float64) Hit {
	return Hit{UUID: BoardChannelUUID(0, channel), Timestamp: ts, Energy: energy, EnergyShort: energy / 2}
}

func requireColumnsAligned(t *testing.T, data *ChannelData) {
	t.Helper()
	for _, field := range data.sortedFields() {
		require.Len(t, data.fields[field], data.Rows(), "column %d", field)
	}
}

func TestAppendEventKeepsColumnsAligned(t *testing.T) {
	data := NewChannelData()
	cmap := focalPlaneMap()

	data.AppendEvent([]Hit{channelHit(4, 1000.0, 250.0)}, cmap, nil)
	requireColumnsAligned(t, data)
	assert.Equal(t, 1, data.Rows())

	data.AppendEvent([]Hit{channelHit(0, 2000.0, 100.0), channelHit(1, 2010.0, 120.0)}, cmap, nil)
	requireColumnsAligned(t, data)
	assert.Equal(t, 2, data.Rows())

	// Unfilled slots carry the sentinel.
	assert.Equal(t, InvalidValue, data.fields[ColScintLeftEnergy][0])
	assert.Equal(t, InvalidValue, data.fields[ColAnodeFrontEnergy][1])
	assert.Equal(t, 250.0, data.fields[ColAnodeFrontEnergy][0])
}

func TestAppendEventUnmappedHitsSkipped(t *testing.T) {
	data := NewChannelData()
	cmap := focalPlaneMap()

	data.AppendEvent([]Hit{{UUID: BoardChannelUUID(5, 9), Timestamp: 100.0, Energy: 7.0}}, cmap, nil)
	requireColumnsAligned(t, data)
	assert.Equal(t, 1, data.Rows())
	for _, field := range data.sortedFields() {
		assert.Equal(t, InvalidValue, data.fields[field][0])
	}
}

func TestAppendEventFocalPlanePositions(t *testing.T) {
	data := NewChannelData()
	cmap := focalPlaneMap()
	weights := &Weights{X1: 0.7, X2: 0.3}

	event := []Hit{
		channelHit(0, 1000.0, 10.0), // delay front left
		channelHit(1, 1010.0, 11.0), // delay front right
		channelHit(2, 1004.0, 12.0), // delay back left
		channelHit(3, 1002.0, 13.0), // delay back right
	}
	data.AppendEvent(event, cmap, weights)

	x1 := (1000.0 - 1010.0) * 0.5 / 2.1
	x2 := (1004.0 - 1002.0) * 0.5 / 1.98
	assert.InDelta(t, x1, data.fields[ColX1][0], 1e-12)
	assert.InDelta(t, x2, data.fields[ColX2][0], 1e-12)
	// diff > 0 branch
	assert.InDelta(t, math.Atan((x2-x1)/36.0), data.fields[ColTheta][0], 1e-12)
	assert.InDelta(t, weights.X1*x1+weights.X2*x2, data.fields[ColXavg][0], 1e-12)
}

func TestAppendEventThetaBranches(t *testing.T) {
	cmap := focalPlaneMap()

	makeEvent := func(dfl, dfr, dbl, dbr float64) []Hit {
		return []Hit{channelHit(0, dfl, 1), channelHit(1, dfr, 1), channelHit(2, dbl, 1), channelHit(3, dbr, 1)}
	}

	// diff < 0: X2 < X1
	data := NewChannelData()
	data.AppendEvent(makeEvent(1010.0, 1000.0, 1000.0, 1010.0), cmap, nil)
	x1 := (1010.0 - 1000.0) * 0.5 / 2.1
	x2 := (1000.0 - 1010.0) * 0.5 / 1.98
	assert.InDelta(t, math.Pi+math.Atan((x2-x1)/36.0), data.fields[ColTheta][0], 1e-12)
	// Weights were nil, Xavg stays unfilled.
	assert.Equal(t, InvalidValue, data.fields[ColXavg][0])

	// diff == 0: front and back spreads scaled to the same position.
	data = NewChannelData()
	data.AppendEvent(makeEvent(1000.0+2.1, 1000.0, 1000.0+1.98, 1000.0), cmap, nil)
	assert.InDelta(t, math.Pi*0.5, data.fields[ColTheta][0], 1e-12)
}

func TestAppendEventMissingDelayLinesLeaveDerivedUnfilled(t *testing.T) {
	data := NewChannelData()
	cmap := focalPlaneMap()

	// Only the front delay lines fire.
	data.AppendEvent([]Hit{channelHit(0, 1000.0, 1), channelHit(1, 1010.0, 1)}, cmap, &Weights{X1: 0.5, X2: 0.5})
	assert.NotEqual(t, InvalidValue, data.fields[ColX1][0])
	assert.Equal(t, InvalidValue, data.fields[ColX2][0])
	assert.Equal(t, InvalidValue, data.fields[ColTheta][0])
	assert.Equal(t, InvalidValue, data.fields[ColXavg][0])
}

func TestAppendEventDuplicateChannelLastWriteWins(t *testing.T) {
	data := NewChannelData()
	cmap := focalPlaneMap()

	data.AppendEvent([]Hit{
		channelHit(4, 1000.0, 100.0),
		channelHit(4, 1005.0, 200.0),
	}, cmap, nil)

	assert.Equal(t, 200.0, data.fields[ColAnodeFrontEnergy][0])
	assert.Equal(t, 1005.0, data.fields[ColAnodeFrontTime][0])
	assert.Equal(t, uint64(1), data.Overwrites())
}

func TestUsedSizeGrowsWithRows(t *testing.T) {
	data := NewChannelData()
	cmap := focalPlaneMap()
	assert.Equal(t, 0, data.UsedSize())

	data.AppendEvent([]Hit{channelHit(4, 1000.0, 1.0)}, cmap, nil)
	// One row across all columns, 8 bytes per element.
	assert.Equal(t, int(numColumns)*8, data.UsedSize())

	data.AppendEvent([]Hit{channelHit(4, 2000.0, 1.0)}, cmap, nil)
	assert.Equal(t, 2*int(numColumns)*8, data.UsedSize())
}
