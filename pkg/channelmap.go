package evb

import (
	"encoding/json"
	"fmt"
)

// ChannelType is the logical detector channel a digitizer channel is wired to.
type ChannelType int

const (
	ChannelNone ChannelType = iota
	ChannelAnodeFront
	ChannelAnodeBack
	ChannelScintLeft
	ChannelScintRight
	ChannelCathode
	ChannelDelayFrontLeft
	ChannelDelayFrontRight
	ChannelDelayBackLeft
	ChannelDelayBackRight
)

var channelTypeNames = map[string]ChannelType{
	"None":            ChannelNone,
	"AnodeFront":      ChannelAnodeFront,
	"AnodeBack":       ChannelAnodeBack,
	"ScintLeft":       ChannelScintLeft,
	"ScintRight":      ChannelScintRight,
	"Cathode":         ChannelCathode,
	"DelayFrontLeft":  ChannelDelayFrontLeft,
	"DelayFrontRight": ChannelDelayFrontRight,
	"DelayBackLeft":   ChannelDelayBackLeft,
	"DelayBackRight":  ChannelDelayBackRight,
}

var channelTypeStrings = map[ChannelType]string{}

func init() {
	for name, t := range channelTypeNames {
		channelTypeStrings[t] = name
	}
}

func (t ChannelType) String() string {
	if name, ok := channelTypeStrings[t]; ok {
		return name
	}
	return "None"
}

func (t ChannelType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ChannelType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	mapped, ok := channelTypeNames[name]
	if !ok {
		return &ErrChannelMap{Reason: fmt.Sprintf("unknown channel type %q", name)}
	}
	*t = mapped
	return nil
}

// ChannelsPerBoard is the number of digitizer channels on one board.
const ChannelsPerBoard = 16

// Board lists the channel type wired to each of its 16 channels.
type Board struct {
	Channels [ChannelsPerBoard]ChannelType `json:"channels"`
}

// ChannelMap resolves a board/channel pairing id to its channel type. Built
// once before a run starts and never mutated afterwards. Board numbers are
// the positions in the board list handed to NewChannelMap.
type ChannelMap struct {
	m map[uint32]ChannelType
}

func NewChannelMap(boards []Board) *ChannelMap {
	cmap := &ChannelMap{m: make(map[uint32]ChannelType)}
	for boardIndex, board := range boards {
		for channelIndex, channelType := range board.Channels {
			uuid := BoardChannelUUID(uint32(boardIndex), uint32(channelIndex))
			cmap.m[uuid] = channelType
		}
	}
	return cmap
}

// Type returns the channel type mapped to the pairing id, or ChannelNone for
// unmapped ids.
func (c *ChannelMap) Type(uuid uint32) ChannelType {
	if t, ok := c.m[uuid]; ok {
		return t
	}
	return ChannelNone
}
