package mqttin

import "github.com/stagelink/dmxbridge/pkg/dmx"

// ChannelCommand sets one channel to a value. Payloads carry a JSON array
// of these.
type ChannelCommand struct {
	Channel uint16 `json:"channel"` // 1..512
	Value   byte   `json:"value"`   // 0..255
}

// Sink accepts universe snapshots from the input.
type Sink interface {
	Submit(frame [dmx.MaxChannels]byte)
}
