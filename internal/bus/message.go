package bus

import "encoding/json"

const (
	TopicPong      = "pong"
	TopicActivated = "activated"
	TopicPlaying   = "playing"
	TopicPlayed    = "played"
	TopicPing      = "ping"
	TopicPlay      = "play"
	TopicStop      = "stop"
)

// InboundTopics lists the topics the coordinator subscribes to.
var InboundTopics = []string{TopicPong, TopicActivated, TopicPlaying, TopicPlayed}

// Message is an inbound bus message, decoded per topic. Payload fields beyond
// the ones declared here are ignored.
type Message interface {
	Topic() string
}

// Pong is a device heartbeat. Status is the device's self-reported
// activity (playing, waiting, ...), not its health.
type Pong struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Locations []string `json:"locations,omitempty"`
	Status    string   `json:"status,omitempty"`
}

func (Pong) Topic() string { return TopicPong }

// Activated reports a button press on a remote device.
type Activated struct {
	Name string `json:"name"`
}

func (Activated) Topic() string { return TopicActivated }

// Playing reports that a player device started playback.
type Playing struct {
	Name string `json:"name"`
}

func (Playing) Topic() string { return TopicPlaying }

// Played reports that a player device finished playback.
type Played struct {
	Name string `json:"name"`
}

func (Played) Topic() string { return TopicPlayed }

// Play instructs player devices to start playback.
type Play struct {
	Type      string   `json:"type"`
	Locations []string `json:"locations"`
	Repeat    int      `json:"repeat"`
}

func (Play) Topic() string { return TopicPlay }

// Decode parses an inbound payload for the given topic. Malformed payloads
// decode to the variant's zero value: the boundary treats them as absent data
// rather than failing the message handler.
func Decode(topic string, payload []byte) (Message, bool) {
	switch topic {
	case TopicPong:
		var msg Pong
		_ = json.Unmarshal(payload, &msg)
		return msg, true
	case TopicActivated:
		var msg Activated
		_ = json.Unmarshal(payload, &msg)
		return msg, true
	case TopicPlaying:
		var msg Playing
		_ = json.Unmarshal(payload, &msg)
		return msg, true
	case TopicPlayed:
		var msg Played
		_ = json.Unmarshal(payload, &msg)
		return msg, true
	default:
		return nil, false
	}
}
