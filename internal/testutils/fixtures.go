package testutils

import (
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
	"github.com/KirkDiggler/hexroom/internal/protocol"
	"github.com/KirkDiggler/hexroom/internal/terrain"
)

// CreateTestTerrain returns a seven hex board: the origin and its ring, all grass
func CreateTestTerrain() terrain.Map {
	m := terrain.Map{}
	for _, c := range hexgrid.InRange(hexgrid.Origin, 1) {
		m[hexgrid.FormatCube(c)] = entities.HexRecord{
			Q:    c.Q,
			R:    c.R,
			S:    c.S,
			Type: entities.TerrainGrass,
		}
	}
	return m
}

// StaticGenerator hands every new room a copy of the same terrain
type StaticGenerator struct {
	Terrain terrain.Map
}

// Generate implements terrain.Generator
func (g StaticGenerator) Generate() terrain.Map {
	out := make(terrain.Map, len(g.Terrain))
	for k, v := range g.Terrain {
		out[k] = v
	}
	return out
}

// RecordingNotifier keeps every message sent to each connection
type RecordingNotifier struct {
	mu   sync.Mutex
	sent map[string][]protocol.Envelope
}

// NewRecordingNotifier creates an empty recorder
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{sent: make(map[string][]protocol.Envelope)}
}

// Send records msg and always reports success
func (n *RecordingNotifier) Send(connID string, msg []byte) bool {
	var env protocol.Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		panic("recorded message is not an envelope: " + err.Error())
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[connID] = append(n.sent[connID], env)
	return true
}

// Events returns the envelopes sent to connID in order
func (n *RecordingNotifier) Events(connID string) []protocol.Envelope {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]protocol.Envelope(nil), n.sent[connID]...)
}

// Names returns the event names sent to connID in order
func (n *RecordingNotifier) Names(connID string) []string {
	events := n.Events(connID)
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Event
	}
	return names
}

// Last decodes the most recent event named name sent to connID into v.
// It reports false when no such event was sent.
func (n *RecordingNotifier) Last(connID, name string, v any) bool {
	events := n.Events(connID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event != name {
			continue
		}
		if err := json.Unmarshal(events[i].Data, v); err != nil {
			panic("recorded event does not decode: " + err.Error())
		}
		return true
	}
	return false
}

// Reset forgets everything recorded so far
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = make(map[string][]protocol.Envelope)
}
