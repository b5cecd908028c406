package status

import (
	"encoding/json"

	"connwatch/internal/core/domain"
)

// TimestampLayout is the wire format of the snapshot timestamp. The trailing
// Z is a literal; published timestamps are always UTC.
const TimestampLayout = "2006-01-02T15:04:05Z"

type signalDoc struct {
	State domain.SignalState `json:"state"`
}

type document struct {
	Timestamp string    `json:"timestamp"`
	Internet  signalDoc `json:"internet"`
	DNS       signalDoc `json:"dns"`
}

// Encode renders a snapshot as the on-disk JSON document. Encoding is
// deterministic: identical snapshots produce byte-identical output.
func Encode(snapshot domain.StatusSnapshot) ([]byte, error) {
	return json.MarshalIndent(document{
		Timestamp: snapshot.Timestamp.UTC().Format(TimestampLayout),
		Internet:  signalDoc{State: snapshot.Internet},
		DNS:       signalDoc{State: snapshot.DNS},
	}, "", "  ")
}
