package store

// Frame types sent on a snapshot stream.
const (
	FrameSnapshot  = "snapshot"
	FrameCancelled = "cancelled"
)

// Frame is one websocket message of a snapshot stream. A cancelled frame is
// the last one of its stream.
type Frame struct {
	Type     string    `json:"type"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Digest   string    `json:"digest,omitempty"`
	Error    string    `json:"error,omitempty"`
}
