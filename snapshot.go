package spot

import (
	"github.com/google/uuid"

	"github.com/victoralfred/spot/internal/p2"
	"github.com/victoralfred/spot/internal/tail"
)

// Snapshot is the plain-field persisted form of a Spot, matching spec.md
// §6's persistence contract: any serializer that round-trips these fields
// restores behavior exactly, including floating-point specials.
type Snapshot struct {
	ID     uuid.UUID
	Config Config

	N      uint64
	Nt     uint64
	T      float64
	Z      float64
	Fitted bool

	P2   p2.Snapshot
	Tail tail.Snapshot
}

// Snapshot captures the detector's current plain-field state. The returned
// value shares no mutable state with s; mutating s afterward does not
// affect it.
func (s *Spot) Snapshot() Snapshot {
	return Snapshot{
		ID:     s.id,
		Config: s.config,
		N:      s.n,
		Nt:     s.nt,
		T:      s.t,
		Z:      s.z,
		Fitted: s.fitted,
		P2:     s.p2.Snapshot(),
		Tail:   s.tail.Snapshot(),
	}
}

// NewSpotFromSnapshot restores a Spot previously captured by Snapshot.
// Returns an ErrInvalidConfig *SpotError if the embedded config no longer
// satisfies §3's constraints.
func NewSpotFromSnapshot(snap Snapshot) (*Spot, error) {
	if err := snap.Config.validate(); err != nil {
		return nil, err
	}

	return &Spot{
		id:     snap.ID,
		config: snap.Config,
		logger: snap.Config.logger(),
		n:      snap.N,
		nt:     snap.Nt,
		t:      snap.T,
		z:      snap.Z,
		fitted: snap.Fitted,
		p2:     p2.FromSnapshot(snap.P2),
		tail:   tail.FromSnapshot(snap.Tail),
	}, nil
}
