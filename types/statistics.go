package types

import (
	"go.uber.org/atomic"
)

// SourceStatistics is a snapshot of how much work a frame source did.
type SourceStatistics struct {
	FramesServed  uint64 `json:",omitempty"`
	FramesDecoded uint64 `json:",omitempty"`
	PacketsRead   uint64 `json:",omitempty"`
	Seeks         uint64 `json:",omitempty"`
	Misses        uint64 `json:",omitempty"`
}

// SourceCounters is the live (atomic) counterpart of SourceStatistics.
type SourceCounters struct {
	FramesServed  atomic.Uint64
	FramesDecoded atomic.Uint64
	PacketsRead   atomic.Uint64
	Seeks         atomic.Uint64
	Misses        atomic.Uint64
}

func (c *SourceCounters) ToStats() SourceStatistics {
	return SourceStatistics{
		FramesServed:  c.FramesServed.Load(),
		FramesDecoded: c.FramesDecoded.Load(),
		PacketsRead:   c.PacketsRead.Load(),
		Seeks:         c.Seeks.Load(),
		Misses:        c.Misses.Load(),
	}
}

// CountResult accounts a frame access outcome.
func (c *SourceCounters) CountResult(r FrameResult) {
	if r.Found {
		c.FramesServed.Inc()
	} else {
		c.Misses.Inc()
	}
}
