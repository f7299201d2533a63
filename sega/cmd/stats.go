package cmd

import (
	"github.com/sarchlab/sega/datarecording"
	"github.com/sarchlab/sega/platform"
)

const tileStatsTable = "tile_stats"

type tileStatsEntry struct {
	TileID int

	Admitted          uint64
	Merged            uint64
	Flushed           uint64
	PeakRegisterFile  int
	PeakIntakeEntries int

	Hits         uint64
	Misses       uint64
	Coalesced    uint64
	Applied      uint64
	Evictions    uint64
	WriteBacks   uint64
	Activations  uint64
	Deferred     uint64
	PeakTrackers int

	EdgeReads      uint64
	LocalUpdates   uint64
	RemoteUpdates  uint64
	PushSuppressed uint64

	VertexReads  uint64
	VertexWrites uint64
	EdgeMemReads uint64

	Cause  string
	Cycles uint64
}

func recordTileStats(
	recorder datarecording.DataRecorder,
	result *platform.Result,
) {
	recorder.CreateTable(tileStatsTable, tileStatsEntry{})

	for _, s := range result.TileStats {
		recorder.InsertData(tileStatsTable, tileStatsEntry{
			TileID:            s.TileID,
			Admitted:          s.WLEngine.Admitted,
			Merged:            s.WLEngine.Merged,
			Flushed:           s.WLEngine.Flushed,
			PeakRegisterFile:  s.WLEngine.PeakRegisterFile,
			PeakIntakeEntries: s.WLEngine.PeakIntakeEntries,
			Hits:              s.Cache.Hits,
			Misses:            s.Cache.Misses,
			Coalesced:         s.Cache.Coalesced,
			Applied:           s.Cache.Applied,
			Evictions:         s.Cache.Evictions,
			WriteBacks:        s.Cache.WriteBacks,
			Activations:       s.Cache.Activations,
			Deferred:          s.Cache.Deferred,
			PeakTrackers:      s.Cache.PeakTrackers,
			EdgeReads:         s.Push.EdgeReads,
			LocalUpdates:      s.Push.LocalUpdates,
			RemoteUpdates:     s.Push.RemoteUpdates,
			PushSuppressed:    s.Push.Suppressed,
			VertexReads:       s.VertexRds,
			VertexWrites:      s.VertexWrs,
			EdgeMemReads:      s.EdgeRds,
			Cause:             result.Cause,
			Cycles:            result.Cycles,
		})
	}

	recorder.Flush()
}
