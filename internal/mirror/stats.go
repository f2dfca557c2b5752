package mirror

import "fmt"

//Tally is one group of run counters.
type Tally struct {
	Dirs  uint64
	Files uint64
	Bytes uint64
}

//Stats accumulates the outcome of one mirror run. A single instance is shared
//by every recursion level and mutated in place; the traversal is strictly
//sequential, so no synchronization is involved. It is created empty before the
//run and read once at the end for reporting.
type Stats struct {
	Copied       Tally // successfully processed dirs and copied files
	Skipped      Tally // unchanged files left in place (Dirs stays zero)
	ExtraRemoved Tally // destination-only entries that were deleted
	Failed       Tally // copy failures and unreadable dirs
	FailedExtra  Tally // destination-only entries that could not be deleted
}

//Summary renders every counter on one line for the end-of-run report.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"copied %d dirs, %d files, %d bytes; skipped %d files, %d bytes; "+
			"removed extra %d dirs, %d files, %d bytes; "+
			"failed %d dirs, %d files, %d bytes; "+
			"failed to remove extra %d dirs, %d files, %d bytes",
		s.Copied.Dirs, s.Copied.Files, s.Copied.Bytes,
		s.Skipped.Files, s.Skipped.Bytes,
		s.ExtraRemoved.Dirs, s.ExtraRemoved.Files, s.ExtraRemoved.Bytes,
		s.Failed.Dirs, s.Failed.Files, s.Failed.Bytes,
		s.FailedExtra.Dirs, s.FailedExtra.Files, s.FailedExtra.Bytes,
	)
}
