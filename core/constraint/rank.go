package constraint

import "github.com/campusgrid/timetable/core/model"

// Scored pairs a candidate with its soft penalty.
type Scored struct {
	Candidate model.Candidate
	Penalty   int
}

// Better reports whether a should be preferred over b: lowest penalty first,
// ties broken by (room number, start time) lexicographic order so builds are
// reproducible across runs.
func Better(a, b Scored) bool {
	if a.Penalty != b.Penalty {
		return a.Penalty < b.Penalty
	}
	if a.Candidate.RoomNumber != b.Candidate.RoomNumber {
		return a.Candidate.RoomNumber < b.Candidate.RoomNumber
	}
	if a.Candidate.Day != b.Candidate.Day {
		return a.Candidate.Day.Index() < b.Candidate.Day.Index()
	}
	return a.Candidate.Window.Start < b.Candidate.Window.Start
}
