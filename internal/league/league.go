// Package league maps a point total to its league and the per-tick cost
// charged by inactivity decay in that league.
package league

// BandWidth is the number of points between league lower bounds minus one;
// a league's displayed upper bound is LowerBound+BandWidth.
const BandWidth = 499

// League is one rung of the ladder.
type League struct {
	Title      string `json:"title" yaml:"title"`
	LowerBound int16  `json:"lower_bound" yaml:"lower_bound"`
	Cost       int16  `json:"league_cost" yaml:"league_cost"`
}

// Ladder is ordered by ascending LowerBound.
var Ladder = []League{
	{Title: "zhest", LowerBound: 0, Cost: 0},
	{Title: "iron", LowerBound: 500, Cost: 20},
	{Title: "steel", LowerBound: 1000, Cost: 40},
	{Title: "bronze", LowerBound: 1500, Cost: 60},
	{Title: "silver", LowerBound: 2000, Cost: 80},
	{Title: "gold", LowerBound: 2500, Cost: 100},
	{Title: "platinum", LowerBound: 3000, Cost: 120},
	{Title: "diamond", LowerBound: 3500, Cost: 140},
}

// ForPoints returns the highest league whose lower bound is at most points.
func ForPoints(points int16) League {
	current := Ladder[0]
	for _, l := range Ladder {
		if points < l.LowerBound {
			break
		}
		current = l
	}
	return current
}

// Cost returns the decay cost per tick for a point total.
func Cost(points int16) int16 {
	return ForPoints(points).Cost
}

// Status describes where a point total sits on the ladder.
type Status struct {
	Points     int16   `json:"points"`
	League     League  `json:"league"`
	UpperBound int     `json:"upper_bound"`
	Progress   float64 `json:"progress"` // percent of the band, 0-100
	Next       *League `json:"next,omitempty"`
}

// StatusFor returns the ladder position for points.
func StatusFor(points int16) Status {
	l := ForPoints(points)
	s := Status{
		Points:     points,
		League:     l,
		UpperBound: int(l.LowerBound) + BandWidth,
	}

	progress := float64(int(points)-int(l.LowerBound)) / float64(BandWidth) * 100
	if progress > 100 {
		progress = 100
	}
	s.Progress = progress

	for i := range Ladder {
		if Ladder[i].LowerBound > l.LowerBound {
			next := Ladder[i]
			s.Next = &next
			break
		}
	}
	return s
}
