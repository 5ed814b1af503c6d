// Package grades computes grade point averages from completed coursework.
package grades

import (
	"math"
	"strings"
)

// Entry is one graded course in a student's history.
type Entry struct {
	Credits int
	Points  float64
}

var letterPoints = map[string]float64{
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"F":  0.0,
}

// NormalizeLetter upper-cases and trims a letter grade.
func NormalizeLetter(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// PointsFor returns the grade points for a letter grade.
func PointsFor(letter string) (float64, bool) {
	points, ok := letterPoints[NormalizeLetter(letter)]
	return points, ok
}

// GPA returns the credit weighted average of the history rounded to two
// decimals. Entries without credits are ignored; an empty history yields 0.
func GPA(history []Entry) float64 {
	var totalPoints float64
	var totalCredits int
	for _, entry := range history {
		if entry.Credits <= 0 {
			continue
		}
		totalPoints += entry.Points * float64(entry.Credits)
		totalCredits += entry.Credits
	}
	if totalCredits == 0 {
		return 0
	}
	return math.Round(totalPoints/float64(totalCredits)*100) / 100
}
