package result

// Grade bands over the 0-100 scale, inclusive lower bounds.
// A band also carries its numeric point on the 0-5 scale.
type gradeBand struct {
	letter string
	point  int
	min    float64
}

var gradeBands = []gradeBand{
	{"A", 5, 70},
	{"B", 4, 60},
	{"C", 3, 50},
	{"D", 2, 45},
	{"E", 1, 40},
	{"F", 0, 0},
}

// GradeOf returns the letter grade for a total score.
func GradeOf(total float64) string {
	for _, band := range gradeBands {
		if total >= band.min {
			return band.letter
		}
	}
	return "F"
}

// GradePoint returns the numeric scale value of a letter grade.
func GradePoint(letter string) int {
	for _, band := range gradeBands {
		if band.letter == letter {
			return band.point
		}
	}
	return 0
}
