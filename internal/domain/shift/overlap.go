package shift

// Overlaps reports whether [shiftStart, shiftEnd) and [prefStart, prefEnd)
// intersect. Touching endpoints do not count.
func Overlaps(shiftStart, shiftEnd, prefStart, prefEnd TimeOfDay) bool {
	return shiftStart < prefEnd && shiftEnd > prefStart
}
