package domain

// UnknownDifficulty labels raw codes outside the table.
const UnknownDifficulty = "Unknown"

type difficultyTier struct {
	display int
	label   string
}

// difficultyTable maps stored codes to display values. Codes 0-7 form the
// base curve (6..20 step 2); codes 8-14 sit one point above the base tier
// they share a label with.
var difficultyTable = [...]difficultyTier{
	0:  {6, "Trivial"},
	1:  {8, "Easy"},
	2:  {10, "Medium"},
	3:  {12, "Challenging"},
	4:  {14, "Formidable"},
	5:  {16, "Legendary"},
	6:  {18, "Heroic"},
	7:  {20, "Impossible"},
	8:  {7, "Trivial"},
	9:  {9, "Easy"},
	10: {11, "Medium"},
	11: {13, "Challenging"},
	12: {15, "Formidable"},
	13: {17, "Legendary"},
	14: {19, "Heroic"},
}

// MapDifficulty translates a raw difficulty code into its display value and label.
// Codes outside the table come back unchanged with the UnknownDifficulty label.
func MapDifficulty(code int) (int, string) {
	if code < 0 || code >= len(difficultyTable) {
		return code, UnknownDifficulty
	}
	t := difficultyTable[code]
	return t.display, t.label
}
