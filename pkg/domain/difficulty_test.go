package domain_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapDifficulty_Table(t *testing.T) {
	tests := []struct {
		code    int
		display int
		label   string
	}{
		{0, 6, "Trivial"},
		{1, 8, "Easy"},
		{2, 10, "Medium"},
		{3, 12, "Challenging"},
		{4, 14, "Formidable"},
		{5, 16, "Legendary"},
		{6, 18, "Heroic"},
		{7, 20, "Impossible"},
		{8, 7, "Trivial"},
		{9, 9, "Easy"},
		{10, 11, "Medium"},
		{11, 13, "Challenging"},
		{12, 15, "Formidable"},
		{13, 17, "Legendary"},
		{14, 19, "Heroic"},
	}

	for _, tt := range tests {
		display, label := domain.MapDifficulty(tt.code)
		assert.Equal(t, tt.display, display, "code %d", tt.code)
		assert.Equal(t, tt.label, label, "code %d", tt.code)
	}
}

func TestMapDifficulty_Unknown(t *testing.T) {
	for _, code := range []int{-1, 15, 42, 1000} {
		display, label := domain.MapDifficulty(code)
		assert.Equal(t, code, display)
		assert.Equal(t, domain.UnknownDifficulty, label)
	}
}

func TestSkillCheck_Resolve(t *testing.T) {
	check := domain.SkillCheck{DifficultyCode: 9, SkillType: "Logic", IsRed: true, FlagName: "doorOpen"}

	got := check.Resolve()

	assert.Equal(t, domain.ResolvedCheck{
		SkillType:       "Logic",
		IsRed:           true,
		FlagName:        "doorOpen",
		DifficultyCode:  9,
		Difficulty:      9,
		DifficultyLabel: "Easy",
	}, got)
}
