package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"json integer", `{"score": 4}`, 4},
		{"json string number", `{"score": "3"}`, 3},
		{"fractional rounds", `{"score": 3.6}`, 4},
		{"bare number", ` 5 `, 5},
		{"above range clamps", `{"score": 97}`, 5},
		{"below range clamps", `{"score": -2}`, 0},
		{"garbage falls back to midpoint", `certainly! the score is four`, 2},
		{"empty falls back to midpoint", ``, 2},
		{"wrong key falls back to midpoint", `{"result": 4}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseScore(tt.raw, 0, 5))
		})
	}
}

func TestParseScoreWideRange(t *testing.T) {
	assert.Equal(t, 85, parseScore(`{"score": 85}`, 0, 100))
	assert.Equal(t, 50, parseScore(`nonsense`, 0, 100))
}

func TestNormalizeTier(t *testing.T) {
	tier, seconds, err := normalizeTier("Easy", 0)
	assert.NoError(t, err)
	assert.Equal(t, "easy", string(tier))
	assert.Equal(t, 20, seconds)

	tier, seconds, err = normalizeTier(" hard ", 90)
	assert.NoError(t, err)
	assert.Equal(t, "hard", string(tier))
	assert.Equal(t, 90, seconds)

	_, _, err = normalizeTier("impossible", 30)
	assert.Error(t, err)
}
