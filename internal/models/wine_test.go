package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampScale(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "below range", in: -3, want: 1},
		{name: "zero", in: 0, want: 1},
		{name: "minimum", in: 1, want: 1},
		{name: "middle", in: 3, want: 3},
		{name: "maximum", in: 5, want: 5},
		{name: "above range", in: 50, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampScale(tt.in))
		})
	}
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 0, ClampRating(-1))
	assert.Equal(t, 0, ClampRating(0))
	assert.Equal(t, 4, ClampRating(4))
	assert.Equal(t, 5, ClampRating(9))
}

func TestParseWineType(t *testing.T) {
	assert.Equal(t, WineTypeSparkling, ParseWineType("Sparkling"))
	assert.Equal(t, WineTypeIcewine, ParseWineType(" icewine "))
	assert.Equal(t, WineTypeRed, ParseWineType("orange"))
	assert.Equal(t, WineTypeRed, ParseWineType(""))
	assert.False(t, WineType("").Valid())
}

func TestMedia(t *testing.T) {
	assert.False(t, Media{}.Present())
	assert.True(t, Media{URL: "front.jpg"}.Present())
	assert.True(t, Media{Data: []byte{1}}.Present())

	orig := Media{Data: []byte{1, 2, 3}}
	c := orig.Clone()
	c.Data[0] = 9
	assert.Equal(t, byte(1), orig.Data[0], "clone must not share bytes")
}

func TestNewDiaryDraft(t *testing.T) {
	now := time.Date(2024, 5, 17, 20, 0, 0, 0, time.UTC)
	d := NewDiaryDraft(now)

	require.NotEmpty(t, d.ID)
	assert.Equal(t, now, d.CreatedAt)
	assert.Equal(t, MinScale, d.Wine.Sweetness)
	assert.Equal(t, MinScale, d.Wine.Acidity)
	assert.Equal(t, MinScale, d.Wine.Tannin)
	assert.Equal(t, MinScale, d.Wine.Body)
	assert.Equal(t, "2024-05-17", d.DateStamp(time.Now()))
	assert.False(t, d.Wine.BothLabels())

	var zero DiaryDraft
	assert.Equal(t, "2023-01-02", zero.DateStamp(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)))
}
