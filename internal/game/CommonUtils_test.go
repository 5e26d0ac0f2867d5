package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOppositeIsAnInvolutionWithoutFixedPoints(t *testing.T) {
	pairs := map[Direction]Direction{}
	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite(), d.String())
		assert.NotEqual(t, d, d.Opposite(), d.String())
		pairs[d] = d.Opposite()
	}

	assert.Equal(t, Down, pairs[Up])
	assert.Equal(t, Up, pairs[Down])
	assert.Equal(t, Right, pairs[Left])
	assert.Equal(t, Left, pairs[Right])
}

func TestTranslate(t *testing.T) {
	origin := Point{X: 5, Y: 5}

	assert.Equal(t, Point{X: 5, Y: 4}, origin.Translate(Up, 1))
	assert.Equal(t, Point{X: 5, Y: 6}, origin.Translate(Down, 1))
	assert.Equal(t, Point{X: 4, Y: 5}, origin.Translate(Left, 1))
	assert.Equal(t, Point{X: 6, Y: 5}, origin.Translate(Right, 1))
	assert.Equal(t, Point{X: 5, Y: 2}, origin.Translate(Up, 3))
	assert.Equal(t, origin, origin.Translate(Left, 0))
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		parsed, ok := ParseDirection(d.String())
		assert.True(t, ok)
		assert.Equal(t, d, parsed)
	}

	_, ok := ParseDirection("diagonal")
	assert.False(t, ok)
}

func TestManhattanDistance(t *testing.T) {
	assert.Equal(t, 0, GetManhattanDistance(Point{X: 1, Y: 1}, Point{X: 1, Y: 1}))
	assert.Equal(t, 7, GetManhattanDistance(Point{X: 0, Y: 4}, Point{X: 3, Y: 0}))
}
