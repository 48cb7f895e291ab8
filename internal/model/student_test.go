package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	s := Student{Name: "Ana Gómez", Grade: "6A"}

	assert.True(t, s.Matches("6A", "ana gómez"))
	assert.True(t, s.Matches("6A", " ANA GÓMEZ "))
	assert.False(t, s.Matches("6a", "Ana Gómez"))
	assert.False(t, s.Matches("6A", "Ana"))
}

func TestNextID(t *testing.T) {
	assert.Equal(t, FirstID, NextID(nil))
	assert.Equal(t, 1206, NextID([]Student{{ID: 1200}, {ID: 1205}, {ID: 3}}))
	assert.Equal(t, FirstID, NextID([]Student{{ID: 0}, {ID: 0}}))
	assert.Equal(t, FirstID+1, NextID([]Student{{ID: 0}, {ID: FirstID}}))
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "linea1\nlinea2\nlinea3", NormalizeNewlines("linea1\r\nlinea2\rlinea3"))
	assert.Equal(t, "sin saltos", NormalizeNewlines("sin saltos"))
}
