// Package roomid generates short numeric room identifiers.
package roomid

import (
	"math/rand/v2"
	"strconv"
)

type Generator struct {
	min int
	max int
}

// New returns a generator producing zero-padding-free ids of the given
// number of digits. length must be at least 1.
func New(length int) *Generator {
	min := 1
	for i := 1; i < length; i++ {
		min *= 10
	}

	return &Generator{
		min: min,
		max: min * 10,
	}
}

func (g *Generator) Generate() string {
	return strconv.Itoa(g.min + rand.IntN(g.max-g.min))
}
