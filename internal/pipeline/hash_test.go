package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateHashNormalizes(t *testing.T) {
	a := DuplicateHash("Globex", "Platform Engineer", "Berlin")
	b := DuplicateHash("  globex ", "PLATFORM ENGINEER", " berlin ")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestDuplicateHashDistinguishesFields(t *testing.T) {
	base := DuplicateHash("Globex", "Platform Engineer", "Berlin")

	assert.NotEqual(t, base, DuplicateHash("Initech", "Platform Engineer", "Berlin"))
	assert.NotEqual(t, base, DuplicateHash("Globex", "Backend Engineer", "Berlin"))
	assert.NotEqual(t, base, DuplicateHash("Globex", "Platform Engineer", "Remote"))
}

func TestDuplicateHashEmptyLocation(t *testing.T) {
	a := DuplicateHash("Globex", "Platform Engineer", "")
	b := DuplicateHash("Globex", "Platform Engineer", "   ")

	assert.Equal(t, a, b)
}
