package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlausibleName(t *testing.T) {
	valid := []string{
		"Priya",
		"Rahul Sharma",
		"Mary-Jane O'Brien",
		"Lakshmi Krishnan",
		"Shraddha",
		"Amit",
	}
	for _, name := range valid {
		t.Run("accepts "+name, func(t *testing.T) {
			assert.True(t, IsPlausibleName(name))
		})
	}

	invalid := []string{
		"",
		"ab",
		"12345",
		"Priya123",
		"asdf",
		"qwerty",
		"zxcvbn",
		"hjkl",
		"test",
		"hello",
		"ok",
		"bcdfg",
		"aeiou aaa bcdfgh",
		"xyz",
	}
	for _, name := range invalid {
		t.Run("rejects "+name, func(t *testing.T) {
			assert.False(t, IsPlausibleName(name))
		})
	}
}

func TestIsPlausibleNameConsonantRun(t *testing.T) {
	// four consecutive consonants fail unless whitelisted
	assert.False(t, IsPlausibleName("Bcdfga"))
	assert.True(t, IsPlausibleName("Harshdeep"))
}
