package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"String", "abc", "abc"},
		{"Bytes", []byte("xyz"), "xyz"},
		{"Int", 1, "1"},
		{"WholeFloat", float64(1), "1"},
		{"Fraction", 1.5, "1.5"},
		{"Bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.in))
		})
	}
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("TRUE"))
	assert.True(t, ToBool("1"))
	assert.True(t, ToBool(1))
	assert.False(t, ToBool("no"))
	assert.False(t, ToBool(nil))
}

func TestKeyOf(t *testing.T) {
	row := map[string]any{"k": float64(7), "padded": "s1 ", "blank": "  ", "nil": nil}

	key, ok := KeyOf(row, "k")
	assert.True(t, ok)
	assert.Equal(t, "7", key)

	key, ok = KeyOf(row, "padded")
	assert.True(t, ok)
	assert.Equal(t, "s1 ", key)

	_, ok = KeyOf(row, "blank")
	assert.False(t, ok)
	_, ok = KeyOf(row, "nil")
	assert.False(t, ok)
	_, ok = KeyOf(row, "missing")
	assert.False(t, ok)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "computer science", NormalizeName("  Computer   SCIENCE "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}
