package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "only separators and spaces", input: " , ,, ", expected: nil},
		{name: "single element", input: "localhost:9092", expected: []string{"localhost:9092"}},
		{name: "trims whitespace", input: " a:9092 ,  b:9092", expected: []string{"a:9092", "b:9092"}},
		{name: "drops duplicates keeping first position", input: "b,a,b,c,a", expected: []string{"b", "a", "c"}},
		{name: "case sensitive", input: "Broker,broker", expected: []string{"Broker", "broker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input, ","))
		})
	}
}
