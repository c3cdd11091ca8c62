package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyURLName(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "https://dblp.org/rdf/schema#hasSignature", want: "hasSignature"},
		{in: "http://purl.org/spar/datacite/ResourceIdentifier", want: "ResourceIdentifier"},
		{in: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", want: "type"},
		{in: "isA", want: "isA"},
		{in: "", want: ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SimplifyURLName(c.in), c.in)
	}
}

func TestToInt(t *testing.T) {
	v, ok := ToInt(" 2 ")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = ToInt("second")
	assert.False(t, ok)
}

func TestPIDFromURI(t *testing.T) {
	assert.Equal(t, "66/4867", PIDFromURI("https://dblp.org/pid/66/4867"))
	assert.Equal(t, "anon", PIDFromURI("anon"))
}
