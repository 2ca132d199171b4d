package routing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Genshin Impact Wiki": "genshin-impact-wiki",
		"  --Hello,  World!--": "hello-world",
		"Star Rail 2.0":        "star-rail-2-0",
		"ÉLAN":                 "lan",
		"!!!":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, MakeSlug(in), in)
	}

	long := MakeSlug(strings.Repeat("ab ", 60))
	assert.LessOrEqual(t, len(long), 100)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestBuildPath(t *testing.T) {
	assert.Equal(t, "/", BuildPath())
	assert.Equal(t, "/", BuildPath("", "/"))
	assert.Equal(t, "/abcdefghij/collections/weapons/e1/edit/n1",
		BuildPath("/abcdefghij/", "collections", "weapons", "e1", "edit", "n1"))
}
