package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "page", want: "page.md"},
		{in: "page.md", want: "page.md"},
		{in: "/page", want: "page.md"},
		{in: "///new/page", want: "new/page.md"},
		{in: "new/page", want: "new/page.md"},
		{in: "v1.2/release-notes", want: "v1.2/release-notes.md"},
		{in: "notes.txt", want: "notes.txt.md"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeRejects(t *testing.T) {
	_, err := Sanitize("")
	require.ErrorIs(t, err, ErrEmptyPath)

	for _, in := range []string{
		"/",
		"///",
		".md",
		"/.md",
		"../secret",
		"a/../../etc/passwd",
		"a//b",
		"a/./b",
		"a/",
		"dir\\file",
		"nul\x00byte",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Sanitize(in)
			require.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, in := range []string{
		"page", "/page", "page.md", "//a/b/c", "a/b.md", "x.md.md", "v1.2/x", "über/straße",
	} {
		once, err := Sanitize(in)
		require.NoError(t, err, in)
		twice, err := Sanitize(once)
		require.NoError(t, err, in)
		assert.Equal(t, once, twice, in)
	}
}

func TestSlugPath(t *testing.T) {
	got, err := SlugPath("guides/setup")
	require.NoError(t, err)
	assert.Equal(t, "guides/setup.md", got)

	got, err = SlugPath("/guides/setup")
	require.NoError(t, err)
	assert.Equal(t, "guides/setup.md", got)

	_, err = SlugPath("")
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = SlugPath("guides/../../x")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestPublicPath(t *testing.T) {
	assert.Equal(t, "/new/page", PublicPath("new/page.md"))
	assert.Equal(t, "new/page", SlugOf("new/page.md"))
}
