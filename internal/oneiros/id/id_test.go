package id_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/id"
)

func TestLegacyRoundTrip(t *testing.T) {
	legacy, err := id.NewLegacy()
	require.NoError(t, err)

	s := legacy.String()
	assert.Len(t, s, 36)

	parsed, err := id.Parse(s)
	require.NoError(t, err)
	assert.True(t, legacy.Equal(parsed))
	assert.True(t, parsed.IsLegacy())
}

func TestContentRoundTrip(t *testing.T) {
	content := id.ContentFromBytes([]byte("architect"))
	s := content.String()
	assert.Len(t, s, 64)

	parsed, err := id.Parse(s)
	require.NoError(t, err)
	assert.True(t, content.Equal(parsed))
	assert.True(t, parsed.IsContent())
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := id.Parse("not-an-id")
	assert.ErrorIs(t, err, id.ErrMalformed)
}

func TestDistinctVariantsNeverEqual(t *testing.T) {
	legacy, err := id.NewLegacy()
	require.NoError(t, err)
	content := id.ContentFromBytes([]byte("x"))
	assert.False(t, legacy.Equal(content))
}
