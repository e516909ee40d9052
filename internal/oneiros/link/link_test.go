package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/link"
)

func TestDeterminism(t *testing.T) {
	a := link.New("agent", link.String("architect"), link.String("expert"))
	b := link.New("agent", link.String("architect"), link.String("expert"))
	assert.True(t, a.Equal(b))

	c := link.New("agent", link.String("architect"), link.String("novice"))
	assert.False(t, a.Equal(c))
}

func TestNonIdentityFieldsDoNotAffectLink(t *testing.T) {
	// Two "cognitions" with the same (texture, content) but imagined
	// differing timestamps/ids would still hash identically, since
	// those never enter the tuple.
	a := link.New("cognition", link.String("focused"), link.String("hello"))
	b := link.New("cognition", link.String("focused"), link.String("hello"))
	assert.True(t, a.Equal(b))
}

func TestTextRoundTrip(t *testing.T) {
	l := link.New("agent", link.String("architect"), link.String("expert"))
	s := l.String()
	parsed, err := link.Parse(s)
	require.NoError(t, err)
	assert.True(t, l.Equal(parsed))
}

func TestHasLabel(t *testing.T) {
	l := link.New("agent", link.String("architect"), link.String("expert"))
	assert.True(t, l.HasLabel("agent"))
	assert.False(t, l.HasLabel("cognition"))
}

func TestNestedLinkField(t *testing.T) {
	from := link.New("cognition", link.String("t"), link.String("c"))
	to := link.New("memory", link.String("l"), link.String("m"))
	conn1 := link.New("connection", link.String("relates-to"), link.Nested(from), link.Nested(to))
	conn2 := link.New("connection", link.String("relates-to"), link.Nested(from), link.Nested(to))
	assert.True(t, conn1.Equal(conn2))

	other := link.New("connection", link.String("relates-to"), link.Nested(to), link.Nested(from))
	assert.False(t, conn1.Equal(other))
}

func TestURLSafeAlphabetOnly(t *testing.T) {
	l := link.New("agent", link.String("architect"), link.String("expert \xff binary-ish"))
	for _, r := range l.String() {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
		assert.True(t, ok, "unexpected rune %q in link text form", r)
	}
}
