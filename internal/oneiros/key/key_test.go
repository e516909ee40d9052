package key_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiros/oneiros/internal/oneiros/id"
	"github.com/oneiros/oneiros/internal/oneiros/key"
	"github.com/oneiros/oneiros/internal/oneiros/link"
)

type agentLink struct{ l link.Link }

func asAgentLink(l link.Link) (agentLink, bool) {
	if !l.HasLabel("agent") {
		return agentLink{}, false
	}
	return agentLink{l}, true
}

func widenAgentLink(a agentLink) link.Link { return a.l }

func TestNarrowSucceedsForMatchingLabel(t *testing.T) {
	agentLnk := link.New("agent", link.String("architect"), link.String("expert"))
	erased := key.FromLink[id.Id, link.Link](agentLnk)

	narrowed, err := key.Narrow[id.Id](erased, asAgentLink, "agent", func(l link.Link) string { return l.String() })
	require.NoError(t, err)
	lnk, ok := narrowed.Link()
	require.True(t, ok)
	assert.True(t, lnk.l.Equal(agentLnk))
}

func TestNarrowFailsForMismatchedLabel(t *testing.T) {
	cognitionLnk := link.New("cognition", link.String("focused"), link.String("c"))
	erased := key.FromLink[id.Id, link.Link](cognitionLnk)

	_, err := key.Narrow[id.Id](erased, asAgentLink, "agent", func(l link.Link) string { return l.String() })
	require.Error(t, err)
	var narrowErr key.ErrNarrowing
	require.ErrorAs(t, err, &narrowErr)
	assert.Equal(t, "agent", narrowErr.Expected)
}

func TestBroadenIsInfallible(t *testing.T) {
	agentLnk := link.New("agent", link.String("architect"), link.String("expert"))
	typed := key.FromLink[id.Id, agentLink](agentLink{agentLnk})
	erased := key.Broaden[id.Id](typed, widenAgentLink)
	lnk, ok := erased.Link()
	require.True(t, ok)
	assert.True(t, lnk.Equal(agentLnk))
}

func TestBothVariantCarriesIDAndLink(t *testing.T) {
	i, err := id.NewLegacy()
	require.NoError(t, err)
	lnk := link.New("agent", link.String("a"), link.String("p"))
	k := key.FromBoth[id.Id, link.Link](i, lnk)
	gotID, ok := k.ID()
	require.True(t, ok)
	assert.True(t, gotID.Equal(i))
	gotLink, ok := k.Link()
	require.True(t, ok)
	assert.True(t, gotLink.Equal(lnk))
	assert.Equal(t, key.VariantBoth, k.Variant())
}
