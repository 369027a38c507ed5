package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/card-duel/internal/game/zone"
)

func TestDecode_KnownTags(t *testing.T) {
	t.Parallel()

	act, err := Decode(TagPlayCard, json.RawMessage(`{"hand_index":2,"zone":"battlefield","slot":1,"cost":3}`))
	require.NoError(t, err)

	play, ok := act.(PlayCard)
	require.True(t, ok)
	assert.Equal(t, 2, play.HandIndex)
	assert.Equal(t, zone.Battlefield, play.Zone)
	assert.Equal(t, 3, play.Cost)
}

func TestDecode_EmptyPayloadVariants(t *testing.T) {
	t.Parallel()

	for _, tag := range []Tag{TagEndTurn, TagShuffleDeck, TagSearchDeck} {
		act, err := Decode(tag, nil)
		require.NoError(t, err, "tag %s", tag)
		assert.Equal(t, tag, act.ActionTag())
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	t.Parallel()

	_, err := Decode("teleport", nil)
	assert.Error(t, err)
}

func TestDecode_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  Tag
		data string
	}{
		{"negative draw", TagDrawCard, `{"count":-1}`},
		{"play to dense zone", TagPlayCard, `{"zone":"hand"}`},
		{"unknown stat", TagModifyStat, `{"stat":"luck","value":1}`},
		{"slots below range", TagModifySlots, `{"zone":"battlefield","count":0}`},
		{"slots above range", TagModifySlots, `{"zone":"effect","count":11}`},
		{"dice too few sides", TagRollDice, `{"sides":1}`},
		{"move from unknown zone", TagMoveCard, `{"from_zone":"limbo","to_zone":"hand"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.tag, json.RawMessage(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	t.Parallel()

	_, err := Decode(TagDrawCard, json.RawMessage(`{"count":"three"}`))
	assert.Error(t, err)
}
