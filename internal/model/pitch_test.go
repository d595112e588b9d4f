package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool_Decode(t *testing.T) {
	cases := map[string]bool{
		`true`:      true,
		`false`:     false,
		`"true"`:    true,
		`"TRUE"`:    true,
		`"false"`:   false,
		`"yes"`:     true,
		`""`:        false,
		`1`:         true,
		`0`:         false,
		`1.0`:       true,
		`null`:      false,
		`"garbage"`: false,
	}
	for in, want := range cases {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(in), &b), in)
		assert.Equal(t, want, bool(b), in)
	}
}

func TestInvestors_Decode(t *testing.T) {
	var p struct {
		Sharks Investors `json:"sharks"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"sharks":["Aman", 3, null, "Namita"]}`), &p))
	assert.Equal(t, Investors{"Aman", "Namita"}, p.Sharks)

	require.NoError(t, json.Unmarshal([]byte(`{"sharks":[null, {"name":"x"}, null]}`), &p))
	assert.Equal(t, Investors{}, p.Sharks)

	require.NoError(t, json.Unmarshal([]byte(`{"sharks":"Aman,Peyush"}`), &p))
	assert.Equal(t, Investors{"Aman,Peyush"}, p.Sharks)

	require.NoError(t, json.Unmarshal([]byte(`{"sharks":null}`), &p))
	assert.Empty(t, p.Sharks)
}

func TestPitch_DecodeToleratesMissingFields(t *testing.T) {
	var p Pitch
	require.NoError(t, json.Unmarshal([]byte(`{"id":"acme","season":2,"funded":"true"}`), &p))

	assert.Equal(t, "acme", p.ID)
	assert.Equal(t, 2, p.Season)
	assert.True(t, p.IsFunded())
	assert.Nil(t, p.Ep)
	assert.Nil(t, p.DealAmt)
	assert.Empty(t, p.Sharks)
}

func TestPitch_HasInvestor(t *testing.T) {
	p := Pitch{Sharks: Investors{"Aman", "Namita"}}
	assert.True(t, p.HasInvestor("Namita"))
	assert.False(t, p.HasInvestor("namita"))
}
