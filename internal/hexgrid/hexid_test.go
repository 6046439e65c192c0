package hexgrid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
)

func TestParseHexID(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected hexgrid.HexID
		wantErr  bool
	}{
		{name: "base hex", raw: "1,-2,1", expected: hexgrid.HexID{Cube: hexgrid.Cube{Q: 1, R: -2, S: 1}}},
		{name: "stacked hex", raw: "0,0,0:3", expected: hexgrid.HexID{Cube: hexgrid.Origin, Level: 3}},
		{name: "negative q", raw: "-5,2,3", expected: hexgrid.HexID{Cube: hexgrid.Cube{Q: -5, R: 2, S: 3}}},
		{name: "bad sum", raw: "1,1,1", wantErr: true},
		{name: "two parts", raw: "1,-1", wantErr: true},
		{name: "not numbers", raw: "a,b,c", wantErr: true},
		{name: "level zero", raw: "0,0,0:0", wantErr: true},
		{name: "bad level", raw: "0,0,0:x", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := hexgrid.ParseHexID(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasReason(err, errors.ReasonInvalidCoordinates))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.raw, got.String())
		})
	}
}

func TestHexIDNavigation(t *testing.T) {
	id := hexgrid.MustParseHexID("2,-1,-1:2")

	assert.Equal(t, "2,-1,-1", id.Base().String())
	assert.Equal(t, "2,-1,-1:1", id.Below().String())
	assert.Equal(t, "2,-1,-1", id.Below().Below().String())
	assert.Equal(t, "2,-1,-1:3", id.Above().String())
	assert.Equal(t, "2,-1,-1:4", hexgrid.StackID(id.Cube, 4).String())
}
