package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

func TestDuration(t *testing.T) {
	cases := map[string]model.Duration{
		"2w":    model.Weeks(2),
		"5":     model.Days(5),
		"8h":    model.Hours(8),
		" 3 D ": model.Days(3),
		"1.5d":  model.Days(1.5),
		"0":     model.Days(0),
	}
	for in, want := range cases {
		got, err := Duration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDuration_Rejects(t *testing.T) {
	for _, in := range []string{"abc", "", "-2d", "3x", "d"} {
		_, err := Duration(in)
		assert.True(t, errors.Is(err, model.ErrParse), "input %q", in)
	}
}

func TestLinks(t *testing.T) {
	links, err := Links("1fs+2d,2SS-3d; 4 ff + 4h, 9")
	require.NoError(t, err)
	assert.Equal(t, []model.Link{
		{PredecessorID: 1, Kind: model.FS, Lag: model.Days(2)},
		{PredecessorID: 2, Kind: model.SS, Lag: model.Days(-3)},
		{PredecessorID: 4, Kind: model.FF, Lag: model.Hours(4)},
		{PredecessorID: 9, Kind: model.FS, Lag: model.Days(0)},
	}, links)
}

func TestLinks_Blank(t *testing.T) {
	links, err := Links("   ")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestLinks_Rejects(t *testing.T) {
	_, err := Links("x1")
	var pe *model.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "predecessors", pe.Field)

	_, err = Links("0fs")
	assert.ErrorIs(t, err, model.ErrParse)
}

func TestFormatLinks_RoundTrip(t *testing.T) {
	links, err := Links("7fs+2d, 12ss-4h")
	require.NoError(t, err)
	assert.Equal(t, "7fs+2d,12ss-4h", FormatLinks(links))

	again, err := Links(FormatLinks(links))
	require.NoError(t, err)
	assert.Equal(t, links, again)
}

func TestFormatDuration_RoundTrip(t *testing.T) {
	for _, d := range []model.Duration{model.Days(3), model.Hours(4), model.Weeks(1.5)} {
		got, err := Duration(FormatDuration(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}
