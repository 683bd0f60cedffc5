package board

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_OpeningPosition(t *testing.T) {
	t.Parallel()

	b := New()
	assert.Equal(t, Light, b.At(Pos{X: 3, Y: 3}))
	assert.Equal(t, Light, b.At(Pos{X: 4, Y: 4}))
	assert.Equal(t, Dark, b.At(Pos{X: 3, Y: 4}))
	assert.Equal(t, Dark, b.At(Pos{X: 4, Y: 3}))
	assert.Equal(t, Score{Dark: 2, Light: 2}, b.Tally())
}

func TestLineFrom(t *testing.T) {
	t.Parallel()

	origin := Pos{X: 2, Y: 4}
	tests := []struct {
		name     string
		dir      Direction
		expected []Pos
	}{
		{"left", Direction{-1, 0}, []Pos{{1, 4}, {0, 4}}},
		{"up-left", Direction{-1, -1}, []Pos{{1, 3}, {0, 2}}},
		{"up", Direction{0, -1}, []Pos{{2, 3}, {2, 2}, {2, 1}, {2, 0}}},
		{"up-right", Direction{1, -1}, []Pos{{3, 3}, {4, 2}, {5, 1}, {6, 0}}},
		{"right", Direction{1, 0}, []Pos{{3, 4}, {4, 4}, {5, 4}, {6, 4}, {7, 4}}},
		{"down-right", Direction{1, 1}, []Pos{{3, 5}, {4, 6}, {5, 7}}},
		{"down", Direction{0, 1}, []Pos{{2, 5}, {2, 6}, {2, 7}}},
		{"down-left", Direction{-1, 1}, []Pos{{1, 5}, {0, 6}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slices.Collect(LineFrom(origin, tt.dir)))
		})
	}
}

func TestLineFrom_EndsAtEdgeForEveryOrigin(t *testing.T) {
	t.Parallel()

	for y := range Size {
		for x := range Size {
			origin := Pos{X: x, Y: y}
			for _, dir := range Directions {
				line := slices.Collect(LineFrom(origin, dir))
				for i, p := range line {
					require.True(t, p.InBounds())
					assert.Equal(t, Pos{X: x + dir.DX*(i+1), Y: y + dir.DY*(i+1)}, p)
				}
				// the step after the last element leaves the board
				last := origin
				if len(line) > 0 {
					last = line[len(line)-1]
				}
				assert.False(t, Pos{X: last.X + dir.DX, Y: last.Y + dir.DY}.InBounds())
				// restartable
				assert.Equal(t, line, slices.Collect(LineFrom(origin, dir)))
			}
		}
	}
}

func TestCaptureSet_OpeningMoves(t *testing.T) {
	t.Parallel()

	b := New()

	captured, err := b.CaptureSet(Pos{X: 3, Y: 2}, Dark)
	require.NoError(t, err)
	assert.Equal(t, []Pos{{X: 3, Y: 3}}, captured)

	captured, err = b.CaptureSet(Pos{X: 4, Y: 5}, Dark)
	require.NoError(t, err)
	assert.Equal(t, []Pos{{X: 4, Y: 4}}, captured)
}

func TestCaptureSet_OutOfRange(t *testing.T) {
	t.Parallel()

	b := New()
	for _, p := range []Pos{{-1, 4}, {0, 8}, {8, 0}, {5, -1}} {
		_, err := b.CaptureSet(p, Dark)
		assert.ErrorIs(t, err, ErrOutOfRange, "origin %v", p)

		_, err = b.IsLegalMove(p, Light)
		assert.ErrorIs(t, err, ErrOutOfRange, "origin %v", p)
	}
}

func TestCaptureSet_StopsAtFirstOwnDisk(t *testing.T) {
	t.Parallel()

	// D at (0,0): right-hand line is L L D L D; only the first two L flip
	b := MustParse(
		".LLDLD..",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	captured, err := b.CaptureSet(Pos{X: 0, Y: 0}, Dark)
	require.NoError(t, err)
	assert.Equal(t, []Pos{{1, 0}, {2, 0}}, captured)
}

func TestCaptureSet_UnclosedLineContributesNothing(t *testing.T) {
	t.Parallel()

	b := MustParse(
		".LLLLLLL",
		"L.......",
		"D.......",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	captured, err := b.CaptureSet(Pos{X: 0, Y: 0}, Dark)
	require.NoError(t, err)
	// the row runs into the edge without a dark disk, the column closes
	assert.Equal(t, []Pos{{0, 1}}, captured)
}

func TestCaptureSet_MultipleLines(t *testing.T) {
	t.Parallel()

	b := MustParse(
		"D.D.D...",
		".LLL....",
		"DL.LD...",
		".LLL....",
		"D.D.D...",
		"........",
		"........",
		"........",
	)
	captured, err := b.CaptureSet(Pos{X: 2, Y: 2}, Dark)
	require.NoError(t, err)
	assert.Len(t, captured, 8)
	assert.ElementsMatch(t, []Pos{
		{1, 2}, {1, 1}, {2, 1}, {3, 1}, {3, 2}, {3, 3}, {2, 3}, {1, 3},
	}, captured)
}

func TestIsLegalMove(t *testing.T) {
	t.Parallel()

	b := New()
	for _, p := range []Pos{{3, 2}, {2, 3}, {4, 5}, {5, 4}} {
		ok, err := b.IsLegalMove(p, Dark)
		require.NoError(t, err)
		assert.True(t, ok, "expected %v legal", p)
	}
	for _, p := range []Pos{{6, 4}, {4, 2}, {3, 3}, {0, 0}} {
		ok, err := b.IsLegalMove(p, Dark)
		require.NoError(t, err)
		assert.False(t, ok, "expected %v illegal", p)
	}
}

func TestLegalMoves_Opening(t *testing.T) {
	t.Parallel()

	b := New()
	assert.ElementsMatch(t, []Pos{{3, 2}, {2, 3}, {4, 5}, {5, 4}}, b.LegalMoves(Dark))
	assert.ElementsMatch(t, []Pos{{4, 2}, {5, 3}, {2, 4}, {3, 5}}, b.LegalMoves(Light))
}

func TestApplyMove_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	b := New()
	origin := Pos{X: 3, Y: 2}

	next, err := b.ApplyMove(origin, Dark)
	require.NoError(t, err)

	assert.Equal(t, Empty, b.At(origin))
	assert.Equal(t, Light, b.At(Pos{X: 3, Y: 3}))
	assert.Equal(t, Dark, next.At(origin))
	assert.Equal(t, Dark, next.At(Pos{X: 3, Y: 3}))
}

func TestApplyMove_OnlyOriginAndCapturesChange(t *testing.T) {
	t.Parallel()

	b := MustParse(
		"D.D.D...",
		".LLL....",
		"DL.LD...",
		".LLL....",
		"D.D.D..L",
		"........",
		"......D.",
		"........",
	)
	origin := Pos{X: 2, Y: 2}
	captured, err := b.CaptureSet(origin, Dark)
	require.NoError(t, err)

	next, err := b.ApplyMove(origin, Dark)
	require.NoError(t, err)

	changed := map[Pos]bool{origin: true}
	for _, p := range captured {
		changed[p] = true
	}
	for y := range Size {
		for x := range Size {
			p := Pos{X: x, Y: y}
			if changed[p] {
				assert.Equal(t, Dark, next.At(p), "%v", p)
			} else {
				assert.Equal(t, b.At(p), next.At(p), "%v", p)
			}
		}
	}
}

func TestApplyMove_Rejects(t *testing.T) {
	t.Parallel()

	b := New()

	_, err := b.ApplyMove(Pos{X: 3, Y: 3}, Dark)
	assert.ErrorIs(t, err, ErrNoCapture)

	_, err = b.ApplyMove(Pos{X: 0, Y: 0}, Dark)
	assert.ErrorIs(t, err, ErrNoCapture)

	_, err = b.ApplyMove(Pos{X: 8, Y: 0}, Dark)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		board    Board
		terminal bool
	}{
		{
			name: "full board mostly light",
			board: MustParse(
				"LLDDLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
			),
			terminal: true,
		},
		{
			name: "full board mostly dark",
			board: MustParse(
				"LLDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
			),
			terminal: true,
		},
		{
			name: "dark eliminated",
			board: MustParse(
				".L.LLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
				"LLLLLLLL",
			),
			terminal: true,
		},
		{
			name: "light eliminated",
			board: MustParse(
				".D.DDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
			),
			terminal: true,
		},
		{name: "opening", board: New(), terminal: false},
		{
			name: "one hole dark can still fill",
			board: MustParse(
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"DDDDDDDD",
				"LLLLLLLD",
				"DDDDDDD.",
			),
			terminal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.terminal, tt.board.IsTerminal())
		})
	}
}

func TestMustPass_OneSideBlocked(t *testing.T) {
	t.Parallel()

	b := MustParse(
		"DDDDDDDD",
		"DDDDDDDD",
		"DDDDDDDD",
		"DDDDDDDD",
		"DDDDDDDD",
		"LLLLLLLL",
		"........",
		"........",
	)
	assert.True(t, b.MustPass(Light))
	assert.False(t, b.MustPass(Dark))
	assert.False(t, b.HasAnyLegalMove(Light))
	assert.True(t, b.HasAnyLegalMove(Dark))
	assert.False(t, b.IsTerminal())
}

func TestParse_RoundTripsString(t *testing.T) {
	t.Parallel()

	b := New()
	parsed, err := Parse(splitRows(b.String())...)
	require.NoError(t, err)
	assert.Equal(t, b, parsed)

	_, err = Parse("........")
	assert.Error(t, err)
	_, err = Parse("X.......", "", "", "", "", "", "", "")
	assert.Error(t, err)
}

func TestCell_NamesAndOpponent(t *testing.T) {
	t.Parallel()

	for _, c := range []Cell{Empty, Light, Dark} {
		parsed, err := ParseCell(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCell("Red")
	assert.Error(t, err)

	assert.Equal(t, Dark, Light.Opponent())
	assert.Equal(t, Light, Dark.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}

func splitRows(s string) []string {
	var rows []string
	start := 0
	for i := range len(s) {
		if s[i] == '\n' {
			rows = append(rows, s[start:i])
			start = i + 1
		}
	}
	return append(rows, s[start:])
}

func TestBoard_JSONUsesCellNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(New())
	require.NoError(t, err)

	var rows [][]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, Size)
	assert.Equal(t, "White", rows[3][3])
	assert.Equal(t, "Black", rows[3][4])
	assert.Equal(t, "None", rows[0][0])

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, New(), decoded)

	assert.Error(t, json.Unmarshal([]byte(`[["Red"]]`), &decoded))
}
