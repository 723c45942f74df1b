package runtime

import (
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTape_Empty(t *testing.T) {
	_, err := NewTape(nil, "_")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestTape_Move(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		moves    []domain.Direction
		wantTape string
		wantHead int
	}{
		{"right inside", "abc", []domain.Direction{domain.Right}, "abc", 1},
		{"right past end appends blank", "ab", []domain.Direction{domain.Right, domain.Right}, "ab_", 2},
		{"left at zero prepends blank", "ab", []domain.Direction{domain.Left}, "_ab", 0},
		{"left twice at zero", "a", []domain.Direction{domain.Left, domain.Left}, "__a", 0},
		{"left inside", "ab", []domain.Direction{domain.Right, domain.Left}, "ab", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape, err := NewTape(domain.SplitTape(tt.initial), "_")
			require.NoError(t, err)
			for _, d := range tt.moves {
				tape.Move(d)
				assert.GreaterOrEqual(t, tape.Head(), 0)
				assert.Less(t, tape.Head(), tape.Len())
			}
			assert.Equal(t, tt.wantTape, tape.String())
			assert.Equal(t, tt.wantHead, tape.Head())
		})
	}
}

func TestTape_CellsIsACopy(t *testing.T) {
	tape, err := NewTape(domain.SplitTape("01"), "_")
	require.NoError(t, err)

	cells := tape.Cells()
	cells[0] = "x"
	assert.Equal(t, "01", tape.String())
}

func TestRestoreTape_HeadOutOfBounds(t *testing.T) {
	_, err := restoreTape(domain.SplitTape("01"), 2, "_")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
