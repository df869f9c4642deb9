package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vellum-editor/vellum/internal/text"
)

func TestSelectionRangeNormalizes(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want text.Range
	}{
		{"forward", New(1, 5), text.NewRange(1, 5)},
		{"inverted", New(5, 1), text.NewRange(1, 5)},
		{"caret", NewCaret(3), text.NewRange(3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Range())
		})
	}
}

func TestSelectionInverted(t *testing.T) {
	assert.True(t, New(5, 1).IsInverted())
	assert.False(t, New(1, 5).IsInverted())
	assert.False(t, NewCaret(2).IsInverted())
}

func TestSelectionMap(t *testing.T) {
	sel := New(4, 8)

	mapped := sel.Map(text.NewInsert(0, "ab"))
	assert.Equal(t, New(6, 10), mapped)

	mapped = sel.Map(text.NewDelete(5, 7))
	assert.Equal(t, New(4, 6), mapped)
}

func TestSetSortsAndTracksPrimary(t *testing.T) {
	primary := NewCaret(20)
	set := NewSet(primary, NewCaret(3), NewCaret(11))

	all := set.All()
	assert.Equal(t, []Selection{NewCaret(3), NewCaret(11), NewCaret(20)}, all)
	assert.Equal(t, primary, set.Primary())
	assert.True(t, set.IsMulti())
}

func TestSetMergesOverlaps(t *testing.T) {
	set := NewSet(New(0, 5), New(3, 9))
	assert.Equal(t, 1, set.Count())
	assert.Equal(t, text.NewRange(0, 9), set.Primary().Range())
}

func TestSetMap(t *testing.T) {
	set := NewSet(NewCaret(10), NewCaret(2))
	mapped := set.Map(text.NewInsert(0, "xyz"))

	assert.Equal(t, NewCaret(13), mapped.Primary())
	assert.Equal(t, []Selection{NewCaret(5), NewCaret(13)}, mapped.All())
}

func TestEmptySetDefaultsToCaretAtZero(t *testing.T) {
	set := NewSet()
	assert.Equal(t, NewCaret(0), set.Primary())
	assert.Equal(t, 1, set.Count())
}
