package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeBasics(t *testing.T) {
	r := NewRange(2, 5)

	assert.Equal(t, 3, r.Len())
	assert.False(t, r.IsEmpty())
	assert.True(t, r.IsValid())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.True(t, r.Touches(5))
	assert.False(t, r.Touches(6))
}

func TestRangeUnion(t *testing.T) {
	assert.Equal(t, NewRange(1, 8), NewRange(3, 8).Union(NewRange(1, 4)))
	assert.Equal(t, NewRange(0, 5), NewRange(0, 1).Union(NewRange(4, 5)))
}

func TestDocumentApply(t *testing.T) {
	doc := NewDocument("hello world")

	tests := []struct {
		name   string
		change Change
		want   string
	}{
		{"insert", NewInsert(5, ","), "hello, world"},
		{"delete", NewDelete(5, 11), "hello"},
		{"replace", NewReplace(6, 11, "there"), "hello there"},
		{"prepend", NewInsert(0, ">"), ">hello world"},
		{"append", NewInsert(11, "!"), "hello world!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := doc.Apply(tt.change)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Text())
			assert.Equal(t, uint64(1), next.Revision())
			// Original snapshot is untouched.
			assert.Equal(t, "hello world", doc.Text())
		})
	}
}

func TestDocumentApplyOutOfBounds(t *testing.T) {
	doc := NewDocument("abc")

	_, err := doc.Apply(NewDelete(1, 9))
	assert.ErrorIs(t, err, ErrRangeOutOfBounds)

	_, err = doc.Apply(Change{Range: Range{From: -1, To: 0}})
	assert.ErrorIs(t, err, ErrRangeOutOfBounds)
}

func TestMapOffset(t *testing.T) {
	tests := []struct {
		name   string
		change Change
		offset ByteOffset
		assoc  Assoc
		want   ByteOffset
	}{
		{"insert before", NewInsert(2, "xx"), 5, AssocBefore, 7},
		{"insert after offset", NewInsert(7, "xx"), 5, AssocBefore, 5},
		{"insert at offset sticky", NewInsert(5, "xx"), 5, AssocBefore, 5},
		{"insert at offset moves", NewInsert(5, "xx"), 5, AssocAfter, 7},
		{"delete before", NewDelete(0, 3), 5, AssocBefore, 2},
		{"delete ending at offset", NewDelete(2, 5), 5, AssocBefore, 2},
		{"delete spanning offset", NewDelete(2, 8), 5, AssocBefore, 2},
		{"replace spanning offset", NewReplace(2, 8, "ab"), 5, AssocAfter, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.change.MapOffset(tt.offset, tt.assoc))
		})
	}
}

func TestMapRange(t *testing.T) {
	span := NewRange(4, 8)

	// Typing at the end of the span extends it.
	assert.Equal(t, NewRange(4, 10), NewInsert(8, "ab").MapRange(span))

	// Inserting at the start keeps the span anchored at From.
	assert.Equal(t, NewRange(4, 10), NewInsert(4, "ab").MapRange(span))

	// An edit before the span shifts it whole.
	assert.Equal(t, NewRange(2, 6), NewDelete(0, 2).MapRange(span))

	// Deleting across the end clamps the span.
	assert.Equal(t, NewRange(4, 6), NewDelete(6, 10).MapRange(span))
}

func TestSliceClamps(t *testing.T) {
	doc := NewDocument("short")
	assert.Equal(t, "hor", doc.Slice(1, 4))
	assert.Equal(t, "ort", doc.Slice(2, 50))
	assert.Equal(t, "", doc.Slice(4, 2))
}
