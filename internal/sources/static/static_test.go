package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
	"github.com/vellum-editor/vellum/internal/cursor"
	"github.com/vellum-editor/vellum/internal/text"
)

func TestCompletesConfiguredEntries(t *testing.T) {
	s := New(config.Static{Entries: []config.StaticEntry{
		{Label: "printf", Detail: "format print", Insert: "printf(\"\")"},
		{Label: "println"},
		{Label: ""},
	}})

	e := complete.New(complete.Options{Sources: []complete.Source{s}})
	e.Reset(text.NewDocument("pri"), cursor.NewSetAt(3))
	e.StartCompletion()
	e.Sync(context.Background())

	st := e.State()
	require.NotNil(t, st)
	require.Len(t, st.Options, 2)
	assert.Equal(t, "printf", st.Options[0].Label)
	assert.Equal(t, "format print", st.Options[0].Detail)

	acc, ok := e.AcceptCompletion()
	require.True(t, ok)
	assert.Equal(t, "printf(\"\")", acc.Doc.Text())
}

func TestEmptyListYieldsNothing(t *testing.T) {
	s := New(config.Static{})
	e := complete.New(complete.Options{Sources: []complete.Source{s}})
	e.Reset(text.NewDocument("x"), cursor.NewSetAt(1))
	e.StartCompletion()
	e.Sync(context.Background())
	assert.Nil(t, e.State())
}
