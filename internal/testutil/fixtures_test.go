package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plotcheck/internal/scene"
)

func TestFigureBuilder_Build(t *testing.T) {
	b := NewFigure().
		Subplot("ax0", Points("o", "#f00", "#0f0")).
		Legend(LegendAt(Corner, ColorEntries("#f00", "#0f0")...)).
		Subplot("ax1", Lines("#00f")).
		FigureLegend(LegendAt(Corner, Entry("all", scene.Raw{Color: "#000"})))

	fig := b.Build()
	require.NoError(t, fig.Validate())
	require.Len(t, fig.Subplots(), 2)
	assert.Equal(t, DefaultCanvas, fig.Canvas())
	assert.Equal(t, 2, fig.Plots[0].Groups[0].Len())
	require.NotNil(t, fig.Plots[0].Legend)
	assert.Nil(t, fig.Plots[1].Legend)
	assert.Len(t, fig.FigureLegends(), 1)
}

func TestFigureBuilder_BuildsIndependentCopies(t *testing.T) {
	b := NewFigure().Subplot("ax0", Points("o", "#f00")).Legend(LegendAt(Corner, ColorEntries("#f00")...))

	first := b.Build()
	first.Plots[0].Legend.Entries[0].Label = "changed"
	first.Plots[0].Groups = nil

	second := b.Build()
	assert.Equal(t, "#f00", second.Plots[0].Legend.Entries[0].Label)
	assert.Len(t, second.Plots[0].Groups, 1)
}

func TestTrackingScene_CountsCloses(t *testing.T) {
	tr := Track(NewFigure().Build())
	assert.False(t, tr.Closed())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, tr.Closes())
	assert.True(t, tr.Closed())
}

func TestTrackingScene_CloseErr(t *testing.T) {
	boom := errors.New("boom")
	tr := Track(NewFigure().Build())
	tr.CloseErr = boom
	assert.ErrorIs(t, tr.Close(), boom)
}
