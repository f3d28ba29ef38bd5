package extract

import (
	"context"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func TestAssemblePage(t *testing.T) {
	e := NewExtractor()

	t.Run("Orders Top To Bottom Then Left To Right", func(t *testing.T) {
		frags := []pdf.Text{
			{S: "world", X: 60, Y: 700, W: 25},
			{S: "Second", X: 10, Y: 680, W: 30},
			{S: "Hello", X: 10, Y: 700, W: 25},
		}
		got := e.assemblePage(frags)
		assert.Equal(t, "Hello world\nSecond", got)
	})

	t.Run("Synthetic Space On Wide Gap", func(t *testing.T) {
		// "ab" ends at x=20, avg glyph width 5. Next fragment starts at 30:
		// gap of 10 > 5, so a space is inserted.
		frags := []pdf.Text{
			{S: "ab", X: 10, Y: 500, W: 10},
			{S: "cd", X: 30, Y: 500, W: 10},
		}
		assert.Equal(t, "ab cd", e.assemblePage(frags))
	})

	t.Run("No Space Within Word", func(t *testing.T) {
		// Adjacent fragments of one word: gap 0, no space.
		frags := []pdf.Text{
			{S: "Hel", X: 10, Y: 500, W: 15},
			{S: "lo", X: 25, Y: 500, W: 10},
		}
		assert.Equal(t, "Hello", e.assemblePage(frags))
	})

	t.Run("Vertical Tolerance Groups Lines", func(t *testing.T) {
		// 1.5pt apart: same visual line despite slightly different baselines.
		frags := []pdf.Text{
			{S: "left", X: 10, Y: 500, W: 20},
			{S: "right", X: 200, Y: 498.5, W: 25},
		}
		assert.Equal(t, "left right", e.assemblePage(frags))
	})

	t.Run("Beyond Tolerance Splits Lines", func(t *testing.T) {
		frags := []pdf.Text{
			{S: "first", X: 10, Y: 500, W: 20},
			{S: "second", X: 10, Y: 490, W: 25},
		}
		assert.Equal(t, "first\nsecond", e.assemblePage(frags))
	})

	t.Run("Empty Fragments Dropped", func(t *testing.T) {
		frags := []pdf.Text{
			{S: "", X: 10, Y: 500, W: 0},
			{S: "only", X: 20, Y: 500, W: 20},
		}
		assert.Equal(t, "only", e.assemblePage(frags))
	})

	t.Run("No Fragments", func(t *testing.T) {
		assert.Equal(t, "", e.assemblePage(nil))
	})
}

func TestExtractFile_MissingFile(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractFile(context.Background(), "testdata/does-not-exist.pdf")
	assert.Error(t, err)
}

func TestAvgGlyphWidth(t *testing.T) {
	assert.Equal(t, 5.0, avgGlyphWidth(pdf.Text{S: "ab", W: 10}))
	assert.Equal(t, 0.0, avgGlyphWidth(pdf.Text{S: "", W: 10}))
}
