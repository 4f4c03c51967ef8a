package cwidget

import (
	"errors"
	"strconv"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestIntInput(t *testing.T) {
	test.NewApp()

	var got []int
	input := NewIntInput("FPS", "Enter integer", 30, func(i int) {
		got = append(got, i)
	})
	assert.Equal(t, "FPS: 30", input.label.Text)

	input.SetText("12")
	assert.Equal(t, []int{12}, got)
	assert.Equal(t, "FPS: 12", input.label.Text)
	assert.True(t, input.message.Hidden)

	input.SetText("0")
	assert.Equal(t, []int{12}, got)
	assert.False(t, input.message.Hidden)
	assert.Equal(t, ErrNotPositive.Error(), input.message.Text)

	input.SetText("abc")
	assert.Equal(t, []int{12}, got)
	assert.False(t, input.message.Hidden)
	assert.Equal(t, "FPS: 12", input.label.Text)

	// an empty entry falls back to the default
	input.SetText("")
	assert.Equal(t, []int{12, 30}, got)
	assert.True(t, input.message.Hidden)
}

func TestInput_CustomParse(t *testing.T) {
	test.NewApp()

	var got float64
	input := NewInput("Scale", "1.1", 1.1, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}, func(v float64) { got = v })

	input.SetText("1.3")
	assert.InDelta(t, 1.3, got, 1e-9)
	assert.Equal(t, "Scale: 1.3", input.label.Text)
}

func TestPositiveInt(t *testing.T) {
	v, err := PositiveInt("5")
	assert.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = PositiveInt("-5")
	assert.ErrorIs(t, err, ErrNotPositive)

	_, err = PositiveInt("five")
	assert.Error(t, err)
}

func TestToggleEntry(t *testing.T) {
	test.NewApp()

	toggle := NewToggleEntry("Brightness (0 to 255)", "0-255", nil)
	assert.False(t, toggle.Checked())
	assert.True(t, toggle.entry.Disabled())

	test.Tap(toggle.check)
	assert.True(t, toggle.Checked())
	assert.False(t, toggle.entry.Disabled())

	toggle.SetText("40")
	assert.Equal(t, "40", toggle.Text())
	assert.True(t, toggle.Valid())

	toggle.Reset()
	assert.False(t, toggle.Checked())
	assert.Empty(t, toggle.Text())
	assert.True(t, toggle.entry.Disabled())
}

func TestToggleEntry_Validate(t *testing.T) {
	test.NewApp()

	errOdd := errors.New("must be odd")
	toggle := NewToggleEntry("Kernel", "3, 5, 7...", func(s string) error {
		if s != "3" {
			return errOdd
		}
		return nil
	})

	// nothing is reported while unchecked
	toggle.SetText("4")
	assert.True(t, toggle.Valid())

	toggle.SetChecked(true)
	assert.False(t, toggle.Valid())
	assert.Equal(t, "must be odd", toggle.message.Text)

	toggle.SetText("3")
	assert.True(t, toggle.Valid())

	toggle.SetText("")
	assert.True(t, toggle.Valid())

	toggle.SetText("8")
	assert.False(t, toggle.Valid())

	toggle.Reset()
	assert.True(t, toggle.Valid())
}
