package cwidget

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var ErrNotPositive = errors.New("value must be greater than zero")

// Input is a labelled entry holding one setting. Accepted values are shown in
// the label and passed to OnChanged; an empty entry means DefaultValue.
type Input[T any] struct {
	widget.BaseWidget
	field

	LabelText    string
	DefaultValue T
	OnChanged    func(T)
	Parse        func(string) (T, error)
}

func NewInput[T any](label, placeholder string, defaultValue T, parse func(string) (T, error), onChanged func(T)) *Input[T] {
	input := &Input[T]{
		field:        newField("", placeholder),
		LabelText:    label,
		DefaultValue: defaultValue,
		OnChanged:    onChanged,
		Parse:        parse,
	}

	input.label.TextStyle = fyne.TextStyle{Bold: true}
	input.showValue(defaultValue)

	input.entry.OnChanged = func(s string) {
		res, err := input.value(s)
		input.setError(err)
		if err != nil {
			return
		}

		if input.OnChanged != nil {
			input.OnChanged(res)
		}
		input.showValue(res)
	}

	input.ExtendBaseWidget(input)

	return input
}

func NewIntInput(label, placeholder string, defaultValue int, onChanged func(int)) *Input[int] {
	return NewInput(label, placeholder, defaultValue, PositiveInt, onChanged)
}

// PositiveInt parses a whole number greater than zero.
func PositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v <= 0 {
		return 0, ErrNotPositive
	}
	return v, nil
}

func (item *Input[T]) value(s string) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return item.DefaultValue, nil
	}
	return item.Parse(s)
}

func (item *Input[T]) showValue(v T) {
	item.label.SetText(fmt.Sprintf("%s: %v", item.LabelText, v))
}

func (item *Input[T]) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewVBox(item.label, item.entry, item.message))
}

func (item *Input[T]) SetError(err error) {
	item.setError(err)
}

func (item *Input[T]) SetText(text string) {
	item.entry.SetText(text)
}
