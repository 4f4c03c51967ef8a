package cwidget

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ToggleEntry is a check box enabling a labelled text entry. The entry keeps
// its text while disabled. While checked, Validate runs on every edit and its
// error is shown under the entry.
type ToggleEntry struct {
	widget.BaseWidget
	field

	check    *widget.Check
	Validate func(string) error
}

func NewToggleEntry(label, placeholder string, validate func(string) error) *ToggleEntry {
	t := &ToggleEntry{
		field:    newField(label, placeholder),
		Validate: validate,
	}

	t.label.SizeName = theme.SizeNameCaptionText
	t.label.TextStyle = fyne.TextStyle{Italic: true}

	t.entry.Disable()
	t.entry.OnChanged = func(string) { t.revalidate() }

	t.check = widget.NewCheck("", func(on bool) {
		if on {
			t.entry.Enable()
		} else {
			t.entry.Disable()
		}
		t.revalidate()
	})

	t.ExtendBaseWidget(t)

	return t
}

// revalidate skips empty and disabled entries; Confirm reports those.
func (t *ToggleEntry) revalidate() {
	if !t.check.Checked || t.entry.Text == "" || t.Validate == nil {
		t.setError(nil)
		return
	}
	t.setError(t.Validate(t.entry.Text))
}

func (t *ToggleEntry) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewVBox(
		t.label,
		container.NewBorder(nil, nil, t.check, nil, t.entry),
		t.message,
	)

	return widget.NewSimpleRenderer(c)
}

func (t *ToggleEntry) Checked() bool {
	return t.check.Checked
}

func (t *ToggleEntry) SetChecked(on bool) {
	t.check.SetChecked(on)
}

func (t *ToggleEntry) Text() string {
	return t.entry.Text
}

func (t *ToggleEntry) SetText(text string) {
	t.entry.SetText(text)
}

// Valid reports whether the error line is hidden.
func (t *ToggleEntry) Valid() bool {
	return t.message.Hidden
}

// Reset unchecks the box and clears the entry.
func (t *ToggleEntry) Reset() {
	t.check.SetChecked(false)
	t.entry.SetText("")
}
