package cwidget

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// field is the label, entry and error line shared by the form widgets.
type field struct {
	label   *widget.Label
	entry   *widget.Entry
	message *widget.Label
}

func newField(label, placeholder string) field {
	f := field{
		label:   widget.NewLabel(label),
		entry:   widget.NewEntry(),
		message: widget.NewLabel(""),
	}

	f.entry.SetPlaceHolder(placeholder)

	f.message.Hidden = true
	f.message.TextStyle = fyne.TextStyle{Italic: true}
	f.message.Importance = widget.DangerImportance

	return f
}

// setError shows err under the entry, or hides the line when err is nil.
func (f field) setError(err error) {
	f.message.Hidden = err == nil
	if err != nil {
		f.message.SetText(err.Error())
	}
	f.message.Refresh()
}
