package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/havonz/file-split-packer/internal/model"
)

// Mode selects the operation the form submits.
type Mode int

const (
	ModeSplit Mode = iota
	ModeRestore
)

func (m Mode) String() string {
	if m == ModeRestore {
		return "restore"
	}
	return "split"
}

type fieldID int

const (
	fieldMode fieldID = iota
	fieldInput
	fieldOutput
	fieldStrategy
	fieldUnit
	fieldValue
	fieldPassword
	fieldOverwrite
	fieldExtract
	numFields
)

var fieldLabels = [numFields]string{
	fieldMode:      "Mode",
	fieldInput:     "Input",
	fieldOutput:    "Output dir",
	fieldStrategy:  "Strategy",
	fieldUnit:      "Split by",
	fieldValue:     "Part size",
	fieldPassword:  "Password",
	fieldOverwrite: "Overwrite",
	fieldExtract:   "Auto-extract",
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 60
	return ti
}

// visible reports whether id applies to the current mode.
func (m *Model) visible(id fieldID) bool {
	switch id {
	case fieldUnit, fieldValue, fieldOverwrite:
		return m.mode == ModeSplit
	case fieldExtract:
		return m.mode == ModeRestore
	default:
		return id >= 0 && id < numFields
	}
}

// textField returns the input backing id, or nil for toggles.
func (m *Model) textField(id fieldID) *textinput.Model {
	switch id {
	case fieldInput:
		return &m.input
	case fieldOutput:
		return &m.output
	case fieldValue:
		return &m.value
	case fieldPassword:
		return &m.password
	default:
		return nil
	}
}

// moveFocus steps through visible fields, wrapping at both ends.
func (m *Model) moveFocus(step int) {
	next := m.focus
	for range numFields {
		next = (next + fieldID(step) + numFields) % numFields
		if m.visible(next) {
			break
		}
	}
	m.setFocus(next)
}

func (m *Model) setFocus(id fieldID) {
	for f := range numFields {
		if ti := m.textField(f); ti != nil {
			ti.Blur()
		}
	}
	m.focus = id
	if ti := m.textField(id); ti != nil {
		ti.Focus()
	}
}

// toggle flips the focused toggle field. It returns false when the
// focused field is a text input.
func (m *Model) toggle() bool {
	switch m.focus {
	case fieldMode:
		if m.mode == ModeSplit {
			m.mode = ModeRestore
		} else {
			m.mode = ModeSplit
		}
	case fieldStrategy:
		if m.strategy == model.SplitThenZip {
			m.strategy = model.ZipThenSplit
		} else {
			m.strategy = model.SplitThenZip
		}
	case fieldUnit:
		if m.unit == model.SplitBySize {
			m.unit = model.SplitByCount
			m.value.SetValue(strconv.FormatUint(m.settings.PartCount, 10))
		} else {
			m.unit = model.SplitBySize
			m.value.SetValue(m.settings.PartSize)
		}
	case fieldOverwrite:
		m.overwrite = !m.overwrite
	case fieldExtract:
		m.extract = !m.extract
	default:
		return false
	}
	return true
}

func (m Model) viewForm() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Options:"))
	b.WriteString("\n\n")

	for id := range numFields {
		if !m.visible(id) {
			continue
		}

		cursor := "  "
		label := fieldLabels[id]
		if id == fieldValue && m.unit == model.SplitByCount {
			label = "Part count"
		}
		label = fmt.Sprintf("%-13s", label)
		if id == m.focus {
			cursor = focusStyle.Render("› ")
			label = focusStyle.Render(label)
		} else {
			label = infoStyle.Render(label)
		}

		b.WriteString(cursor)
		b.WriteString(label)
		b.WriteString(m.renderField(id))
		b.WriteString("\n")
	}

	if m.formErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.formErr.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderField(id fieldID) string {
	if ti := m.textField(id); ti != nil {
		return ti.View()
	}
	switch id {
	case fieldMode:
		return choice(m.mode == ModeSplit, "split", "restore")
	case fieldStrategy:
		return choice(m.strategy == model.SplitThenZip, model.SplitThenZip.String(), model.ZipThenSplit.String())
	case fieldUnit:
		return choice(m.unit == model.SplitBySize, "size", "count")
	case fieldOverwrite:
		return checkbox(m.overwrite)
	case fieldExtract:
		return checkbox(m.extract)
	}
	return ""
}

// choice renders a two-way toggle with the active side highlighted.
func choice(first bool, a, b string) string {
	if first {
		return selectedStyle.Render(a) + dimStyle.Render(" / "+b)
	}
	return dimStyle.Render(a+" / ") + selectedStyle.Render(b)
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}
