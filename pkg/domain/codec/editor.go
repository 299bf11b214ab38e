package codec

import (
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// Widget names the interactive control a UI shell should draw
type Widget string

const (
	WidgetText         Widget = "input:text"
	WidgetTextarea     Widget = "textarea"
	WidgetEmail        Widget = "input:email"
	WidgetURL          Widget = "input:url"
	WidgetNumber       Widget = "input:number"
	WidgetDate         Widget = "input:date"
	WidgetColor        Widget = "color"
	WidgetSelect       Widget = "select"
	WidgetCheckbox     Widget = "checkbox-group"
	WidgetToggle       Widget = "toggle"
	WidgetImage        Widget = "attachment:image"
	WidgetFile         Widget = "attachment:file"
	WidgetLink         Widget = "link"
	WidgetRelationship Widget = "relationship"
)

// Option is one entry of a select or checkbox group
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Constraints carries the type-specific limits and decorations of a control
type Constraints struct {
	Min       *float64           `json:"min,omitempty"`
	Max       *float64           `json:"max,omitempty"`
	Step      *float64           `json:"step,omitempty"`
	Prepend   string             `json:"prepend,omitempty"`
	Append    string             `json:"append,omitempty"`
	Rows      int                `json:"rows,omitempty"`
	Layout    string             `json:"layout,omitempty"`
	OnText    string             `json:"on_text,omitempty"`
	OffText   string             `json:"off_text,omitempty"`
	MaxItems  int                `json:"max_items,omitempty"`
	PostTypes []types.EntityKind `json:"post_types,omitempty"`
}

// Editor is a framework-neutral description of one field's control. Set and Toggle hand the
// field's new value to the onChange callback given to Render.
type Editor struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Instructions string          `json:"instructions,omitempty"`
	Type         types.FieldType `json:"type"`
	Widget       Widget          `json:"widget"`
	Required     bool            `json:"required,omitempty"`
	Value        any             `json:"value"`
	Options      []Option        `json:"options,omitempty"`
	Constraints  Constraints     `json:"constraints"`

	onChange func(any)
	toggle   func(current any, key string) any
	current  func() any
}

func newEditor(def config.FieldDefinition, widget Widget, value any, onChange func(any)) Editor {
	return Editor{
		Name:         def.Name,
		Label:        def.Label,
		Instructions: def.Instructions,
		Type:         def.Type,
		Widget:       widget,
		Required:     def.Required,
		Value:        value,
		onChange:     onChange,
	}
}

// Set replaces the field's value
func (e Editor) Set(value any) {
	if e.onChange != nil {
		e.onChange(value)
	}
}

// WithCurrent makes Toggle read the field's value from fn instead of the value the editor
// was rendered with, so repeated toggles through one editor accumulate.
func (e Editor) WithCurrent(fn func() any) Editor {
	e.current = fn
	return e
}

// Toggle flips set membership of key for checkbox and relationship editors.
// It reports false for editors without set semantics.
func (e Editor) Toggle(key string) bool {
	if e.toggle == nil {
		return false
	}
	value := e.Value
	if e.current != nil {
		value = e.current()
	}
	e.Set(e.toggle(value, key))
	return true
}
