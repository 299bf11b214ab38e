package types

import "github.com/m-mizutani/goerr/v2"

// FieldType represents the type of a custom field
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeTextarea     FieldType = "textarea"
	FieldTypeEmail        FieldType = "email"
	FieldTypeURL          FieldType = "url"
	FieldTypeNumber       FieldType = "number"
	FieldTypeDate         FieldType = "date"
	FieldTypeSelect       FieldType = "select"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeTrueFalse    FieldType = "true_false"
	FieldTypeImage        FieldType = "image"
	FieldTypeFile         FieldType = "file"
	FieldTypeLink         FieldType = "link"
	FieldTypeColorPicker  FieldType = "color_picker"
	FieldTypeRelationship FieldType = "relationship"
)

// ErrUnsupportedFieldType is returned by Visit for a type outside the closed set
var ErrUnsupportedFieldType = goerr.New("unsupported field type")

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeEmail,
		FieldTypeURL,
		FieldTypeNumber,
		FieldTypeDate,
		FieldTypeSelect,
		FieldTypeCheckbox,
		FieldTypeTrueFalse,
		FieldTypeImage,
		FieldTypeFile,
		FieldTypeLink,
		FieldTypeColorPicker,
		FieldTypeRelationship,
	}
}

// IsValid checks if the field type is valid
func (t FieldType) IsValid() bool {
	_, err := Visit[struct{}](t, validVisitor{})
	return err == nil
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}

// Visitor has one method per field type. Visit is the only place that switches on the
// FieldType string, so an implementation that misses a type fails to compile.
type Visitor[T any] interface {
	Text() T
	Textarea() T
	Email() T
	URL() T
	Number() T
	Date() T
	Select() T
	Checkbox() T
	TrueFalse() T
	Image() T
	File() T
	Link() T
	ColorPicker() T
	Relationship() T
}

// Visit dispatches t to the matching Visitor method
func Visit[T any](t FieldType, v Visitor[T]) (T, error) {
	switch t {
	case FieldTypeText:
		return v.Text(), nil
	case FieldTypeTextarea:
		return v.Textarea(), nil
	case FieldTypeEmail:
		return v.Email(), nil
	case FieldTypeURL:
		return v.URL(), nil
	case FieldTypeNumber:
		return v.Number(), nil
	case FieldTypeDate:
		return v.Date(), nil
	case FieldTypeSelect:
		return v.Select(), nil
	case FieldTypeCheckbox:
		return v.Checkbox(), nil
	case FieldTypeTrueFalse:
		return v.TrueFalse(), nil
	case FieldTypeImage:
		return v.Image(), nil
	case FieldTypeFile:
		return v.File(), nil
	case FieldTypeLink:
		return v.Link(), nil
	case FieldTypeColorPicker:
		return v.ColorPicker(), nil
	case FieldTypeRelationship:
		return v.Relationship(), nil
	default:
		var zero T
		return zero, goerr.Wrap(ErrUnsupportedFieldType, "cannot dispatch field type",
			goerr.V("field_type", string(t)))
	}
}

type validVisitor struct{}

func (validVisitor) Text() struct{}         { return struct{}{} }
func (validVisitor) Textarea() struct{}     { return struct{}{} }
func (validVisitor) Email() struct{}        { return struct{}{} }
func (validVisitor) URL() struct{}          { return struct{}{} }
func (validVisitor) Number() struct{}       { return struct{}{} }
func (validVisitor) Date() struct{}         { return struct{}{} }
func (validVisitor) Select() struct{}       { return struct{}{} }
func (validVisitor) Checkbox() struct{}     { return struct{}{} }
func (validVisitor) TrueFalse() struct{}    { return struct{}{} }
func (validVisitor) Image() struct{}        { return struct{}{} }
func (validVisitor) File() struct{}         { return struct{}{} }
func (validVisitor) Link() struct{}         { return struct{}{} }
func (validVisitor) ColorPicker() struct{}  { return struct{}{} }
func (validVisitor) Relationship() struct{} { return struct{}{} }

// IsArrayShaped reports whether the backend stores this type as a list by default
func (t FieldType) IsArrayShaped() bool {
	return t == FieldTypeRelationship || t == FieldTypeCheckbox
}
