package codec

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// Codec is the per-type bundle of default derivation, editor rendering and serialization.
// ToEditDefault must return a value of the type's EditState shape for any input.
type Codec interface {
	// Empty is the value used when nothing usable is stored
	Empty(def config.FieldDefinition) any
	ToEditDefault(raw any, def config.FieldDefinition) any
	Render(value any, def config.FieldDefinition, onChange func(any)) Editor
	ToWire(value any, def config.FieldDefinition) any
}

// Registry holds one codec per field type
type Registry struct {
	codecs map[types.FieldType]Codec
}

// NewRegistry builds a registry covering every field type
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[types.FieldType]Codec)}
	for _, ft := range types.AllFieldTypes() {
		c, err := types.Visit[Codec](ft, builder{})
		if err != nil {
			// AllFieldTypes and Visit share one closed set
			panic(err)
		}
		r.codecs[ft] = c
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry
func Default() *Registry {
	return defaultRegistry
}

// Get returns the codec of a field type
func (r *Registry) Get(ft types.FieldType) (Codec, error) {
	c, ok := r.codecs[ft]
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidFieldType, "no codec for field type",
			goerr.V(model.FieldTypeKey, ft))
	}
	return c, nil
}

// builder picks the codec for each type
type builder struct{}

func (builder) Text() Codec         { return scalarCodec{widget: WidgetText} }
func (builder) Textarea() Codec     { return scalarCodec{widget: WidgetTextarea} }
func (builder) Email() Codec        { return scalarCodec{widget: WidgetEmail} }
func (builder) URL() Codec          { return scalarCodec{widget: WidgetURL} }
func (builder) Date() Codec         { return scalarCodec{widget: WidgetDate} }
func (builder) ColorPicker() Codec  { return scalarCodec{widget: WidgetColor} }
func (builder) Number() Codec       { return numberCodec{} }
func (builder) Select() Codec       { return selectCodec{} }
func (builder) Checkbox() Codec     { return checkboxCodec{} }
func (builder) TrueFalse() Codec    { return trueFalseCodec{} }
func (builder) Image() Codec        { return attachmentCodec{widget: WidgetImage} }
func (builder) File() Codec         { return attachmentCodec{widget: WidgetFile} }
func (builder) Link() Codec         { return linkCodec{} }
func (builder) Relationship() Codec { return relationshipCodec{} }
