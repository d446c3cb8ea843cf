// Package factory builds regions, selection policies and animals from
// tagged {type, data} descriptions.
package factory

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnrecognizedType is returned when no builder handles a description's type.
	ErrUnrecognizedType = errors.New("unrecognized type")
	// ErrMalformedDescription is returned when a description's data cannot be used.
	ErrMalformedDescription = errors.New("malformed description")
)

// Description is a tagged construction request. Data is kept as a raw
// node so each builder decodes its own shape.
type Description struct {
	Type string    `yaml:"type"`
	Data yaml.Node `yaml:"data"`
}

// Describe returns a description for typ with data encoded as its payload.
func Describe(typ string, data any) (Description, error) {
	d := Description{Type: typ}
	if data == nil {
		return d, nil
	}
	if err := d.Data.Encode(data); err != nil {
		return Description{}, fmt.Errorf("encoding %s data: %w", typ, err)
	}
	return d, nil
}

// Builder creates one kind of T.
type Builder[T any] interface {
	TypeTag() string
	Desc() string
	Create(data *yaml.Node) (T, error)
	// Example returns sample data, shown by Info.
	Example() map[string]any
}

// Info describes a registered builder.
type Info struct {
	Type string         `json:"type" yaml:"type"`
	Desc string         `json:"desc" yaml:"desc"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Factory dispatches descriptions to the builder registered for their type.
type Factory[T any] struct {
	builders []Builder[T]
	byTag    map[string]Builder[T]
}

// New creates a factory over builders. A later builder with the same tag
// replaces an earlier one.
func New[T any](builders ...Builder[T]) *Factory[T] {
	f := &Factory[T]{byTag: make(map[string]Builder[T], len(builders))}
	for _, b := range builders {
		f.Register(b)
	}
	return f
}

// Register adds b to the factory.
func (f *Factory[T]) Register(b Builder[T]) {
	if _, dup := f.byTag[b.TypeTag()]; !dup {
		f.builders = append(f.builders, b)
	} else {
		for i, old := range f.builders {
			if old.TypeTag() == b.TypeTag() {
				f.builders[i] = b
			}
		}
	}
	f.byTag[b.TypeTag()] = b
}

// Create builds the instance described by d.
func (f *Factory[T]) Create(d Description) (T, error) {
	b, ok := f.byTag[d.Type]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%q: %w", d.Type, ErrUnrecognizedType)
	}
	v, err := b.Create(&d.Data)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("creating %s: %w", d.Type, err)
	}
	return v, nil
}

// Info lists the registered builders in registration order.
func (f *Factory[T]) Info() []Info {
	out := make([]Info, len(f.builders))
	for i, b := range f.builders {
		out[i] = Info{Type: b.TypeTag(), Desc: b.Desc(), Data: b.Example()}
	}
	return out
}

// builder adapts a function to Builder.
type builder[T any] struct {
	tag     string
	desc    string
	example map[string]any
	create  func(data *yaml.Node) (T, error)
}

func (b builder[T]) TypeTag() string                   { return b.tag }
func (b builder[T]) Desc() string                      { return b.desc }
func (b builder[T]) Example() map[string]any           { return b.example }
func (b builder[T]) Create(data *yaml.Node) (T, error) { return b.create(data) }

// isEmpty reports whether a data node carries nothing: absent, null or {}.
func isEmpty(n *yaml.Node) bool {
	if n == nil || n.Kind == 0 {
		return true
	}
	switch n.Kind {
	case yaml.MappingNode:
		return len(n.Content) == 0
	case yaml.ScalarNode:
		return n.Tag == "!!null"
	}
	return false
}

// decode fills v from data, leaving v untouched when data is empty.
func decode(data *yaml.Node, v any) error {
	if isEmpty(data) {
		return nil
	}
	if data.Kind != yaml.MappingNode {
		return fmt.Errorf("data must be a mapping: %w", ErrMalformedDescription)
	}
	if err := data.Decode(v); err != nil {
		return fmt.Errorf("%v: %w", err, ErrMalformedDescription)
	}
	return nil
}
