// Package transformers maps the transformer names used in configuration to
// typed transformer factories.
//
// Each kind registers how to decode its raw option map (as read from a config
// file) into its typed options and how to build a rules.Factory from them.
// The built-in kinds register themselves in init.
package transformers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
	"github.com/guesant/marech/pkg/transformers/htmlimport"
	"github.com/guesant/marech/pkg/transformers/htmlminify"
	"github.com/guesant/marech/pkg/transformers/identity"
)

// Spec describes one registered transformer kind.
type Spec struct {
	Kind        transform.Kind
	Description string

	decode func(raw map[string]any) (transform.Options, error)
	build  func(opts transform.Options) (rules.Factory, error)
}

// Register creates a Spec for options type O. defaults supplies the values
// raw option maps are decoded over.
func Register[O transform.Options](kind transform.Kind, description string, defaults func() O, build func(O) (rules.Factory, error)) Spec {
	return Spec{
		Kind:        kind,
		Description: description,
		decode: func(raw map[string]any) (transform.Options, error) {
			opts := defaults()
			if err := DecodeInto(raw, &opts); err != nil {
				return nil, err
			}
			return opts, nil
		},
		build: func(opts transform.Options) (rules.Factory, error) {
			typed, ok := opts.(O)
			if !ok {
				return nil, errors.Newf(errors.ErrInvalidInput,
					"options of kind %s passed to transformer %s", opts.Kind(), kind)
			}
			return build(typed)
		},
	}
}

// Decode converts raw into the typed options of the kind.
func (s Spec) Decode(raw map[string]any) (transform.Options, error) {
	opts, err := s.decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid options for transformer %s", s.Kind).
			WithDetail("transformer", string(s.Kind))
	}
	return opts, nil
}

// Factory builds a rules.Factory from typed options.
func (s Spec) Factory(opts transform.Options) (rules.Factory, error) {
	factory, err := s.build(opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransformerConstruct, "cannot configure transformer %s", s.Kind).
			WithDetail("transformer", string(s.Kind))
	}
	return factory, nil
}

// Registry is a thread-safe set of transformer kinds.
type Registry struct {
	mu    sync.RWMutex
	specs map[transform.Kind]Spec
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[transform.Kind]Spec)}
}

// Add registers spec under its kind.
func (r *Registry) Add(spec Spec) error {
	if spec.Kind == "" {
		return errors.New(errors.ErrInvalidInput, "transformer kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Kind]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "transformer %s is already registered", spec.Kind)
	}
	r.specs[spec.Kind] = spec
	return nil
}

// MustAdd is like Add but panics on error. It is meant for init functions.
func (r *Registry) MustAdd(spec Spec) {
	if err := r.Add(spec); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", spec.Kind, err))
	}
}

// Lookup returns the spec registered for name. Names are matched case
// insensitively and `_` is accepted in place of `-`.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[NormalizeKind(name)]
	return spec, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []transform.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]transform.Kind, 0, len(r.specs))
	for kind := range r.specs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// NewFactory decodes raw into the options of the transformer called name and
// builds its factory.
func (r *Registry) NewFactory(name string, raw map[string]any) (rules.Factory, transform.Kind, error) {
	spec, ok := r.Lookup(name)
	if !ok {
		return nil, "", errors.Newf(errors.ErrUnknownTransformer, "unknown transformer %q", name).
			WithDetail("transformer", name).
			WithDetail("available", r.Kinds())
	}
	opts, err := spec.Decode(raw)
	if err != nil {
		return nil, spec.Kind, err
	}
	factory, err := spec.Factory(opts)
	if err != nil {
		return nil, spec.Kind, err
	}
	return factory, spec.Kind, nil
}

// FactoryFor builds the factory for already typed options.
func (r *Registry) FactoryFor(opts transform.Options) (rules.Factory, error) {
	spec, ok := r.Lookup(string(opts.Kind()))
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownTransformer, "unknown transformer %q", opts.Kind()).
			WithDetail("transformer", string(opts.Kind()))
	}
	return spec.Factory(opts)
}

// NormalizeKind returns the canonical spelling of a transformer name.
func NormalizeKind(name string) transform.Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	return transform.Kind(strings.ReplaceAll(name, "_", "-"))
}

// DecodeInto decodes raw over the current value of out, which must be a
// pointer. Keys follow the koanf struct tags and unknown keys are rejected.
func DecodeInto(raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "koanf",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

var defaultRegistry = NewRegistry()

func init() {
	defaultRegistry.MustAdd(Register(transform.KindIdentity,
		"Passes content through unchanged",
		func() identity.Options { return identity.Options{} },
		func(identity.Options) (rules.Factory, error) {
			return identity.Factory(), nil
		}))

	defaultRegistry.MustAdd(Register(transform.KindHTMLImport,
		"Replaces <import src=...> elements with the referenced file",
		htmlimport.DefaultOptions,
		func(opts htmlimport.Options) (rules.Factory, error) {
			if _, err := htmlimport.New(opts); err != nil {
				return nil, err
			}
			return htmlimport.Factory(opts), nil
		}))

	defaultRegistry.MustAdd(Register(transform.KindHTMLMinify,
		"Removes comments and collapses whitespace in HTML",
		htmlminify.DefaultOptions,
		func(opts htmlminify.Options) (rules.Factory, error) {
			return htmlminify.Factory(opts), nil
		}))
}

// Default returns the registry holding the built-in transformers.
func Default() *Registry { return defaultRegistry }

// Lookup finds a built-in transformer by name.
func Lookup(name string) (Spec, bool) { return defaultRegistry.Lookup(name) }

// Kinds lists the built-in transformer kinds.
func Kinds() []transform.Kind { return defaultRegistry.Kinds() }

// NewFactory builds a factory for a built-in transformer from raw options.
func NewFactory(name string, raw map[string]any) (rules.Factory, transform.Kind, error) {
	return defaultRegistry.NewFactory(name, raw)
}

// FactoryFor builds the factory of a built-in transformer from typed options.
func FactoryFor(opts transform.Options) (rules.Factory, error) {
	return defaultRegistry.FactoryFor(opts)
}
