// Package toolregistry adapts externally supplied tool callables into the
// interpreter's Callable value, classifying their return payloads by
// provenance per spec §4.6, and validating declared parameter/result
// shapes against JSON Schema (spec §6.2) the way the teacher validates
// ToolSpec payload/result schemas.
package toolregistry

import (
	"context"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// ParamSpec names one declared parameter and whether it is required; the
// adapter uses ParamSpecs, in order, to zip positional call arguments to
// names before building the kwargs map the policy engine sees.
type ParamSpec struct {
	Name     string
	Required bool
}

// Classifier assigns capabilities to a tool's raw return payload, given the
// tool's own name and the kwargs it was called with (spec §4.6's
// "per-tool mapping"). It does not need the interpreter's dependency
// context: the call boundary folds the tool's own Capabilities together
// with the call-site dependencies afterward.
type Classifier func(toolName string, kwargs map[string]value.Value, raw any) capabilities.Capabilities

// Fn is the underlying Go implementation a Tool calls. It receives already
// name-zipped, unwrapped (raw) arguments and returns a raw payload or error.
type Fn func(ctx context.Context, args map[string]any) (any, error)

// ToolSpec is the fully qualified tool description named in spec §6.2: a
// name, a callable, and declared parameter/return schemas.
type ToolSpec struct {
	Name         string
	Description  string
	Params       []ParamSpec
	ParamSchema  []byte // raw JSON Schema source, compiled at Register time
	ReturnSchema []byte
	Fn           Fn
	Classify     Classifier
	NoSideEffect bool
}

// Tool is the registered, schema-compiled form of a ToolSpec.
type Tool struct {
	Spec         ToolSpec
	paramSchema  *jsonschema.Schema
	returnSchema *jsonschema.Schema
}

// Registry is a read-only-during-execution map of tool name to Tool (spec
// §5's "the tool registry ... are read-only during execution").
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]*Tool{}}
}

// Register compiles the spec's schemas and adds it to the registry. It
// rejects an empty or duplicate name and a schema that does not compile;
// arguments and return values are checked against the schemas later, on
// each Invoke. The classification rule is not checked against the schemas.
func (r *Registry) Register(spec ToolSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("toolregistry: tool name must not be empty")
	}
	if _, exists := r.tools[spec.Name]; exists {
		return fmt.Errorf("toolregistry: tool %q already registered", spec.Name)
	}
	t := &Tool{Spec: spec}
	if len(spec.ParamSchema) > 0 {
		s, err := compileSchema(spec.Name+"#params", spec.ParamSchema)
		if err != nil {
			return fmt.Errorf("toolregistry: %s: param schema: %w", spec.Name, err)
		}
		t.paramSchema = s
	}
	if len(spec.ReturnSchema) > 0 {
		s, err := compileSchema(spec.Name+"#return", spec.ReturnSchema)
		if err != nil {
			return fmt.Errorf("toolregistry: %s: return schema: %w", spec.Name, err)
		}
		t.returnSchema = s
	}
	r.tools[spec.Name] = t
	return nil
}

func compileSchema(resourceName string, raw []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytesReader(raw))
	if err != nil {
		return nil, err
	}
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, err
	}
	return c.Compile(resourceName)
}

// Get looks up a registered tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// NoSideEffectNames returns every registered tool name flagged as
// no-side-effect, for seeding a policy engine's bypass set.
func (r *Registry) NoSideEffectNames() []string {
	var out []string
	for name, t := range r.tools {
		if t.Spec.NoSideEffect {
			out = append(out, name)
		}
	}
	return out
}

// ValidateParams checks kwargs against the tool's declared param schema, if
// one was provided.
func (t *Tool) ValidateParams(kwargs map[string]any) error {
	if t.paramSchema == nil {
		return nil
	}
	return t.paramSchema.Validate(kwargs)
}

// ValidateReturn checks a raw return payload against the tool's declared
// return schema, if one was provided.
func (t *Tool) ValidateReturn(raw any) error {
	if t.returnSchema == nil {
		return nil
	}
	return t.returnSchema.Validate(raw)
}
