package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tale/pkg/adapters/btree"
	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
	"github.com/aretw0/tale/pkg/registry"
)

// Story is a story file turned into a definition tree.
type Story struct {
	Name   string
	Values map[string]any
	Root   *plot.Definition
}

// document is the top level of a story file.
type document struct {
	Name  string         `yaml:"name"`
	Scope map[string]any `yaml:"scope"`
	Story []any          `yaml:"story"`
}

// stepSpec is one entry of a step list. Exactly one kind key must be set.
type stepSpec struct {
	Name string `mapstructure:"name"`

	Print  any            `mapstructure:"print"`
	Log    any            `mapstructure:"log"`
	Set    map[string]any `mapstructure:"set"`
	Action string         `mapstructure:"action"`
	Args   map[string]any `mapstructure:"args"`
	Save   string         `mapstructure:"save"`
	Delay  any            `mapstructure:"delay"`
	Wait   string         `mapstructure:"wait"`

	Sequence []any `mapstructure:"sequence"`
	Group    []any `mapstructure:"group"`
	Loop     []any `mapstructure:"loop"`
	Ignore   []any `mapstructure:"ignore"`

	Switch *string        `mapstructure:"switch"`
	Cases  map[string]any `mapstructure:"cases"`

	Live any   `mapstructure:"live"`
	Do   []any `mapstructure:"do"`

	Behavior any `mapstructure:"behavior"`
}

// Loader reads story files.
type Loader struct {
	types   *plot.Registry
	actions *registry.Registry
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithTypes sets the node type registry. Defaults to the built-in types plus Behavior.
func WithTypes(reg *plot.Registry) LoaderOption {
	return func(l *Loader) {
		l.types = reg
	}
}

// WithActions sets the host action registry used by print, log, set and action steps.
func WithActions(actions *registry.Registry) LoaderOption {
	return func(l *Loader) {
		l.actions = actions
	}
}

// NewLoader creates a loader. Without WithActions it uses the standard actions printing to out.
func NewLoader(out io.Writer, opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.types == nil {
		l.types = builtin.NewRegistry()
		if err := btree.Define(l.types); err != nil {
			panic(err)
		}
	}
	if l.actions == nil {
		if out == nil {
			out = os.Stdout
		}
		l.actions = registry.NewRegistry()
		registry.RegisterStd(l.actions, out)
	}
	return l
}

// Actions returns the host action registry.
func (l *Loader) Actions() *registry.Registry {
	return l.actions
}

// Load reads and builds the story at path.
func (l *Loader) Load(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story: %w", err)
	}
	story, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if story.Name == "" {
		story.Name = trimExt(filepath.Base(path))
	}
	return story, nil
}

// Parse builds a story from YAML bytes.
func (l *Loader) Parse(data []byte) (*Story, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	if len(doc.Story) == 0 {
		return nil, &domain.InvalidNodeError{Reason: "story has no steps"}
	}

	root, err := l.steps(builtin.TypeSequence, doc.Name, doc.Story)
	if err != nil {
		return nil, err
	}
	return &Story{Name: doc.Name, Values: doc.Scope, Root: root}, nil
}

// steps builds a container of the given kind over a list of step entries.
func (l *Loader) steps(kind, name string, entries []any) (*plot.Definition, error) {
	args := make([]any, 0, len(entries))
	for i, e := range entries {
		def, err := l.step(e)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		args = append(args, def)
	}
	return l.node(kind, name, args...)
}

func (l *Loader) node(kind, name string, args ...any) (*plot.Definition, error) {
	literal := args
	if name != "" {
		literal = append([]any{"@" + name}, args...)
	}
	return l.types.Build(kind, literal)
}

// step builds one entry: a mapping with one kind key, or a nested list (a Group).
func (l *Loader) step(entry any) (*plot.Definition, error) {
	if list, ok := entry.([]any); ok {
		return l.steps(builtin.TypeGroup, "", list)
	}
	raw, err := cast.ToStringMapE(entry)
	if err != nil {
		return nil, &domain.InvalidNodeError{Value: entry, Reason: "step must be a mapping or a list"}
	}

	var spec stepSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &spec,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &domain.InvalidNodeError{Value: entry, Reason: err.Error()}
	}
	if kinds := spec.kinds(); len(kinds) != 1 {
		return nil, &domain.InvalidNodeError{Value: entry, Reason: fmt.Sprintf("step needs exactly one kind, got %v", kinds)}
	}
	return l.build(&spec)
}

func (spec *stepSpec) kinds() []string {
	set := map[string]bool{
		"print":    spec.Print != nil,
		"log":      spec.Log != nil,
		"set":      spec.Set != nil,
		"action":   spec.Action != "",
		"delay":    spec.Delay != nil,
		"wait":     spec.Wait != "",
		"sequence": spec.Sequence != nil,
		"group":    spec.Group != nil,
		"loop":     spec.Loop != nil,
		"ignore":   spec.Ignore != nil,
		"switch":   spec.Switch != nil,
		"live":     spec.Live != nil,
		"behavior": spec.Behavior != nil,
	}
	var kinds []string
	for k, on := range set {
		if on {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	return kinds
}

func (l *Loader) build(spec *stepSpec) (*plot.Definition, error) {
	switch {
	case spec.Print != nil:
		return l.action(spec.Name, "print", map[string]any{"text": cast.ToString(spec.Print)}, spec.Save)
	case spec.Log != nil:
		args := map[string]any{"msg": cast.ToString(spec.Log)}
		for k, v := range spec.Args {
			args[k] = v
		}
		return l.action(spec.Name, "log", args, spec.Save)
	case spec.Set != nil:
		return l.action(spec.Name, "set", spec.Set, "")
	case spec.Action != "":
		return l.action(spec.Name, spec.Action, spec.Args, spec.Save)
	case spec.Delay != nil:
		return l.node(builtin.TypeDelay, spec.Name, spec.Delay)
	case spec.Wait != "":
		key := spec.Wait
		return l.node(builtin.TypeAction, spec.Name, func(in *plot.Instance) bool {
			return !cast.ToBool(in.Read(key))
		})
	case spec.Sequence != nil:
		return l.steps(builtin.TypeSequence, spec.Name, spec.Sequence)
	case spec.Group != nil:
		return l.steps(builtin.TypeGroup, spec.Name, spec.Group)
	case spec.Loop != nil:
		return l.steps(builtin.TypeLoop, spec.Name, spec.Loop)
	case spec.Ignore != nil:
		return l.steps(builtin.TypeIgnore, spec.Name, spec.Ignore)
	case spec.Switch != nil:
		return l.switchStep(spec)
	case spec.Behavior != nil:
		return l.behaviorStep(spec)
	default:
		return l.liveStep(spec)
	}
}

func (l *Loader) action(name, action string, args map[string]any, save string) (*plot.Definition, error) {
	if !l.actions.Has(action) {
		return nil, fmt.Errorf("unknown action %q", action)
	}
	return l.node(builtin.TypeAction, name, l.actions.Leaf(action, args, save))
}

func (l *Loader) switchStep(spec *stepSpec) (*plot.Definition, error) {
	key := *spec.Switch
	if key == "" {
		key = builtin.DefaultChoiceKey
	}
	if len(spec.Cases) == 0 {
		return nil, &domain.InvalidNodeError{Reason: "switch needs cases"}
	}
	tasks := make(map[string]any, len(spec.Cases))
	for state, c := range spec.Cases {
		var (
			def *plot.Definition
			err error
		)
		if list, ok := c.([]any); ok {
			def, err = l.steps(builtin.TypeSequence, "", list)
		} else {
			def, err = l.step(c)
		}
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", state, err)
		}
		tasks[state] = def
	}
	return l.node(builtin.TypeSwitch, spec.Name, key, tasks)
}

func (l *Loader) liveStep(spec *stepSpec) (*plot.Definition, error) {
	args := []any{spec.Live}
	for i, e := range spec.Do {
		def, err := l.step(e)
		if err != nil {
			return nil, fmt.Errorf("live step %d: %w", i+1, err)
		}
		args = append(args, def)
	}
	return l.node(builtin.TypeLive, spec.Name, args...)
}

func (l *Loader) behaviorStep(spec *stepSpec) (*plot.Definition, error) {
	if !l.types.Has(btree.TypeBehavior) {
		return nil, fmt.Errorf("behavior steps need the %s type", btree.TypeBehavior)
	}
	factory, err := btree.Compile(spec.Behavior)
	if err != nil {
		return nil, err
	}
	args := []any{factory}
	if spec.Save != "" {
		args = append(args, spec.Save)
	}
	return l.node(btree.TypeBehavior, spec.Name, args...)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
