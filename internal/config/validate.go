package config

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// Sentinel errors. Match with errors.Is.
var (
	// ErrDecode is returned for malformed YAML or unknown keys.
	ErrDecode = errors.New("config: cannot decode job")

	// ErrMissingName is returned for an entry without a name or id.
	ErrMissingName = errors.New("config: missing name")

	// ErrDuplicateName is returned when two spaces, or two tensors and
	// expressions, share a name.
	ErrDuplicateName = errors.New("config: duplicate name")

	// ErrUnknownOperand is returned when an expression names an undeclared tensor.
	ErrUnknownOperand = errors.New("config: unknown operand")

	// ErrEmptyEquation is returned for an expression without an equation.
	ErrEmptyEquation = errors.New("config: empty equation")

	// ErrDataAndSeed is returned when a tensor sets both data and seed.
	ErrDataAndSeed = errors.New("config: tensor sets both data and seed")

	// ErrBadLogLevel is returned for an unknown log level.
	ErrBadLogLevel = errors.New("config: invalid log level")

	// ErrBadLogFormat is returned for a log format other than text, json or auto.
	ErrBadLogFormat = errors.New("config: invalid log format")
)

// Validate checks names, references and settings. It does not build spaces;
// see BuildSpaces and BuildTensors.
func (j *Job) Validate() error {
	if _, err := tensor.ParseDataType(j.DType); err != nil {
		return fmt.Errorf("config: dtype: %w", err)
	}
	if err := j.Parallel.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := j.Log.Handler(nil); err != nil {
		return err
	}

	ids := make(map[string]bool, len(j.Spaces))
	for i, s := range j.Spaces {
		if s.ID == "" {
			return fmt.Errorf("%w: space %d has no id", ErrMissingName, i)
		}
		if ids[s.ID] {
			return fmt.Errorf("%w: space %q", ErrDuplicateName, s.ID)
		}
		ids[s.ID] = true
	}

	names := make(map[string]bool, len(j.Tensors)+len(j.Expressions))
	for i, t := range j.Tensors {
		if t.Name == "" {
			return fmt.Errorf("%w: tensor %d has no name", ErrMissingName, i)
		}
		if names[t.Name] {
			return fmt.Errorf("%w: tensor %q", ErrDuplicateName, t.Name)
		}
		if t.Data != nil && t.Seed != nil {
			return fmt.Errorf("%w: %q", ErrDataAndSeed, t.Name)
		}
		names[t.Name] = true
	}
	for i, e := range j.Expressions {
		if e.Name == "" {
			return fmt.Errorf("%w: expression %d has no name", ErrMissingName, i)
		}
		if names[e.Name] {
			return fmt.Errorf("%w: expression %q", ErrDuplicateName, e.Name)
		}
		if e.Equation == "" {
			return fmt.Errorf("%w: expression %q", ErrEmptyEquation, e.Name)
		}
		for _, op := range e.Operands {
			if !isTensor(j.Tensors, op) {
				return fmt.Errorf("%w: expression %q reads %q", ErrUnknownOperand, e.Name, op)
			}
		}
		names[e.Name] = true
	}
	return nil
}

func isTensor(ts []TensorSpec, name string) bool {
	for _, t := range ts {
		if t.Name == name {
			return true
		}
	}
	return false
}

// BuildSpaces builds the named spaces in declaration order, resolving refs
// against the spaces declared before each one.
func (j *Job) BuildSpaces() (map[string]*space.Space, error) {
	refs := make(map[string]*space.Space, len(j.Spaces))
	for _, ns := range j.Spaces {
		s, err := ns.Space.Build(refs)
		if err != nil {
			return nil, fmt.Errorf("config: space %q: %w", ns.ID, err)
		}
		refs[ns.ID] = s
	}
	return refs, nil
}

// BuildTensors builds every input tensor with component type T.
func BuildTensors[T tensor.Scalar](j *Job, refs map[string]*space.Space) (map[string]*tensor.Tensor[T], error) {
	out := make(map[string]*tensor.Tensor[T], len(j.Tensors))
	for _, ts := range j.Tensors {
		s, err := ts.Space.Build(refs)
		if err != nil {
			return nil, fmt.Errorf("config: tensor %q: %w", ts.Name, err)
		}
		var t *tensor.Tensor[T]
		switch {
		case ts.Data != nil:
			data := make([]T, len(ts.Data))
			for i, v := range ts.Data {
				data[i] = T(v)
			}
			t, err = tensor.Wrap(s, data)
			if err != nil {
				return nil, fmt.Errorf("config: tensor %q: %w", ts.Name, err)
			}
		case ts.Seed != nil:
			t = tensor.Randn[T](s, rand.New(rand.NewSource(*ts.Seed)))
		default:
			t = tensor.Zeros[T](s)
		}
		out[ts.Name] = t
	}
	return out, nil
}
