// Package graph turns the value tables handed over by an extension into a
// validated domain graph.
package graph

import (
	"reflect"

	"go.trai.ch/soup/abi"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
)

// Generate asks ext for its root steps and decodes them.
func Generate(ext abi.Extension) (*domain.Graph, error) {
	if ext == nil {
		return nil, domain.ErrNoExtension
	}
	if v := ext.ABIVersion(); v != abi.Version {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnsupportedABIVersion, "extension rejected"), "version", v), "supported", abi.Version)
	}

	roots := abi.NewList()
	if rc := ext.Generate(roots); rc.Failed() {
		return nil, zerr.With(zerr.Wrap(domain.ErrExtensionFailed, "generate"), "code", rc.String())
	}
	return Decode(roots)
}

// Decode reads a list of step tables. A table reached through several parents
// becomes a single shared node. The returned graph is validated.
func Decode(roots abi.ValueList) (*domain.Graph, error) {
	d := &decoder{nodes: make(map[any]*domain.BuildStepNode)}

	nodes, err := d.tableList(roots, "roots")
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph(nodes...)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

type decoder struct {
	// nodes memoizes decoded tables by identity. A table is added before its
	// children are decoded so that a cycle terminates here and is reported by
	// Graph.Validate.
	nodes map[any]*domain.BuildStepNode
}

func abiError(rc abi.ResultCode, operation string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrABIOperationFailed, operation), "code", rc.String()), "operation", operation)
}

func (d *decoder) tableList(list abi.ValueList, operation string) ([]*domain.BuildStepNode, error) {
	if list == nil {
		return nil, nil
	}
	size := list.GetSize()
	nodes := make([]*domain.BuildStepNode, 0, size)
	for i := range size {
		v, rc := list.TryGetValueAt(i)
		if rc.Failed() {
			return nil, abiError(rc, operation+": get value at index")
		}
		t, rc := v.TryGetTable()
		if rc.Failed() {
			return nil, abiError(rc, operation+": get table")
		}
		n, err := d.node(t)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (d *decoder) node(t abi.ValueTable) (*domain.BuildStepNode, error) {
	if t == nil {
		return nil, zerr.Wrap(domain.ErrInvalidNode, "nil step table")
	}
	key, ok := abi.Identity(t)
	if !ok {
		return nil, zerr.With(abiError(abi.InvalidArgument, "step table has no identity"),
			"type", reflect.TypeOf(t).String())
	}
	if n, ok := d.nodes[key]; ok {
		return n, nil
	}

	n := &domain.BuildStepNode{}
	d.nodes[key] = n

	var err error
	if n.Title, err = requiredString(t, abi.KeyTitle); err != nil {
		return nil, err
	}
	if n.Program, err = requiredString(t, abi.KeyProgram); err != nil {
		return nil, zerr.With(err, "title", n.Title)
	}
	strs := []struct {
		key string
		dst *string
	}{
		{abi.KeyArguments, &n.Arguments},
		{abi.KeyWorkingDirectory, &n.WorkingDirectory},
		{abi.KeyDependencyFile, &n.DependencyFile},
	}
	for _, s := range strs {
		if *s.dst, err = optionalString(t, s.key); err != nil {
			return nil, zerr.With(err, "title", n.Title)
		}
	}
	if n.InputFiles, err = stringList(t, abi.KeyInputFiles); err != nil {
		return nil, zerr.With(err, "title", n.Title)
	}
	if n.OutputFiles, err = stringList(t, abi.KeyOutputFiles); err != nil {
		return nil, zerr.With(err, "title", n.Title)
	}

	children, err := optionalList(t, abi.KeyChildren)
	if err != nil {
		return nil, zerr.With(err, "title", n.Title)
	}
	if n.Children, err = d.tableList(children, abi.KeyChildren); err != nil {
		return nil, err
	}
	return n, nil
}

func requiredString(t abi.ValueTable, key string) (string, error) {
	s, err := optionalString(t, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidNode, "missing "+key), "missing", key)
	}
	return s, nil
}

func optionalString(t abi.ValueTable, key string) (string, error) {
	v, rc := t.TryGetValue(key)
	if rc == abi.KeyNotFound {
		return "", nil
	}
	if rc.Failed() {
		return "", abiError(rc, "get "+key)
	}
	s, rc := v.TryGetString()
	if rc.Failed() {
		return "", abiError(rc, "read "+key+" as string")
	}
	return s, nil
}

func optionalList(t abi.ValueTable, key string) (abi.ValueList, error) {
	v, rc := t.TryGetValue(key)
	if rc == abi.KeyNotFound {
		return nil, nil
	}
	if rc.Failed() {
		return nil, abiError(rc, "get "+key)
	}
	l, rc := v.TryGetList()
	if rc.Failed() {
		return nil, abiError(rc, "read "+key+" as list")
	}
	return l, nil
}

func stringList(t abi.ValueTable, key string) ([]string, error) {
	l, err := optionalList(t, key)
	if err != nil || l == nil {
		return nil, err
	}
	size := l.GetSize()
	out := make([]string, 0, size)
	for i := range size {
		v, rc := l.TryGetValueAt(i)
		if rc.Failed() {
			return nil, abiError(rc, key+": get value at index")
		}
		s, rc := v.TryGetString()
		if rc.Failed() {
			return nil, abiError(rc, key+": read string")
		}
		out = append(out, s)
	}
	return out, nil
}
