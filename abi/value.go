package abi

import (
	"strconv"
	"strings"
)

type value struct {
	kind    ValueType
	boolean bool
	integer int64
	float   float64
	str     string
	list    ValueList
	table   ValueTable

	// constraint points at the element type of the owning list, if any.
	constraint *ValueType
}

// NewValue returns an empty value.
func NewValue() Value {
	return &value{}
}

// NewBoolean returns a boolean value.
func NewBoolean(b bool) Value {
	return &value{kind: TypeBoolean, boolean: b}
}

// NewInteger returns an integer value.
func NewInteger(i int64) Value {
	return &value{kind: TypeInteger, integer: i}
}

// NewFloat returns a floating-point value.
func NewFloat(f float64) Value {
	return &value{kind: TypeFloat, float: f}
}

// NewString returns a string value.
func NewString(s string) Value {
	return &value{kind: TypeString, str: s}
}

// NewListValue wraps a shared list.
func NewListValue(l ValueList) Value {
	return &value{kind: TypeList, list: l}
}

// NewTableValue wraps a shared table.
func NewTableValue(t ValueTable) Value {
	return &value{kind: TypeTable, table: t}
}

func (v *value) GetType() ValueType {
	return v.kind
}

// assign switches the value to kind, honoring the owning list's element type.
func (v *value) assign(kind ValueType) ResultCode {
	if v.constraint != nil {
		if *v.constraint != TypeEmpty && *v.constraint != kind {
			return TypeMismatch
		}
		*v.constraint = kind
	}
	v.kind = kind
	v.list = nil
	v.table = nil
	return OK
}

func (v *value) TryGetBoolean() (bool, ResultCode) {
	if v.kind != TypeBoolean {
		return false, TypeMismatch
	}
	return v.boolean, OK
}

func (v *value) TrySetBoolean(b bool) ResultCode {
	if rc := v.assign(TypeBoolean); rc.Failed() {
		return rc
	}
	v.boolean = b
	return OK
}

func (v *value) TryGetInteger() (int64, ResultCode) {
	if v.kind != TypeInteger {
		return 0, TypeMismatch
	}
	return v.integer, OK
}

func (v *value) TrySetInteger(i int64) ResultCode {
	if rc := v.assign(TypeInteger); rc.Failed() {
		return rc
	}
	v.integer = i
	return OK
}

func (v *value) TryGetFloat() (float64, ResultCode) {
	if v.kind != TypeFloat {
		return 0, TypeMismatch
	}
	return v.float, OK
}

func (v *value) TrySetFloat(f float64) ResultCode {
	if rc := v.assign(TypeFloat); rc.Failed() {
		return rc
	}
	v.float = f
	return OK
}

func (v *value) TryGetString() (string, ResultCode) {
	if v.kind != TypeString {
		return "", TypeMismatch
	}
	return v.str, OK
}

func (v *value) TrySetString(s string) ResultCode {
	if rc := v.assign(TypeString); rc.Failed() {
		return rc
	}
	v.str = s
	return OK
}

func (v *value) TryGetList() (ValueList, ResultCode) {
	if v.kind != TypeList {
		return nil, TypeMismatch
	}
	return v.list, OK
}

func (v *value) TrySetList(l ValueList) ResultCode {
	if l == nil {
		return InvalidArgument
	}
	if rc := v.assign(TypeList); rc.Failed() {
		return rc
	}
	v.list = l
	return OK
}

func (v *value) TryGetTable() (ValueTable, ResultCode) {
	if v.kind != TypeTable {
		return nil, TypeMismatch
	}
	return v.table, OK
}

func (v *value) TrySetTable(t ValueTable) ResultCode {
	if t == nil {
		return InvalidArgument
	}
	if rc := v.assign(TypeTable); rc.Failed() {
		return rc
	}
	v.table = t
	return OK
}

func (v *value) ToString() string {
	return render(v, make(map[any]bool), 0)
}

// maxRenderDepth bounds rendering of containers that have no identity.
const maxRenderDepth = 64

// render formats v, printing <cycle> for a container that is already being
// rendered further up.
func render(v Value, active map[any]bool, depth int) string {
	if v == nil {
		return ""
	}
	own, ok := v.(*value)
	if !ok {
		return v.ToString()
	}

	switch own.kind {
	case TypeBoolean:
		return strconv.FormatBool(own.boolean)
	case TypeInteger:
		return strconv.FormatInt(own.integer, 10)
	case TypeFloat:
		return strconv.FormatFloat(own.float, 'g', -1, 64)
	case TypeString:
		return own.str
	case TypeList, TypeTable:
	default:
		return ""
	}

	var container any = own.list
	if own.kind == TypeTable {
		container = own.table
	}
	if key, ok := Identity(container); ok {
		if active[key] {
			return "<cycle>"
		}
		active[key] = true
		defer delete(active, key)
	} else if depth >= maxRenderDepth {
		return "<...>"
	}

	if own.kind == TypeList {
		parts := make([]string, 0, own.list.GetSize())
		for i := range own.list.GetSize() {
			item, rc := own.list.TryGetValueAt(i)
			if rc.Failed() {
				parts = append(parts, "<"+rc.String()+">")
				break
			}
			parts = append(parts, render(item, active, depth+1))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	parts := make([]string, 0, own.table.GetSize())
	for i := range own.table.GetSize() {
		key, rc := own.table.TryGetKeyAt(i)
		if rc.Failed() {
			parts = append(parts, "<"+rc.String()+">")
			break
		}
		item, rc := own.table.TryGetValue(key)
		if rc.Failed() {
			parts = append(parts, key+"=<"+rc.String()+">")
			continue
		}
		parts = append(parts, key+"="+render(item, active, depth+1))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// copyInto replaces the content of dst with the content of src. Primitives are
// copied; containers are shared.
func copyInto(dst *value, src Value) ResultCode {
	switch src.GetType() {
	case TypeEmpty:
		return dst.assign(TypeEmpty)
	case TypeBoolean:
		b, rc := src.TryGetBoolean()
		if rc.Failed() {
			return rc
		}
		return dst.TrySetBoolean(b)
	case TypeInteger:
		i, rc := src.TryGetInteger()
		if rc.Failed() {
			return rc
		}
		return dst.TrySetInteger(i)
	case TypeFloat:
		f, rc := src.TryGetFloat()
		if rc.Failed() {
			return rc
		}
		return dst.TrySetFloat(f)
	case TypeString:
		s, rc := src.TryGetString()
		if rc.Failed() {
			return rc
		}
		return dst.TrySetString(s)
	case TypeList:
		l, rc := src.TryGetList()
		if rc.Failed() {
			return rc
		}
		return dst.TrySetList(l)
	case TypeTable:
		t, rc := src.TryGetTable()
		if rc.Failed() {
			return rc
		}
		return dst.TrySetTable(t)
	default:
		return TypeMismatch
	}
}
