package abi

// MaxContainerSize bounds the number of entries a list or table may hold.
const MaxContainerSize = 1 << 20

type list struct {
	items []*value
	elem  ValueType
}

// NewList returns an empty list. Its element type is fixed by the first
// non-empty value stored in it.
func NewList() ValueList {
	return &list{}
}

// NewStringList returns a list holding the given strings.
func NewStringList(items ...string) ValueList {
	l := &list{elem: TypeString}
	if len(items) == 0 {
		return l
	}
	l.items = make([]*value, len(items))
	for i, s := range items {
		l.items[i] = &value{kind: TypeString, str: s, constraint: &l.elem}
	}
	return l
}

func (l *list) GetSize() int {
	return len(l.items)
}

func (l *list) Resize(size int) ResultCode {
	switch {
	case size < 0:
		return InvalidArgument
	case size > MaxContainerSize:
		return AllocationFailure
	case size <= len(l.items):
		clear(l.items[size:])
		l.items = l.items[:size]
		return OK
	}
	for len(l.items) < size {
		l.items = append(l.items, &value{constraint: &l.elem})
	}
	return OK
}

func (l *list) TryGetValueAt(index int) (Value, ResultCode) {
	if index < 0 || index >= len(l.items) {
		return nil, IndexOutOfRange
	}
	return l.items[index], OK
}

func (l *list) TrySetValueAt(index int, v Value) ResultCode {
	if v == nil {
		return InvalidArgument
	}
	if index < 0 || index >= len(l.items) {
		return IndexOutOfRange
	}
	return copyInto(l.items[index], v)
}

// Append grows l by one and stores v in the new slot. The list is left
// unchanged when the store fails.
func Append(l ValueList, v Value) ResultCode {
	if l == nil || v == nil {
		return InvalidArgument
	}
	size := l.GetSize()
	if rc := l.Resize(size + 1); rc.Failed() {
		return rc
	}
	if rc := l.TrySetValueAt(size, v); rc.Failed() {
		_ = l.Resize(size)
		return rc
	}
	return OK
}

type table struct {
	keys   []string
	values map[string]*value
}

// NewTable returns an empty table.
func NewTable() ValueTable {
	return &table{values: make(map[string]*value)}
}

func (t *table) GetSize() int {
	return len(t.keys)
}

func (t *table) TryGetKeyAt(index int) (string, ResultCode) {
	if index < 0 || index >= len(t.keys) {
		return "", IndexOutOfRange
	}
	return t.keys[index], OK
}

func (t *table) TryGetValue(key string) (Value, ResultCode) {
	v, ok := t.values[key]
	if !ok {
		return nil, KeyNotFound
	}
	return v, OK
}

func (t *table) TrySetValue(key string, v Value) ResultCode {
	if key == "" || v == nil {
		return InvalidArgument
	}
	if slot, ok := t.values[key]; ok {
		return copyInto(slot, v)
	}
	if len(t.keys) >= MaxContainerSize {
		return AllocationFailure
	}
	slot := &value{}
	if rc := copyInto(slot, v); rc.Failed() {
		return rc
	}
	t.values[key] = slot
	t.keys = append(t.keys, key)
	return OK
}
