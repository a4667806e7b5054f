// Package abi defines the versioned value interfaces that extensions use to
// describe build steps to the core.
//
// Every interface in this package is frozen once published. An operation never
// panics or returns a Go error across the boundary; it reports a ResultCode
// instead, and callers on both sides must check it. New capabilities are added
// as new interfaces tagged with a new Version, never as new methods on an
// existing one.
package abi

// Version is the revision of the value interfaces implemented by this package.
const Version uint32 = 1

// ResultCode reports the outcome of an ABI operation. Zero is success.
type ResultCode int32

const (
	// OK signals success.
	OK ResultCode = 0
	// IndexOutOfRange is returned when a list or key index is outside the container.
	IndexOutOfRange ResultCode = 1
	// TypeMismatch is returned when a value is read or written as the wrong type.
	TypeMismatch ResultCode = 2
	// AllocationFailure is returned when a container cannot grow.
	AllocationFailure ResultCode = 3
	// KeyNotFound is returned when a table has no entry for the requested key.
	KeyNotFound ResultCode = 4
	// InvalidArgument is returned for nil values, negative sizes and similar misuse.
	InvalidArgument ResultCode = 5
)

// String returns a stable name for the code.
func (c ResultCode) String() string {
	switch c {
	case OK:
		return "ok"
	case IndexOutOfRange:
		return "index_out_of_range"
	case TypeMismatch:
		return "type_mismatch"
	case AllocationFailure:
		return "allocation_failure"
	case KeyNotFound:
		return "key_not_found"
	case InvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Failed reports whether the code signals a failure.
func (c ResultCode) Failed() bool {
	return c != OK
}

// ValueType tags the content of a Value.
type ValueType uint8

const (
	// TypeEmpty is the type of a value that has not been assigned.
	TypeEmpty ValueType = iota
	// TypeBoolean holds a bool.
	TypeBoolean
	// TypeInteger holds an int64.
	TypeInteger
	// TypeFloat holds a float64.
	TypeFloat
	// TypeString holds a string.
	TypeString
	// TypeList holds a shared ValueList.
	TypeList
	// TypeTable holds a shared ValueTable.
	TypeTable
)

// String returns the lower-case name of the type.
func (t ValueType) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is a tagged union of the primitive types plus shared containers.
//
// Primitives are copied when a value is stored in a container. Lists and tables
// are shared by reference: both the extension that created them and the core may
// hold them for as long as they need.
type Value interface {
	GetType() ValueType

	TryGetBoolean() (bool, ResultCode)
	TrySetBoolean(value bool) ResultCode
	TryGetInteger() (int64, ResultCode)
	TrySetInteger(value int64) ResultCode
	TryGetFloat() (float64, ResultCode)
	TrySetFloat(value float64) ResultCode
	TryGetString() (string, ResultCode)
	TrySetString(value string) ResultCode
	TryGetList() (ValueList, ResultCode)
	TrySetList(value ValueList) ResultCode
	TryGetTable() (ValueTable, ResultCode)
	TrySetTable(value ValueTable) ResultCode

	// ToString renders the value for diagnostics.
	ToString() string
}

// ValueList is a homogeneous ordered container of values.
type ValueList interface {
	GetSize() int
	Resize(size int) ResultCode
	TryGetValueAt(index int) (Value, ResultCode)
	TrySetValueAt(index int, value Value) ResultCode
}

// ValueTable is a string-keyed container of values. Keys keep insertion order.
type ValueTable interface {
	GetSize() int
	TryGetKeyAt(index int) (string, ResultCode)
	TryGetValue(key string) (Value, ResultCode)
	TrySetValue(key string, value Value) ResultCode
}

// Extension produces build steps. Generate appends one table per root step to
// roots and returns OK, or a failure code if the graph could not be described.
type Extension interface {
	ABIVersion() uint32
	Generate(roots ValueList) ResultCode
}
