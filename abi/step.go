package abi

// Keys of a build step table.
const (
	KeyTitle            = "Title"
	KeyProgram          = "Program"
	KeyArguments        = "Arguments"
	KeyWorkingDirectory = "WorkingDirectory"
	KeyInputFiles       = "InputFiles"
	KeyOutputFiles      = "OutputFiles"
	KeyChildren         = "Children"
	KeyDependencyFile   = "DependencyFile"
)

// Step is a convenience description of a build step table. Extensions may build
// tables by hand instead; the core only ever reads the table.
type Step struct {
	Title            string
	Program          string
	Arguments        string
	WorkingDirectory string
	InputFiles       []string
	OutputFiles      []string
	DependencyFile   string
}

type stepField struct {
	key   string
	value Value
}

// NewStepTable encodes s as a build step table with an empty child list.
func NewStepTable(s Step) (ValueTable, ResultCode) {
	t := NewTable()
	fields := []stepField{
		{KeyTitle, NewString(s.Title)},
		{KeyProgram, NewString(s.Program)},
		{KeyArguments, NewString(s.Arguments)},
		{KeyWorkingDirectory, NewString(s.WorkingDirectory)},
		{KeyInputFiles, NewListValue(NewStringList(s.InputFiles...))},
		{KeyOutputFiles, NewListValue(NewStringList(s.OutputFiles...))},
		{KeyChildren, NewListValue(NewList())},
	}
	if s.DependencyFile != "" {
		fields = append(fields, stepField{KeyDependencyFile, NewString(s.DependencyFile)})
	}
	for _, f := range fields {
		if rc := t.TrySetValue(f.key, f.value); rc.Failed() {
			return nil, rc
		}
	}
	return t, OK
}

// AddChild appends child to the child list of parent, creating the list when
// the table does not have one yet. The same child table may be added to many
// parents.
func AddChild(parent, child ValueTable) ResultCode {
	if parent == nil || child == nil {
		return InvalidArgument
	}
	children, rc := parent.TryGetValue(KeyChildren)
	if rc == KeyNotFound {
		if rc := parent.TrySetValue(KeyChildren, NewListValue(NewList())); rc.Failed() {
			return rc
		}
		children, rc = parent.TryGetValue(KeyChildren)
	}
	if rc.Failed() {
		return rc
	}
	l, rc := children.TryGetList()
	if rc.Failed() {
		return rc
	}
	return Append(l, NewTableValue(child))
}

// AddRoot appends a step table to a root list.
func AddRoot(roots ValueList, step ValueTable) ResultCode {
	if step == nil {
		return InvalidArgument
	}
	return Append(roots, NewTableValue(step))
}
