package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/soup/internal/adapters/fs"
	"go.trai.ch/soup/internal/adapters/history"
	"go.trai.ch/soup/internal/adapters/logger"
	"go.trai.ch/soup/internal/adapters/telemetry"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/soup/internal/core/ports/mocks"
	"go.trai.ch/soup/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

const (
	objDir = "/build/out/obj/debug"
	work   = "/work"
)

var (
	t0910 = time.Unix(1434993000, 0)
	t0911 = time.Unix(1434993060, 0)
	t0912 = time.Unix(1434993120, 0)
)

type harness struct {
	fsys      *fs.MemoryFileSystem
	rec       *logger.Recorder
	processes *mocks.MockProcessManager
	runner    *runner.Runner

	mu    sync.Mutex
	calls []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		fsys:      fs.NewMemoryFileSystem(func() time.Time { return t0912 }),
		rec:       logger.NewRecorder(),
		processes: mocks.NewMockProcessManager(ctrl),
	}
	h.runner = runner.New(h.fsys, h.processes, history.NewStore(h.fsys, h.rec), h.rec, telemetry.NoOp{})
	return h
}

// expectExecute accepts any number of process executions. run is called for
// each one before the result is returned.
func (h *harness) expectExecute(exitCode int, run func(app string)) {
	h.processes.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, app, args, wd string) (domain.ProcessResult, error) {
			h.mu.Lock()
			h.calls = append(h.calls, "Execute: ["+wd+"] "+strings.TrimSpace(app+" "+args))
			h.mu.Unlock()
			if run != nil {
				run(app)
			}
			return domain.ProcessResult{ExitCode: exitCode}, nil
		}).
		AnyTimes()
}

func (h *harness) processCalls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// seed stores a previous history without leaving a trace in the transcript.
func (h *harness) seed(t *testing.T, records ...domain.FileRecord) {
	t.Helper()
	store := history.NewStore(h.fsys, logger.NewRecorder())
	require.NoError(t, store.Save(objDir, domain.NewBuildHistory(records...)))
	h.fsys.ClearRequests()
}

func (h *harness) savedHistory(t *testing.T) *domain.BuildHistory {
	t.Helper()
	content, ok := h.fsys.ReadFile(domain.HistoryPath(objDir))
	require.True(t, ok, "history file must be written")
	saved, err := history.Decode(strings.NewReader(content))
	require.NoError(t, err)
	return saved
}

func (h *harness) transcript() []byte {
	var b bytes.Buffer
	section := func(name string, lines []string) {
		b.WriteString("# " + name + "\n")
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
	}
	section("log", h.rec.Lines())
	section("file system", h.fsys.Requests())
	section("process", h.processCalls())
	return b.Bytes()
}

func testNode() *domain.BuildStepNode {
	return &domain.BuildStepNode{
		Title:            "TestCommand: 1",
		Program:          "Command.exe",
		Arguments:        "Arguments",
		WorkingDirectory: work,
		InputFiles:       []string{"InputFile.in"},
		OutputFiles:      []string{"OutputFile.out"},
	}
}

func TestExecute_NoNodes(t *testing.T) {
	h := newHarness(t)

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(), runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)
	assert.Zero(t, result.Executed)
	assert.Empty(t, h.processCalls())

	goldie.New(t).Assert(t, "no_nodes", h.transcript())
	assert.Equal(t, 0, h.savedHistory(t).Len())
}

func TestExecute_NoNodes_Force(t *testing.T) {
	h := newHarness(t)

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(),
		runner.Options{ObjectDirectory: objDir, ForceBuild: true})
	require.NoError(t, err)

	goldie.New(t).Assert(t, "no_nodes_force", h.transcript())
}

func TestExecute_OneNode_NoHistory(t *testing.T) {
	h := newHarness(t)
	h.expectExecute(0, nil)

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, []runner.NodeOutcome{{Title: "TestCommand: 1", Status: domain.NodeStatusRecorded}}, result.Nodes)

	goldie.New(t).Assert(t, "one_node_no_history", h.transcript())

	record, ok := h.savedHistory(t).Get("/work/InputFile.in")
	require.True(t, ok)
	assert.Empty(t, record.DiscoveredDependencies)
}

func TestExecute_OneNode_Force(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.FileRecord{Path: "/work/InputFile.in"})
	h.fsys.CreateFile("/work/OutputFile.out", t0912, "")
	h.fsys.CreateFile("/work/InputFile.in", t0910, "")
	h.expectExecute(0, nil)

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir, ForceBuild: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)

	goldie.New(t).Assert(t, "one_node_force", h.transcript())
}

func TestExecute_OneNode_MissingFileInfo(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.expectExecute(0, nil)

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DIAG: Loading previous build state",
		"DIAG: Check for updated source",
		"INFO: Missing file info: InputFile.in",
		"HIGH: TestCommand: 1",
		"DIAG: Execute: Command.exe Arguments",
		"INFO: Saving updated build state",
		"HIGH: Done",
	}, h.rec.Lines())
}

func TestExecute_OneNode_IncrementalOutOfDate(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.FileRecord{Path: "/work/InputFile.in"})
	h.fsys.CreateFile("/work/Command.exe", t0910, "")
	h.fsys.CreateFile("/work/OutputFile.out", t0910, "")
	h.fsys.CreateFile("/work/InputFile.in", t0911, "")
	h.expectExecute(0, nil)

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)

	goldie.New(t).Assert(t, "one_node_out_of_date", h.transcript())
}

func TestExecute_OneNode_IncrementalUpToDate(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.FileRecord{Path: "/work/InputFile.in"})
	h.fsys.CreateFile("/work/Command.exe", t0912, "")
	h.fsys.CreateFile("/work/OutputFile.out", t0912, "")
	h.fsys.CreateFile("/work/InputFile.in", t0911, "")

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)
	assert.Zero(t, result.Executed)
	assert.Equal(t, 1, result.UpToDate)
	assert.Equal(t, []runner.NodeOutcome{{Title: "TestCommand: 1", Status: domain.NodeStatusSkipped}}, result.Nodes)

	goldie.New(t).Assert(t, "one_node_up_to_date", h.transcript())
	_, ok := h.savedHistory(t).Get("/work/InputFile.in")
	assert.True(t, ok, "skipped nodes keep their records")
}

func TestExecute_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.fsys.CreateFile("/work/InputFile.in", t0911, "")
	h.expectExecute(0, func(string) {
		h.fsys.CreateFile("/work/OutputFile.out", t0912, "")
	})
	opts := runner.Options{ObjectDirectory: objDir}

	first, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Executed)

	second, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()), opts)
	require.NoError(t, err)
	assert.Zero(t, second.Executed)
	assert.Equal(t, 1, second.UpToDate)
	assert.Len(t, h.processCalls(), 1)
}

func diamond() (a, b, c, d *domain.BuildStepNode) {
	d = &domain.BuildStepNode{Title: "D", Program: "d", WorkingDirectory: work, OutputFiles: []string{"d.out"}}
	b = &domain.BuildStepNode{Title: "B", Program: "b", WorkingDirectory: work, Children: []*domain.BuildStepNode{d}}
	c = &domain.BuildStepNode{Title: "C", Program: "c", WorkingDirectory: work, Children: []*domain.BuildStepNode{d}}
	a = &domain.BuildStepNode{Title: "A", Program: "a", WorkingDirectory: work, Children: []*domain.BuildStepNode{b, c}}
	return a, b, c, d
}

func indexOf(calls []string, program string) int {
	for i, c := range calls {
		if c == "Execute: ["+work+"] "+program {
			return i
		}
	}
	return -1
}

func TestExecute_DiamondExecutesSharedChildOnce(t *testing.T) {
	for _, parallelism := range []int{1, 4} {
		h := newHarness(t)
		h.expectExecute(0, nil)
		a, _, _, d := diamond()

		result, err := h.runner.Execute(context.Background(), domain.NewGraph(a, d),
			runner.Options{ObjectDirectory: objDir, ForceBuild: true, Parallelism: parallelism})
		require.NoError(t, err)
		assert.Equal(t, 4, result.Executed)

		calls := h.processCalls()
		require.Len(t, calls, 4, "parallelism %d", parallelism)
		assert.Less(t, indexOf(calls, "d"), indexOf(calls, "b"))
		assert.Less(t, indexOf(calls, "d"), indexOf(calls, "c"))
		assert.Equal(t, 3, indexOf(calls, "a"))
	}
}

func TestExecute_FailureAbortsAndSavesHistory(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.FileRecord{Path: "/work/b.in"}, domain.FileRecord{Path: "/work/other.in"})
	a, b, _, _ := diamond()
	b.InputFiles = []string{"b.in"}

	h.processes.EXPECT().
		Execute(gomock.Any(), "d", gomock.Any(), work).
		Return(domain.ProcessResult{}, nil)
	h.processes.EXPECT().
		Execute(gomock.Any(), "b", gomock.Any(), work).
		Return(domain.ProcessResult{ExitCode: 2, Stderr: "error: boom"}, nil)

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(a),
		runner.Options{ObjectDirectory: objDir})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, domain.NodeStatusFailed, result.Nodes[len(result.Nodes)-1].Status)

	lines := h.rec.Lines()
	assert.Contains(t, lines, "ERROR: build step exited with a nonzero code")
	assert.Contains(t, lines, "INFO: Saving updated build state")
	assert.NotContains(t, lines, "HIGH: Done")
	assert.NotContains(t, lines, "HIGH: A")
	assert.Equal(t, "HIGH: Build failed", lines[len(lines)-1])

	saved := h.savedHistory(t)
	_, ok := saved.Get("/work/b.in")
	assert.False(t, ok, "failed node's records are removed")
	_, ok = saved.Get("/work/other.in")
	assert.True(t, ok)
}

func TestExecute_ParallelFailureStopsScheduling(t *testing.T) {
	h := newHarness(t)
	a, _, _, d := diamond()
	h.processes.EXPECT().
		Execute(gomock.Any(), "d", gomock.Any(), work).
		Return(domain.ProcessResult{ExitCode: 1}, nil)

	result, err := h.runner.Execute(context.Background(), domain.NewGraph(a, d),
		runner.Options{ObjectDirectory: objDir, ForceBuild: true, Parallelism: 3})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.Zero(t, result.Executed)
	assert.True(t, h.fsys.Exists(domain.HistoryPath(objDir)))
}

func TestExecute_LaunchFailure(t *testing.T) {
	h := newHarness(t)
	h.processes.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ProcessResult{}, errors.New("exec: not found"))

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.Contains(t, h.rec.Lines(), "ERROR: failed to execute build step: exec: not found")
}

func TestExecute_Timeout(t *testing.T) {
	h := newHarness(t)
	h.processes.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _, _ string) (domain.ProcessResult, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 10*time.Second)
			return domain.ProcessResult{}, nil
		})

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir, Timeout: time.Minute})
	require.NoError(t, err)
}

func TestExecute_Cancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.runner.Execute(ctx, domain.NewGraph(testNode()), runner.Options{ObjectDirectory: objDir})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.processCalls())
	assert.Equal(t, "HIGH: Build failed", h.rec.Lines()[len(h.rec.Lines())-1])
	assert.True(t, h.fsys.Exists(domain.HistoryPath(objDir)))
}

func TestExecute_CycleIsRejected(t *testing.T) {
	h := newHarness(t)
	a := &domain.BuildStepNode{Title: "A", Program: "a"}
	b := &domain.BuildStepNode{Title: "B", Program: "b", Children: []*domain.BuildStepNode{a}}
	a.Children = []*domain.BuildStepNode{b}

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(a), runner.Options{ObjectDirectory: objDir})
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.Empty(t, h.fsys.Requests())
	assert.Equal(t, []string{"HIGH: Build failed"}, h.rec.Lines())
}

func TestExecute_DependencyFile(t *testing.T) {
	h := newHarness(t)
	node := &domain.BuildStepNode{
		Title:            "Compile main.cpp",
		Program:          "clang++",
		Arguments:        "-c main.cpp -o main.o -MD -MF main.d",
		WorkingDirectory: work,
		InputFiles:       []string{"main.cpp"},
		OutputFiles:      []string{"main.o"},
		DependencyFile:   "main.d",
	}
	h.expectExecute(0, func(string) {
		h.fsys.CreateFile("/work/main.o", t0912, "")
		h.fsys.CreateFile("/work/main.d", t0912, "main.o: main.cpp include/config.h \\\n  /usr/include/stdio.h\n")
	})

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(node), runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)

	record, ok := h.savedHistory(t).Get("/work/main.cpp")
	require.True(t, ok)
	assert.Equal(t, []string{"/usr/include/stdio.h", "/work/include/config.h"}, record.DiscoveredDependencies)
}

func TestExecute_DependencyFileMissing(t *testing.T) {
	h := newHarness(t)
	node := testNode()
	node.DependencyFile = "out.d"
	h.expectExecute(0, nil)

	_, err := h.runner.Execute(context.Background(), domain.NewGraph(node), runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)
	assert.Contains(t, h.rec.Lines(), "WARN: Dependency file does not exist: /work/out.d")
}

type purgingFS struct {
	*fs.MemoryFileSystem
	purges int
}

func (p *purgingFS) Purge() { p.purges++ }

func TestExecute_PurgesStatCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := &purgingFS{MemoryFileSystem: fs.NewMemoryFileSystem(nil)}
	rec := logger.NewRecorder()
	processes := mocks.NewMockProcessManager(ctrl)
	processes.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ProcessResult{}, nil).Times(4)

	r := runner.New(fsys, processes, history.NewStore(fsys, rec), rec, telemetry.NoOp{})
	a, _, _, d := diamond()
	_, err := r.Execute(context.Background(), domain.NewGraph(a, d), runner.Options{ObjectDirectory: objDir, ForceBuild: true})
	require.NoError(t, err)
	assert.Equal(t, 4, fsys.purges)
}

func TestExecute_Telemetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := fs.NewMemoryFileSystem(nil)
	rec := logger.NewRecorder()
	store := history.NewStore(fsys, logger.NewRecorder())
	require.NoError(t, store.Save(objDir, domain.NewBuildHistory(domain.FileRecord{Path: "/work/InputFile.in"})))
	fsys.CreateFile("/work/OutputFile.out", t0912, "")
	fsys.CreateFile("/work/InputFile.in", t0911, "")

	skippedVertex := mocks.NewMockVertex(ctrl)
	executedVertex := mocks.NewMockVertex(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	gomock.InOrder(
		tel.EXPECT().Record(gomock.Any(), "TestCommand: 1").
			DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
				return ctx, skippedVertex
			}),
		tel.EXPECT().Record(gomock.Any(), "Package").
			DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
				return ctx, executedVertex
			}),
	)
	gomock.InOrder(
		skippedVertex.EXPECT().Log(domain.LogLevelInfo, "Up to date"),
		skippedVertex.EXPECT().Cached(),
		skippedVertex.EXPECT().Complete(nil),
	)
	gomock.InOrder(
		executedVertex.EXPECT().Log(domain.LogLevelDiag, "Execute: tar"),
		executedVertex.EXPECT().Complete(nil),
	)

	processes := mocks.NewMockProcessManager(ctrl)
	processes.EXPECT().Execute(gomock.Any(), "tar", gomock.Any(), work).Return(domain.ProcessResult{}, nil)

	pkg := &domain.BuildStepNode{Title: "Package", Program: "tar", WorkingDirectory: work,
		Children: []*domain.BuildStepNode{testNode()}}
	r := runner.New(fsys, processes, store, rec, tel)
	result, err := r.Execute(context.Background(), domain.NewGraph(pkg), runner.Options{ObjectDirectory: objDir})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, 1, result.UpToDate)
}

func TestExecute_TelemetryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := fs.NewMemoryFileSystem(nil)
	rec := logger.NewRecorder()

	vertex := mocks.NewMockVertex(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	tel.EXPECT().Record(gomock.Any(), "TestCommand: 1").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		})
	gomock.InOrder(
		vertex.EXPECT().Log(domain.LogLevelDiag, "Execute: Command.exe Arguments"),
		vertex.EXPECT().Log(domain.LogLevelError, "build step exited with a nonzero code"),
		vertex.EXPECT().Complete(gomock.Not(gomock.Nil())),
	)

	processes := mocks.NewMockProcessManager(ctrl)
	processes.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ProcessResult{ExitCode: 3}, nil)

	r := runner.New(fsys, processes, history.NewStore(fsys, rec), rec, tel)
	_, err := r.Execute(context.Background(), domain.NewGraph(testNode()),
		runner.Options{ObjectDirectory: objDir, ForceBuild: true})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)

	lines := rec.Lines()
	assert.Equal(t, "HIGH: Build failed", lines[len(lines)-1])
}
