package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/soup/abi"
	"go.trai.ch/soup/internal/adapters/extension"
	"go.trai.ch/soup/internal/adapters/fs"
	"go.trai.ch/soup/internal/adapters/history"
	"go.trai.ch/soup/internal/adapters/logger"
	"go.trai.ch/soup/internal/adapters/telemetry"
	"go.trai.ch/soup/internal/app"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports/mocks"
	"go.trai.ch/soup/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

const root = "/project"

var now = time.Unix(1434993120, 0)

type fixture struct {
	fsys       *fs.MemoryFileSystem
	rec        *logger.Recorder
	loader     *mocks.MockConfigLoader
	extensions *mocks.MockExtensionLoader
	processes  *mocks.MockProcessManager
	store      *history.Store
	app        *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		fsys:       fs.NewMemoryFileSystem(func() time.Time { return now }),
		rec:        logger.NewRecorder(),
		loader:     mocks.NewMockConfigLoader(ctrl),
		extensions: mocks.NewMockExtensionLoader(ctrl),
		processes:  mocks.NewMockProcessManager(ctrl),
	}
	f.store = history.NewStore(f.fsys, f.rec)
	run := runner.New(f.fsys, f.processes, f.store, f.rec, telemetry.NoOp{})
	f.app = app.New(f.loader, f.extensions, run, f.store, f.fsys, f.rec)
	return f
}

func defaultProject() *domain.Project {
	return &domain.Project{
		Root:            root,
		GraphFile:       root + "/graph.yaml",
		Configuration:   "release",
		ObjectDirectory: root + "/out/obj/release",
		Parallelism:     1,
	}
}

func compileStep(t *testing.T) *extension.Declarative {
	t.Helper()
	ext, err := extension.NewDeclarative(root, []extension.StepSpec{{
		ID:        "compile",
		Title:     "Compile main",
		Program:   "/usr/bin/cc",
		Arguments: "-c main.c",
		Inputs:    []string{"main.c"},
		Outputs:   []string{"main.o"},
	}}, nil)
	require.NoError(t, err)
	return ext
}

type versionedExtension struct{ version uint32 }

func (e versionedExtension) ABIVersion() uint32 { return e.version }

func (e versionedExtension) Generate(abi.ValueList) abi.ResultCode { return abi.OK }

func TestApp_Build(t *testing.T) {
	f := newFixture(t)
	f.fsys.CreateFile(root+"/main.c", now.Add(-time.Hour), "int main;")

	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)
	f.extensions.EXPECT().Load(gomock.Any()).Return(compileStep(t), nil)
	f.processes.EXPECT().
		Execute(gomock.Any(), "/usr/bin/cc", "-c main.c", root).
		Return(domain.ProcessResult{}, nil)

	result, err := f.app.Build(context.Background(), app.BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)

	_, ok := f.fsys.ReadFile(domain.HistoryPath(root + "/out/obj/release"))
	assert.True(t, ok, "history document should be written")
	assert.Contains(t, f.rec.Lines(), "HIGH: Done")
}

func TestApp_Build_Overrides(t *testing.T) {
	f := newFixture(t)
	f.fsys.CreateFile(root+"/main.c", now.Add(-time.Hour), "int main;")

	f.loader.EXPECT().Load(root).Return(defaultProject(), nil)

	var got *domain.Project
	f.extensions.EXPECT().Load(gomock.Any()).DoAndReturn(func(p *domain.Project) (abi.Extension, error) {
		got = p
		return compileStep(t), nil
	})
	f.processes.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ProcessResult{}, nil)

	_, err := f.app.Build(context.Background(), app.BuildOptions{
		ProjectOptions: app.ProjectOptions{Dir: root, Configuration: "debug"},
		GraphFile:      "graphs/main.hcl",
		Parallelism:    4,
		Timeout:        time.Minute,
		Force:          true,
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "debug", got.Configuration)
	assert.Equal(t, root+"/out/obj/debug", got.ObjectDirectory)
	assert.Equal(t, root+"/graphs/main.hcl", got.GraphFile)
	assert.Equal(t, 4, got.Parallelism)
	assert.Equal(t, time.Minute, got.ProcessTimeout)
	assert.True(t, got.ForceBuild)
}

func TestApp_Build_ExplicitObjectDirectoryWins(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)

	var got *domain.Project
	f.extensions.EXPECT().Load(gomock.Any()).DoAndReturn(func(p *domain.Project) (abi.Extension, error) {
		got = p
		return nil, domain.ErrNoExtension
	})

	_, err := f.app.Build(context.Background(), app.BuildOptions{
		ProjectOptions: app.ProjectOptions{Configuration: "debug", ObjectDirectory: "build"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoExtension))
	assert.Equal(t, root+"/build", got.ObjectDirectory)
}

func TestApp_Build_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, domain.ErrInvalidConfig)

	_, err := f.app.Build(context.Background(), app.BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestApp_Build_UnsupportedExtension(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)
	f.extensions.EXPECT().Load(gomock.Any()).Return(versionedExtension{version: abi.Version + 1}, nil)

	_, err := f.app.Build(context.Background(), app.BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedABIVersion))
}

func TestApp_Build_StepFailure(t *testing.T) {
	f := newFixture(t)
	f.fsys.CreateFile(root+"/main.c", now.Add(-time.Hour), "int main;")

	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)
	f.extensions.EXPECT().Load(gomock.Any()).Return(compileStep(t), nil)
	f.processes.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ProcessResult{ExitCode: 2}, nil)

	_, err := f.app.Build(context.Background(), app.BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuildExecutionFailed))
	assert.NotContains(t, f.rec.Lines(), "HIGH: Done")
	assert.Contains(t, f.rec.Lines(), "HIGH: Build failed")
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	metadata := domain.MetadataDirectory(root + "/out/obj/release")
	f.fsys.CreateFile(domain.HistoryPath(root+"/out/obj/release"), now, "{}")
	f.fsys.CreateFile(root+"/out/obj/release/main.o", now, "obj")

	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)

	require.NoError(t, f.app.Clean(context.Background(), app.ProjectOptions{}))

	assert.False(t, f.fsys.Exists(metadata))
	assert.True(t, f.fsys.Exists(root+"/out/obj/release/main.o"))
	assert.Equal(t, []string{
		"INFO: removing " + metadata + "...",
		"INFO: removed " + metadata,
	}, f.rec.Lines())
}

func TestApp_Clean_NothingToClean(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)

	require.NoError(t, f.app.Clean(context.Background(), app.ProjectOptions{}))
	assert.Equal(t, []string{"INFO: nothing to clean in " + root + "/out/obj/release"}, f.rec.Lines())
}

func TestApp_History(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(root+"/out/obj/release", domain.NewBuildHistory(
		domain.FileRecord{Path: root + "/b.c"},
		domain.FileRecord{Path: root + "/a.c", DiscoveredDependencies: []string{root + "/a.h"}},
	)))

	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)

	records, err := f.app.History(context.Background(), app.ProjectOptions{})
	require.NoError(t, err)
	assert.Equal(t, []domain.FileRecord{
		{Path: root + "/a.c", DiscoveredDependencies: []string{root + "/a.h"}},
		{Path: root + "/b.c"},
	}, records)
}

func TestApp_History_Missing(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(defaultProject(), nil)

	records, err := f.app.History(context.Background(), app.ProjectOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
