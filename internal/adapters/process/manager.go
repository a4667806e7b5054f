// Package process runs build step programs on the host.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
)

// Manager implements ports.ProcessManager using os/exec.
type Manager struct {
	logger ports.Logger
}

var _ ports.ProcessManager = (*Manager)(nil)

// NewManager creates a new Manager that streams process output to logger.
func NewManager(logger ports.Logger) *Manager {
	return &Manager{logger: logger}
}

// Execute runs application with arguments split by shell quoting rules. Output
// lines are logged as they arrive (stdout at INFO, stderr at WARN), copied to
// the vertex carried by ctx, and returned in the result.
func (m *Manager) Execute(
	ctx context.Context,
	application, arguments, workingDirectory string,
) (domain.ProcessResult, error) {
	args, err := shellwords.Parse(arguments)
	if err != nil {
		return domain.ProcessResult{}, zerr.With(zerr.Wrap(err, "failed to parse arguments"), "arguments", arguments)
	}

	executable := resolveExecutable(application, workingDirectory)

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // programs come from the build graph
	cmd.Dir = workingDirectory

	var stdout, stderr bytes.Buffer
	outLog := &logWriter{emit: m.logger.Info}
	errLog := &logWriter{emit: m.logger.Warn}
	outWriters := []io.Writer{&stdout, outLog}
	errWriters := []io.Writer{&stderr, errLog}
	if vertex, ok := ports.VertexFromContext(ctx); ok {
		outWriters = append(outWriters, vertex.Stdout())
		errWriters = append(errWriters, vertex.Stderr())
	}
	cmd.Stdout = io.MultiWriter(outWriters...)
	cmd.Stderr = io.MultiWriter(errWriters...)

	runErr := cmd.Run()
	outLog.Flush()
	errLog.Flush()

	result := domain.ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, zerr.With(zerr.Wrap(ctxErr, "process cancelled"), "program", application)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, zerr.With(zerr.Wrap(runErr, "failed to start process"), "program", application)
}

// resolveExecutable joins a relative program with the working directory. A bare
// name is looked up in the working directory first and then through PATH.
func resolveExecutable(application, workingDirectory string) string {
	if filepath.IsAbs(application) || workingDirectory == "" {
		return application
	}
	joined := filepath.Join(workingDirectory, application)
	if strings.ContainsRune(application, filepath.Separator) || strings.ContainsRune(application, '/') {
		return joined
	}
	if info, err := os.Stat(joined); err == nil && info.Mode().IsRegular() {
		return joined
	}
	return application
}

// logWriter buffers partial writes and emits one message per complete line.
type logWriter struct {
	mu   sync.Mutex
	buf  []byte
	emit func(string)
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(strings.TrimSuffix(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits any trailing text that did not end in a newline.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}
