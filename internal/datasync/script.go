package datasync

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	syncedMessage  = "Data synchronized successfully from Kaggle"
	onlineMessage  = "Kaggle API is accessible"
	offlineMessage = "Kaggle API is not accessible or credentials missing"

	checkTimeout = 30 * time.Second
)

// ScriptRefresher runs the external fetch script.  The script rewrites the
// JSON files in the data directory and, when called with the single
// argument "test", prints a connectivity report.
type ScriptRefresher struct {
	Python  string
	Script  string
	Workdir string
	Timeout time.Duration
}

type scriptRun struct {
	stdout   string
	stderr   string
	exitCode int
}

// Refresh runs the script to completion.  A non-zero exit is reported with
// the script's stderr.
func (r *ScriptRefresher) Refresh(ctx context.Context) (RefreshResult, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	res, err := r.run(ctx)
	if err != nil {
		return RefreshResult{}, eris.Wrap(err, "Python script failed")
	}
	if res.exitCode != 0 {
		msg := strings.TrimSpace(res.stderr)
		if msg == "" {
			msg = "Unknown error"
		}
		return RefreshResult{Output: res.stdout}, errors.New("Python script failed: " + msg)
	}
	return RefreshResult{Message: syncedMessage, Output: res.stdout}, nil
}

// Check runs the script in test mode.  The provider is online when the
// script exits cleanly and its output contains both "[OK]" and "ONLINE".
func (r *ScriptRefresher) Check(ctx context.Context) ProviderStatus {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	res, err := r.run(ctx, "test")
	if err != nil {
		zap.L().Warn("provider check failed to start", zap.Error(err))
		return ProviderStatus{
			Status:  ProviderOffline,
			Message: offlineMessage,
			Debug:   ProviderDebug{ExitCode: -1, HasError: true},
		}
	}
	st := ProviderStatus{
		Status:  ProviderOffline,
		Message: offlineMessage,
		Debug: ProviderDebug{
			ExitCode:     res.exitCode,
			OutputLength: len(res.stdout),
			HasError:     res.stderr != "",
		},
	}
	if res.exitCode == 0 && strings.Contains(res.stdout, "[OK]") && strings.Contains(res.stdout, "ONLINE") {
		st.Status = ProviderOnline
		st.Message = onlineMessage
	}
	return st
}

// run starts the script and streams both pipes to the log while collecting
// them.  An error is returned only when the process could not run; a
// non-zero exit is reported through exitCode.
func (r *ScriptRefresher) run(ctx context.Context, args ...string) (scriptRun, error) {
	python := r.Python
	if python == "" {
		python = "python"
	}
	cmd := exec.CommandContext(ctx, python, append([]string{r.Script}, args...)...)
	cmd.Dir = r.Workdir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return scriptRun{}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return scriptRun{}, err
	}
	if err := cmd.Start(); err != nil {
		return scriptRun{}, err
	}

	log := zap.L().Named("sync-script")
	var out, errOut strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); collect(stdout, &out, log.Debug) }()
	go func() { defer wg.Done(); collect(stderr, &errOut, log.Warn) }()
	wg.Wait()

	res := scriptRun{}
	waitErr := cmd.Wait()
	res.stdout, res.stderr = out.String(), errOut.String()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, waitErr
		}
		res.exitCode = exitErr.ExitCode()
		if ctx.Err() != nil && res.stderr == "" {
			res.stderr = ctx.Err().Error()
		}
	}
	return res, nil
}

func collect(r io.Reader, into *strings.Builder, logf func(string, ...zap.Field)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		into.WriteString(line)
		into.WriteByte('\n')
		logf(line)
	}
}
