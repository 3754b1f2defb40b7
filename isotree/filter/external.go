package filter

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/isoburn/isoburn/isotree"
)

// externalRun forks ext.Argv, piping inner into its stdin and returning its
// stdout as the filtered stream, per the "Isolate by fork+exec+pipe;
// never run under setuid unless a compile-time opt-in is active. The parent
// closes its copy of write-ends promptly and uses select/equivalent to
// avoid SIGPIPE" — here the stdin-copy goroutine plays that role, so a
// reader that stops early only breaks the copy goroutine's pipe, not the
// calling goroutine.
func externalRun(ext *isotree.ExternalFilter, inner io.ReadCloser) (io.ReadCloser, error) {
	if len(ext.Argv) == 0 {
		return nil, fmt.Errorf("isotree/filter: filter %q has an empty argv", ext.Name)
	}
	if os.Geteuid() != os.Getuid() || os.Getegid() != os.Getgid() {
		inner.Close()
		return nil, fmt.Errorf("isotree/filter: refusing to start %q from a setuid/setgid process", ext.Name)
	}
	cmd := exec.Command(ext.Argv[0], ext.Argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		inner.Close()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		inner.Close()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("isotree/filter: start %q: %w", ext.Name, err)
	}

	go func() {
		defer inner.Close()
		defer stdin.Close()
		io.Copy(stdin, inner)
	}()

	return &externalFilterOutput{ReadCloser: stdout, cmd: cmd}, nil
}

type externalFilterOutput struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (o *externalFilterOutput) Close() error {
	err := o.ReadCloser.Close()
	if waitErr := o.cmd.Wait(); waitErr != nil && err == nil {
		err = waitErr
	}
	return err
}
