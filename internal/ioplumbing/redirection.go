package ioplumbing

import (
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/vanpelt/sareterm/internal/model"
)

// ApplyRedirections opens the files named in opts and wires them onto cmd's
// standard descriptors before Start. It returns the files opened so the
// caller can Close them once the child has been reaped — Cmd does not take
// ownership of *os.File values assigned directly to Stdin/Stdout/Stderr.
func ApplyRedirections(cmd *exec.Cmd, opts model.RedirectOptions) ([]*os.File, error) {
	var opened []*os.File

	if opts.StdinRedirect != "" {
		f, err := os.Open(opts.StdinRedirect)
		if err != nil {
			return opened, model.IOError("ioplumbing.ApplyRedirections", err)
		}
		opened = append(opened, f)
		cmd.Stdin = f
	}

	if opts.StdoutRedirect != "" {
		f, err := openForRedirect(opts.StdoutRedirect, opts.AppendOutput)
		if err != nil {
			return opened, model.IOError("ioplumbing.ApplyRedirections", err)
		}
		opened = append(opened, f)
		cmd.Stdout = f
	}

	if opts.StderrRedirect != "" {
		f, err := openForRedirect(opts.StderrRedirect, opts.AppendError)
		if err != nil {
			return opened, model.IOError("ioplumbing.ApplyRedirections", err)
		}
		opened = append(opened, f)
		cmd.Stderr = f
	}

	if opts.PipelineInput != "" {
		f, err := openFifo(opts.PipelineInput, os.O_RDONLY)
		if err != nil {
			return opened, model.IOError("ioplumbing.ApplyRedirections", err)
		}
		opened = append(opened, f)
		cmd.Stdin = f
	}

	if opts.PipelineOutput != "" {
		f, err := openFifo(opts.PipelineOutput, os.O_WRONLY)
		if err != nil {
			return opened, model.IOError("ioplumbing.ApplyRedirections", err)
		}
		opened = append(opened, f)
		cmd.Stdout = f
	}

	return opened, nil
}

func openForRedirect(path string, appendMode bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, 0644)
}

func openFifo(path string, flag int) (*os.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := unix.Mkfifo(path, 0666); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, flag, 0)
}

// CreateTempFile returns the path to a new, empty temporary file suitable
// as a redirection target.
func CreateTempFile() (string, error) {
	f, err := os.CreateTemp("", "sareterm-redir-*")
	if err != nil {
		return "", model.IOError("ioplumbing.CreateTempFile", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", model.IOError("ioplumbing.CreateTempFile", err)
	}
	return path, nil
}
