package executor

import (
	"os/exec"
)

type Cmd interface {
	SetDir(dir string)
	CombinedOutput() ([]byte, error)
}

type Executor interface {
	Command(name string, args ...string) Cmd
	LookPath(file string) (string, error)
}

var _ Executor = BinaryFileExecutor{}

type BinaryFileExecutor struct{}

func (BinaryFileExecutor) Command(name string, args ...string) Cmd {
	return &binaryCmd{cmd: exec.Command(name, args...)}
}

func (BinaryFileExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

type binaryCmd struct {
	cmd *exec.Cmd
}

func (b *binaryCmd) SetDir(dir string) {
	b.cmd.Dir = dir
}

func (b *binaryCmd) CombinedOutput() ([]byte, error) {
	return b.cmd.CombinedOutput()
}
