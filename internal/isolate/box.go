package isolate

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type Box struct {
	id      int
	path    string
	isolate *Isolate
}

func newBox(isolate *Isolate, id int, path string) *Box {
	return &Box{
		id:      id,
		path:    path,
		isolate: isolate,
	}
}

func (box *Box) Id() int {
	return box.id
}

func (box *Box) Path() string {
	return box.path
}

func (box *Box) Close() error {
	return box.isolate.releaseBox(box.id)
}

// Run starts the given command inside the box. The caller must Wait on the
// returned process to collect metrics from the meta file.
func (box *Box) Run(
	command string,
	stdin io.ReadCloser,
	constraints *Constraints) (*Process, error) {

	if constraints == nil {
		c := DefaultConstraints()
		constraints = &c
	}

	metaFilePath, err := newTempMetaFilePath()
	if err != nil {
		return nil, err
	}

	process := &Process{metaFilePath: metaFilePath}

	args := []string{"--env=HOME=/box", "--meta=" + metaFilePath}
	args = append(args, constraints.ToArgs()...)

	cmdStr := fmt.Sprintf(
		"isolate --cg --box-id %d %s --run /usr/bin/env %s",
		box.id,
		strings.Join(args, " "),
		command,
	)

	cmd := exec.Command("/usr/bin/bash", "-c", cmdStr)
	cmd.Stdin = stdin
	process.stdout, err = cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	process.stderr, err = cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	process.cmd = cmd

	if err = cmd.Start(); err != nil {
		return nil, err
	}

	return process, nil
}

func newTempMetaFilePath() (string, error) {
	file, err := os.CreateTemp("", "isolate.*.txt")
	if err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (box *Box) AddFile(path string, content []byte) error {
	path = filepath.Join(box.path, "box", path)
	return os.WriteFile(path, content, 0755)
}
