// Package isolate wraps the isolate(1) sandbox binary. Verification runs
// every solution executable inside a fresh box with the problem's declared
// cpu-time and memory constraints applied.
package isolate

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

var once sync.Once
var instance *Isolate

type Isolate struct {
	idsInUse map[int]bool
	mutex    sync.Mutex
}

func GetInstance() *Isolate {
	once.Do(func() {
		instance = &Isolate{idsInUse: map[int]bool{}}
	})
	return instance
}

// NewBox allocates the lowest free box id, cleans up any stale box under
// that id and initializes a fresh one.
func (i *Isolate) NewBox() (*Box, error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	id := 0
	for i.idsInUse[id] {
		id++
	}

	if err := i.cleanupBox(id); err != nil {
		return nil, fmt.Errorf("failed to clean up box %d: %w", id, err)
	}

	path, err := i.initBox(id)
	if err != nil {
		return nil, fmt.Errorf("failed to init box %d: %w", id, err)
	}

	i.idsInUse[id] = true
	return newBox(i, id, path), nil
}

func (i *Isolate) releaseBox(id int) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	err := i.cleanupBox(id)
	delete(i.idsInUse, id)
	return err
}

func (i *Isolate) cleanupBox(boxId int) error {
	cmdStr := fmt.Sprintf("isolate --cg --cleanup --box-id %d", boxId)
	cmd := exec.Command("/usr/bin/bash", "-c", cmdStr)
	_, err := cmd.CombinedOutput()
	return err
}

// initBox initializes a new box with the given id and returns its path.
func (i *Isolate) initBox(boxId int) (string, error) {
	cmdStr := fmt.Sprintf("isolate --cg --init --box-id %d", boxId)
	cmd := exec.Command("/usr/bin/bash", "-c", cmdStr)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}
