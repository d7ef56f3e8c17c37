package cmd

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Startup steps reported when a run fails.
const (
	stepInit        = "init"
	stepSettings    = "settings"
	stepLogger      = "logger"
	stepConfig      = "config"
	stepStore       = "store"
	stepEditor      = "editor"
	stepMenu        = "menu"
	stepWatch       = "watch"
	stepTerminal    = "terminal"
	stepInteractive = "interactive"
	stepCommand     = "command"
)

// stepTracker records the startup step in progress.
type stepTracker struct {
	mu   sync.Mutex
	name string
}

func (s *stepTracker) Set(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *stepTracker) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// StepError is a failure tagged with the step it happened in. Stack is set
// for recovered panics.
type StepError struct {
	Step  string
	Err   error
	Stack []byte
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// PrintError writes err to w, with the stack of a recovered panic.
func PrintError(w io.Writer, err error) {
	var se *StepError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "error during %s: %v\n", se.Step, se.Err)
		if len(se.Stack) > 0 {
			fmt.Fprintf(w, "%s\n", se.Stack)
		}
		return
	}
	fmt.Fprintln(w, err)
}
