// Package handlers implements the business logic for CLI commands.
//
// Handlers are called by the command definitions in the commands package.
// Each one loads the configuration, resolves the cell backend and hands
// the work to the provisioning, configuration or access packages. They do
// not depend on the CLI framework and are tested on their own.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr/funcr"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/backend/aws"
	"github.com/cellos/cell/internal/backend/hcloud"
	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/metrics"
	"github.com/cellos/cell/internal/provisioning"
	"github.com/cellos/cell/internal/ui/prompt"
)

// LogFormatJSON selects structured provisioning output.
const LogFormatJSON = "json"

// Options carries the arguments and global flags shared by all handlers.
type Options struct {
	// Cell is empty for commands spanning every cell.
	Cell        string
	Version     string
	TemplateURL string
	LogFormat   string
}

var registry = backend.NewRegistry(map[string]backend.Factory{
	aws.Name:    aws.New,
	hcloud.Name: hcloud.New,
})

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newBackend = registry.New

	newPrompter = func() provisioning.Prompter {
		return prompt.New()
	}

	stdout io.Writer = os.Stdout
)

// session is the state of one command invocation.
type session struct {
	command  string
	opts     Options
	cfg      *config.Config
	backend  backend.Backend
	recorder *metrics.Recorder
	start    time.Time
}

// open loads the configuration and resolves the backend of the cell.
func open(ctx context.Context, command string, opts Options) (*session, error) {
	cfg, err := loadConfig(config.LoadOptions{
		CellName:    opts.Cell,
		Version:     opts.Version,
		TemplateURL: opts.TemplateURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	b, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &session{
		command:  command,
		opts:     opts,
		cfg:      cfg,
		backend:  b,
		recorder: metrics.NewRecorder(),
		start:    time.Now(),
	}, nil
}

// provisioningContext builds the context handed to provisioners.
func (s *session) provisioningContext(ctx context.Context) *provisioning.Context {
	pCtx := provisioning.NewContext(ctx, s.cfg, s.backend, newPrompter())
	pCtx.Observer = metrics.NewObserver(newObserver(s.opts.LogFormat), s.recorder).
		WithFields(map[string]string{"cell": s.cfg.Cell.Name, "backend": s.backend.Name()})
	return pCtx
}

// requireCell fails unless the cell of the session exists.
func (s *session) requireCell(ctx context.Context) error {
	return backend.RequireCell(ctx, s.backend, s.cfg.Cell.Name)
}

// close records the outcome of the command. Metrics are only written for
// a cell whose work directory exists, so nothing is left behind after a
// delete or for a cell that was never created.
func (s *session) close(err error) error {
	s.recorder.ObserveCommand(s.cfg.Cell.Name, s.command, time.Since(s.start), err)
	if s.cfg.Cell.Name == "" {
		return err
	}
	if _, statErr := os.Stat(s.cfg.TmpDir()); statErr != nil {
		return err
	}
	if writeErr := s.recorder.WriteTextfile(s.cfg.Tmp(metrics.TextfileName)); writeErr != nil {
		log.Printf("Warning: %v", writeErr)
	}
	return err
}

func newObserver(format string) provisioning.Observer {
	if format == LogFormatJSON {
		logger := funcr.NewJSON(func(obj string) {
			fmt.Fprintln(os.Stderr, obj)
		}, funcr.Options{LogTimestamp: true, Verbosity: 1})
		return provisioning.NewLogrObserver(logger)
	}
	return provisioning.NewConsoleObserver()
}
