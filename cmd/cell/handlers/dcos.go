package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/cellos/cell/internal/cellconfig"
	"github.com/cellos/cell/internal/packages"
	"github.com/cellos/cell/internal/remote"
	"github.com/cellos/cell/internal/util/prerequisites"
)

// dcosBinary is the package manager CLI driven by the dcos command.
const dcosBinary = "dcos"

var newDescriber = func(env []string) packages.Describer {
	return &packages.CLIDescriber{Binary: dcosBinary, Env: env}
}

// DCOS handles the dcos command. It refreshes the cell configuration,
// rewrites package installs to carry cell-specific options and runs the
// package manager CLI against the cell with the remaining arguments.
func DCOS(ctx context.Context, opts Options, args []string) (err error) {
	s, err := open(ctx, "dcos", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	if err := s.requireCell(ctx); err != nil {
		return err
	}
	if err := prerequisites.Require(prerequisites.DCOSTools()); err != nil {
		return err
	}

	configs := newConfigSource(s.cfg, s.backend)
	if err := configs.Ensure(ctx); err != nil {
		return err
	}

	env := []string{"DCOS_CONFIG=" + s.cfg.Tmp(cellconfig.DCOSFile)}
	renderer := packages.NewRenderer(newDescriber(env), configs, s.cfg.TmpDir())
	install, err := renderer.PrepareInstall(ctx, args)
	if errors.Is(err, packages.ErrPackageUnsupported) {
		log.Printf("%v, installing with the package defaults", err)
		install = args
	} else if err != nil {
		return err
	}

	return newRunner().Run(ctx, remote.Command{Name: dcosBinary, Args: install, Env: env})
}
