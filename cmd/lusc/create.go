package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/project-machine/lusc/pkg/blockdev"
	"github.com/project-machine/lusc/pkg/config"
	"github.com/project-machine/lusc/pkg/firmware"
	"github.com/project-machine/lusc/pkg/prompt"
	"github.com/project-machine/lusc/pkg/session"
	"github.com/project-machine/lusc/pkg/utils"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"
)

var (
	defaultConfig = config.DefaultPath
	geteuid       = unix.Geteuid
	newRunner     = func() utils.Runner { return utils.NewRunner() }
)

func doCreate(ctx *cli.Context, in io.Reader, out io.Writer) error {
	if geteuid() != 0 {
		prompt.Red.Fprintf(out, "This script must be run with root privileges!\n")
		fmt.Fprintf(out, "type: sudo %s -h for usage and more info.\n", ctx.App.Name)
		return errors.New("not running as root")
	}

	if ctx.NArg() > 0 {
		fmt.Fprintf(out, "Unknown option: %s\n", ctx.Args().First())
		_ = cli.ShowAppHelp(ctx)
		return errors.Errorf("unknown option %q", ctx.Args().First())
	}

	cfg, err := config.Load(ctx.String("config"), ctx.IsSet("config"))
	if err != nil {
		return err
	}
	if ctx.IsSet("output") {
		cfg.Script = ctx.String("output")
	}

	s := session.New(session.Options{
		Config:   cfg,
		Runner:   newRunner(),
		In:       in,
		Out:      out,
		Firmware: firmware.Warnings,
		CheckESP: blockdev.IsESP,
	})
	return s.Run()
}
