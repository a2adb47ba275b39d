package main

import (
	"io"
	"os"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"
	"github.com/urfave/cli"
)

const Version = "0.1"

const description = `This is a simple interactive tool to automatically generate UEFI boot entries.
   It generates efibootmgr commands and exports them to a small executable.
   No changes will be written to disk before confirmation.
   The EFI partition must be mounted to /boot and the kernel and initramfs image must be located at the root of it!
   Some UEFI systems don't allow to create more than one EFI STUB entry.
   Unfortunately, efibootmgr is not able to change EFI entries. You always have to delete/overwrite entries to make changes happen.
   Please don't use this program if you don't exactly know what you are doing here and what EFI STUB means.
   You can get some great info at: https://wiki.archlinux.org/title/EFISTUB
   And now good luck with EFI STUB booting.`

func newApp(in io.Reader, out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "lusc"
	app.Usage = "Linux UEFI STUB Creator"
	app.UsageText = "sudo lusc [options]"
	app.Description = description
	app.Version = Version
	app.Writer = out
	app.ErrWriter = out
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "display additional debug information",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "yaml file overriding loader, initrd and script names",
			Value: defaultConfig,
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "name of the generated script",
		},
	}

	app.Before = func(c *cli.Context) error {
		log.SetHandler(logcli.New(os.Stderr))
		if c.Bool("debug") {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	}
	app.Action = func(c *cli.Context) error {
		return doCreate(c, in, out)
	}
	return app
}

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}
