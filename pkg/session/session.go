// Package session runs one interactive lusc session: collect answers,
// resolve the partitions, compose the efibootmgr commands, write the
// script and act on it.  Stages run once, in order.
package session

import (
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/project-machine/lusc/pkg/blockdev"
	"github.com/project-machine/lusc/pkg/bootentry"
	"github.com/project-machine/lusc/pkg/config"
	"github.com/project-machine/lusc/pkg/prompt"
	"github.com/project-machine/lusc/pkg/script"
	"github.com/project-machine/lusc/pkg/utils"
)

type Action string

const (
	ActionCreate  Action = "c"
	ActionExecute Action = "ce"
	ActionAbort   Action = "a"
)

func ParseAction(s string) Action {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionCreate:
		return ActionCreate
	case ActionExecute:
		return ActionExecute
	default:
		return ActionAbort
	}
}

type Options struct {
	Config config.Config
	Runner utils.Runner
	In     io.Reader
	Out    io.Writer

	// Firmware returns warnings shown before the first question.
	Firmware func() []string
	// CheckESP reports whether disk/part is an EFI System Partition.
	CheckESP func(disk, part string) (bool, error)
}

// State is everything one session learns.
type State struct {
	EfiPartition  string
	RootPartition string
	Label         string
	ExtraParams   string
	EfiDisk       string
	EfiPartNum    string
	EfiUUID       string
	RootUUID      string
	Primary       bootentry.Entry
	Fallback      bootentry.Entry
	Action        Action
}

type Session struct {
	State

	opts     Options
	p        *prompt.Prompter
	resolver *blockdev.Resolver

	// device mounted at Config.BootMount, when findmnt could tell
	bootSource *string
}

func New(opts Options) *Session {
	return &Session{
		opts:     opts,
		p:        prompt.New(opts.In, opts.Out),
		resolver: blockdev.NewResolver(opts.Runner),
	}
}

func (s *Session) banner() {
	prompt.Blue.Fprintf(s.opts.Out, "Welcome to LUSC - A Linux UEFI STUB Creator\n")
	prompt.Blue.Fprintf(s.opts.Out, "-----------------------------------------\n")
	prompt.Blue.Fprintf(s.opts.Out, "-----------------------------------------\n")
}

func (s *Session) warn(format string, args ...interface{}) {
	prompt.Red.Fprintf(s.opts.Out, "Warning: "+format+"\n", args...)
}

// Run performs the whole session.  A nil return covers both a completed
// session and one the user declined; any error means exit status 1.
func (s *Session) Run() error {
	s.banner()
	if s.opts.Firmware != nil {
		for _, w := range s.opts.Firmware() {
			s.warn("%s", w)
		}
	}

	ok, err := s.p.Confirm("Start creating UEFI boot entries? (y/N)")
	if err != nil {
		return err
	}
	if !ok {
		s.p.Printf("Goodbye. Exiting...\n")
		return nil
	}

	if err := s.collectPartitions(); err != nil {
		return err
	}
	if err := s.resolvePartitions(); err != nil {
		return err
	}

	s.Label, err = s.p.Token("Please specify the label for the boot entry (e.g., Arch):")
	if err != nil {
		return err
	}
	if err := bootentry.ValidateLabel(s.Label); err != nil {
		return err
	}

	if err := s.resolveUUIDs(); err != nil {
		return err
	}
	if err := s.compose(); err != nil {
		return err
	}

	answer, err := s.p.Token("\nCreate executable only, create and execute (sets UEFI boot entries), or abort? (c/ce/a)")
	if err != nil {
		return err
	}
	s.Action = ParseAction(answer)

	path := s.opts.Config.Script
	sc := script.Script{
		Shell:    s.opts.Config.Shell,
		Commands: []string{s.Fallback.String(), s.Primary.String()},
	}
	if err := script.Write(path, sc); err != nil {
		return err
	}
	s.p.Printf("Script file '%s' created.\n", path)

	s.dispatch(path)
	return nil
}

func (s *Session) collectPartitions() error {
	var err error
	hint := ""
	if src, err := s.resolver.MountSource(s.opts.Config.BootMount); err != nil {
		log.Debugf("Failed looking up %s: %v", s.opts.Config.BootMount, err)
	} else {
		s.bootSource = &src
		if src != "" {
			hint = " [" + src + " is mounted at " + s.opts.Config.BootMount + "]"
		}
	}

	s.EfiPartition, err = s.p.Token("Please specify EFI partition (e.g., /dev/nvme0n1p1)" + hint + ":")
	if err != nil {
		return err
	}
	s.RootPartition, err = s.p.Token("Please specify root partition (e.g., /dev/nvme0n1p2):")
	return err
}

func (s *Session) resolvePartitions() error {
	efiDev, err := s.resolver.Find(s.EfiPartition)
	if err != nil {
		return errors.Wrap(err, "EFI partition")
	}
	rootDev, err := s.resolver.Find(s.RootPartition)
	if err != nil {
		return errors.Wrap(err, "Root partition")
	}
	s.EfiPartition, s.RootPartition = efiDev, rootDev

	s.EfiDisk, s.EfiPartNum, err = blockdev.SplitPartition(s.EfiPartition)
	if err != nil {
		return errors.Wrap(err, "EFI partition")
	}
	log.Debugf("EFI partition %s is partition %s of %s", s.EfiPartition, s.EfiPartNum, s.EfiDisk)

	if s.bootSource != nil && *s.bootSource != s.EfiPartition {
		s.warn("%s is not mounted at %s; the kernel and initramfs must be at the root of the EFI partition.",
			s.EfiPartition, s.opts.Config.BootMount)
	}
	if s.opts.CheckESP != nil {
		esp, err := s.opts.CheckESP(s.EfiDisk, s.EfiPartNum)
		switch {
		case err != nil:
			log.Debugf("Could not check partition type of %s: %v", s.EfiPartition, err)
		case !esp:
			s.warn("%s is not marked as an EFI System Partition.", s.EfiPartition)
		}
	}
	return nil
}

func (s *Session) resolveUUIDs() error {
	var err error
	s.EfiUUID, err = s.resolver.UUID(s.EfiPartition)
	if err != nil {
		return errors.Wrap(err, "Error retrieving UUID for EFI partition")
	}
	s.RootUUID, err = s.resolver.UUID(s.RootPartition)
	if err != nil {
		return errors.Wrap(err, "Error retrieving UUID for root partition")
	}
	return nil
}

func (s *Session) compose() error {
	cfg := s.opts.Config
	current := bootentry.KernelParams(s.RootUUID, cfg.RootFlags, "")
	s.p.Printf("Current kernel parameters: %s\n", current)
	prompt.Green.Fprintf(s.opts.Out, "initrd and initrd-fallback will be added automatically!\n")

	var err error
	s.ExtraParams, err = s.p.Line("Add additional kernel parameters (or press Enter to keep current):")
	if err != nil {
		return err
	}
	params := bootentry.KernelParams(s.RootUUID, cfg.RootFlags, s.ExtraParams)

	s.Primary, s.Fallback, err = bootentry.Compose(cfg, s.EfiDisk, s.EfiPartNum, s.Label, params)
	if err != nil {
		return err
	}

	s.p.Printf("Detected partitions:\n")
	s.p.Printf("EFI: %s (%s)\n", s.EfiPartition, s.EfiUUID)
	s.p.Printf("Root: %s (%s)\n", s.RootPartition, s.RootUUID)
	s.p.Printf("\nComposed commands:\n")
	s.p.Printf("%s\n", s.Primary)
	s.p.Printf("%s\n", s.Fallback)

	if n, err := bootentry.OptionalDataSize(s.Primary); err != nil {
		log.Warnf("%v", err)
	} else if n > bootentry.MaxOptionalData {
		s.warn("kernel command line takes %d bytes, some firmware refuses more than %d.", n, bootentry.MaxOptionalData)
	}
	return nil
}

func (s *Session) dispatch(path string) {
	switch s.Action {
	case ActionCreate:
		s.p.Printf("Executable created. Exiting...\n")
	case ActionExecute:
		s.p.Printf("Executing script...\n")
		rc, err := script.Execute(s.opts.Runner, func(f string, a ...interface{}) {
			s.p.Printf(f+"\n", a...)
		}, path)
		switch {
		case err != nil:
			prompt.Red.Fprintf(s.opts.Out, "Error: Failed to execute command: %v\n", err)
		case rc != 0:
			prompt.Red.Fprintf(s.opts.Out, "Error: Command exited with status %d.\n", rc)
		default:
			prompt.Green.Fprintf(s.opts.Out, "Command executed successfully.\n")
		}
	default:
		s.p.Printf("Aborted. Exiting...\n")
	}
}
