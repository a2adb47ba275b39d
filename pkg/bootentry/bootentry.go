package bootentry

import (
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"github.com/project-machine/lusc/pkg/config"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrBadLabel = errors.New("invalid boot label")

// Firmware implementations start refusing load options well before the
// variable size limit; past this we warn.
const MaxOptionalData = 4096

// Entry is one efibootmgr --create invocation.
type Entry struct {
	Disk   string
	Part   string
	Label  string
	Loader string
	Params string // kernel parameters without initrd=
	Initrd string
}

// Unicode is the string passed to --unicode: the kernel command line.
func (e Entry) Unicode() string {
	return e.Params + " initrd=" + e.Initrd
}

// Args is the argv registering this entry.
func (e Entry) Args() []string {
	return []string{"efibootmgr", "--create",
		"--disk", e.Disk,
		"--part", e.Part,
		"--label", e.Label,
		"--loader", e.Loader,
		"--unicode", e.Unicode(),
		"--verbose"}
}

// String renders Args as a single shell command line.
func (e Entry) String() string {
	return shellquote.Join(e.Args()...)
}

// KernelParams builds "root=UUID=<rootUUID> <flags>" and appends @extra
// when it is not blank.
func KernelParams(rootUUID, flags, extra string) string {
	params := "root=UUID=" + rootUUID
	if flags != "" {
		params += " " + flags
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		params += " " + extra
	}
	return params
}

func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.Wrapf(ErrBadLabel, "empty label")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return errors.Wrapf(ErrBadLabel, "%q contains control characters", label)
		}
	}
	return nil
}

// Compose returns the primary and the fallback entry for one ESP.
func Compose(cfg config.Config, disk, part, label, params string) (Entry, Entry, error) {
	if err := ValidateLabel(label); err != nil {
		return Entry{}, Entry{}, err
	}
	if strings.ContainsFunc(params, unicode.IsControl) {
		return Entry{}, Entry{}, errors.Errorf("kernel parameters contain control characters")
	}
	primary := Entry{
		Disk:   disk,
		Part:   part,
		Label:  label,
		Loader: cfg.Loader,
		Params: params,
		Initrd: cfg.Initrd,
	}
	fallback := primary
	fallback.Label = label + cfg.FallbackSuffix
	fallback.Initrd = cfg.FallbackInitrd
	return primary, fallback, nil
}

// OptionalDataSize is the number of bytes the kernel command line of @e
// takes in the load option: UCS-2, NUL terminated.
func OptionalDataSize(e Entry) (int, error) {
	t := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewEncoder()
	out, _, err := transform.String(t, e.Unicode())
	if err != nil {
		return 0, errors.Wrapf(err, "Failed converting EFI boot arguments")
	}
	return len(out) + 2, nil
}
