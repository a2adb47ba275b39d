package firmware

import (
	"github.com/foxboron/go-uefi/efi"
	"github.com/project-machine/lusc/pkg/utils"
)

// EfiDir only exists when the running kernel was booted by UEFI firmware.
var EfiDir = "/sys/firmware/efi"

// SecureBoot reports whether Secure Boot is enforced.
var SecureBoot = efi.GetSecureBoot

func BootedUEFI() bool {
	return utils.IsDir(EfiDir)
}

// Warnings lists the reasons an EFI stub entry created now might not boot.
func Warnings() []string {
	if !BootedUEFI() {
		return []string{"System was not booted in UEFI mode (" + EfiDir + " is missing); efibootmgr will fail."}
	}
	w := []string{}
	if SecureBoot() {
		w = append(w, "Secure Boot is enabled; an unsigned kernel will be refused by the firmware.")
	}
	return w
}
