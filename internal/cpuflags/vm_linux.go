//go:build linux

package cpuflags

import (
	"os"
	"strings"
)

// DetectVM inspects /proc/cpuinfo for the hypervisor flag and a small
// set of well-known DMI product-name strings to guess which
// virtualization environment, if any, the process is running under.
// It returns VMNone when nothing matches, never an error: VM detection
// is always best-effort.
func DetectVM() VM {
	if vm := detectFromCPUInfo(); vm != VMNone {
		return vm
	}
	return detectFromDMI()
}

func detectFromCPUInfo() VM {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return VMNone
	}
	text := string(data)
	switch {
	case strings.Contains(text, "hypervisor"):
		if vm := detectFromDMI(); vm != VMNone {
			return vm
		}
		return VMOther
	default:
		return VMNone
	}
}

var dmiSysVendorFiles = []string{
	"/sys/class/dmi/id/sys_vendor",
	"/sys/class/dmi/id/product_name",
	"/sys/class/dmi/id/bios_vendor",
}

func detectFromDMI() VM {
	for _, path := range dmiSysVendorFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(string(data)))
		switch {
		case strings.Contains(text, "kvm"):
			return VMKvm
		case strings.Contains(text, "qemu"):
			return VMQemu
		case strings.Contains(text, "bochs"):
			return VMBochs
		case strings.Contains(text, "xen"):
			return VMXen
		case strings.Contains(text, "vmware"):
			return VMVmware
		case strings.Contains(text, "virtualbox"), strings.Contains(text, "oracle"):
			return VMOracle
		case strings.Contains(text, "microsoft"), strings.Contains(text, "hyper-v"):
			return VMMicrosoft
		case strings.Contains(text, "parallels"):
			return VMParallels
		case strings.Contains(text, "bhyve"):
			return VMBhyve
		case strings.Contains(text, "qnx"):
			return VMQnx
		case strings.Contains(text, "acrn"):
			return VMAcrn
		case strings.Contains(text, "powervm"):
			return VMPowerVM
		}
	}
	return VMNone
}
