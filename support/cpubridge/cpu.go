// Package cpubridge adapts golang.org/x/sys/cpu feature detection and
// this module's virtualization heuristics into the registry's CPU
// capability façade.
package cpubridge

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/aclements/go-spa/internal/cpuflags"
	"github.com/aclements/go-spa/support"
)

// CPU is the registry-facing CPU façade.
type CPU struct {
	forced      *cpuflags.Flags
	denormals   bool
	maxAlign    uint32
	handle      unsafe.Pointer
}

// New builds a CPU façade that reports the host's detected feature
// bits until ForceFlags overrides them.
func New() *CPU {
	return &CPU{maxAlign: detectMaxAlign()}
}

func (c *CPU) Kind() support.Kind { return support.KindCPU }

// GetFlags returns the forced flag set if ForceFlags was called,
// otherwise the detected set for the host architecture.
func (c *CPU) GetFlags() cpuflags.Flags {
	if c.forced != nil {
		return *c.forced
	}
	return detectFlags()
}

// ForceFlags overrides GetFlags' result, for testing code paths that
// depend on a specific feature set without needing that hardware.
func (c *CPU) ForceFlags(f cpuflags.Flags) {
	c.forced = &f
}

func (c *CPU) GetCount() uint32 { return uint32(runtime.NumCPU()) }

func (c *CPU) GetMaxAlign() uint32 { return c.maxAlign }

func (c *CPU) GetVMType() cpuflags.VM { return cpuflags.DetectVM() }

// ZeroDenormals toggles flush-to-zero/denormals-are-zero handling.
// The host architectures Go targets here don't expose this as a
// user-space-settable control the way x86's MXCSR does from native
// code, so this only records the request; it returns an error string
// via the bool result being false when the platform can't honor it.
func (c *CPU) ZeroDenormals(enable bool) bool {
	c.denormals = enable
	return false
}

func detectMaxAlign() uint32 {
	switch {
	case cpu.X86.HasAVX512F:
		return 64
	case cpu.X86.HasAVX2, cpu.X86.HasAVX:
		return 32
	case cpu.ARM64.HasASIMD, cpu.X86.HasSSE2:
		return 16
	default:
		return 8
	}
}

func detectFlags() cpuflags.Flags {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpuflags.Flags{Arch: cpuflags.ArchX86, Bits: detectX86()}
	case "arm", "arm64":
		return cpuflags.Flags{Arch: cpuflags.ArchARM, Bits: detectARM()}
	case "ppc64", "ppc64le":
		return cpuflags.Flags{Arch: cpuflags.ArchPPC, Bits: detectPPC()}
	case "riscv64":
		return cpuflags.Flags{Arch: cpuflags.ArchRISCV, Bits: detectRISCV()}
	default:
		return cpuflags.Flags{}
	}
}

func detectX86() uint32 {
	var bits uint32
	set := func(has bool, bit uint32) {
		if has {
			bits |= bit
		}
	}
	set(cpu.X86.HasSSE2, cpuflags.X86SSE2)
	set(cpu.X86.HasSSE3, cpuflags.X86SSE3)
	set(cpu.X86.HasSSSE3, cpuflags.X86SSSE3)
	set(cpu.X86.HasSSE41, cpuflags.X86SSE41)
	set(cpu.X86.HasSSE42, cpuflags.X86SSE42)
	set(cpu.X86.HasAES, cpuflags.X86AESNI)
	set(cpu.X86.HasAVX, cpuflags.X86AVX)
	set(cpu.X86.HasAVX2, cpuflags.X86AVX2)
	set(cpu.X86.HasAVX512F, cpuflags.X86AVX512)
	set(cpu.X86.HasBMI1, cpuflags.X86BMI1)
	set(cpu.X86.HasBMI2, cpuflags.X86BMI2)
	set(cpu.X86.HasFMA, cpuflags.X86FMA3)
	return bits
}

func detectARM() uint32 {
	var bits uint32
	if runtime.GOARCH == "arm64" {
		if cpu.ARM64.HasASIMD {
			bits |= cpuflags.ARMNeon
		}
		bits |= cpuflags.ARMv8
		return bits
	}
	if cpu.ARM.HasNEON {
		bits |= cpuflags.ARMNeon
	}
	if cpu.ARM.HasVFPv3 {
		bits |= cpuflags.ARMVFPV3
	}
	if cpu.ARM.HasVFP {
		bits |= cpuflags.ARMVFP
	}
	return bits
}

func detectPPC() uint32 {
	var bits uint32
	if cpu.PPC64.IsPOWER8 {
		bits |= cpuflags.PPCPower8
	}
	return bits
}

// detectRISCV reports no feature bits: the x/sys/cpu version this
// module depends on does not yet expose RISC-V vector-extension
// detection, so RISCVVector is left for a future x/sys/cpu release to
// populate.
func detectRISCV() uint32 {
	return 0
}

func (c *CPU) NativeHandle() unsafe.Pointer {
	if c.handle == nil {
		c.handle = unsafe.Pointer(c)
	}
	return c.handle
}

func (c *CPU) Close() error { return nil }
