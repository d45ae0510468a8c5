// Package toolchain resolves symbols and sections in compiled firmware
// by shelling out to the Xtensa binutils (nm, readelf, objcopy).
//
// The tools are looked up relative to the running executable first,
// matching the layout of the Xtensa toolchain distribution where the
// flasher sits in bin/ next to xtensa-lx106-elf/bin/, and fall back to
// PATH. Setting XTENSA_CORE=lx106 switches to the commercial xt-*
// tool names.
//
// ELFFile satisfies image.Object, so firmware images can be built from
// ELF files with image.FromObject:
//
//	elf := toolchain.NewELFFile("app.elf")
//	out, err := image.FromObject(elf, "call_user_start")
package toolchain
