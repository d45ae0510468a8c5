package toolchain

import "fmt"

// ToolError indicates an external toolchain invocation failed or
// produced unusable output. Distinct from protocol and image errors so
// callers can tell a broken toolchain installation apart from a broken
// device or file.
type ToolError struct {
	// Tool is the binary that failed, e.g. "xtensa-lx106-elf-nm"
	Tool string

	// Detail describes what went wrong
	Detail string

	// Err is the underlying error, if any
	Err error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v (is the Xtensa toolchain installed?)", e.Tool, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Detail)
}

func (e *ToolError) Unwrap() error { return e.Err }

// SymbolNotFoundError indicates the ELF file does not define a
// requested symbol.
type SymbolNotFoundError struct {
	// Name is the missing symbol
	Name string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found in ELF file", e.Name)
}
