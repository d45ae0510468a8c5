package toolchain

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ELFFile reads symbols, sections and the entry point of a compiled
// firmware ELF through the external Xtensa binutils. It implements
// image.Object.
//
// Symbols are fetched lazily on first use and cached for the lifetime
// of the ELFFile.
type ELFFile struct {
	// Path is the ELF file on disk
	Path string

	symbols map[string]uint32

	// warn receives non-fatal toolchain diagnostics; defaults to a
	// no-op
	warn func(format string, args ...interface{})
}

// NewELFFile creates an ELFFile for the given path. No validation
// happens until a lookup runs a tool.
func NewELFFile(path string) *ELFFile {
	return &ELFFile{
		Path: path,
		warn: func(string, ...interface{}) {},
	}
}

// SetWarnFunc routes non-fatal diagnostics, such as undefined symbol
// warnings from nm, to the given printf-style function.
func (e *ELFFile) SetWarnFunc(fn func(format string, args ...interface{})) {
	if fn != nil {
		e.warn = fn
	}
}

// toolName resolves which binary to run for a binutils tool. The
// XTENSA_CORE=lx106 environment selects the commercial xt-* tools by
// bare name; otherwise the GNU tool is looked for next to the running
// executable in the toolchain distribution layout, falling back to
// PATH.
func toolName(tool string) string {
	if os.Getenv("XTENSA_CORE") == "lx106" {
		return "xt-" + tool
	}

	name := "xtensa-lx106-elf-" + tool
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if self, err := os.Executable(); err == nil {
		bundled := filepath.Join(filepath.Dir(self), "..", "xtensa-lx106-elf", "bin", name)
		if _, err := os.Stat(bundled); err == nil {
			return bundled
		}
	}
	return name
}

// fetchSymbols runs nm once and caches the symbol table. Undefined
// symbols are reported through the warn function and skipped.
func (e *ELFFile) fetchSymbols() error {
	if e.symbols != nil {
		return nil
	}

	tool := toolName("nm")
	out, err := exec.Command(tool, e.Path).Output()
	if err != nil {
		return &ToolError{Tool: tool, Detail: "failed to run", Err: err}
	}

	symbols, err := parseSymbolTable(out, e.warn)
	if err != nil {
		return &ToolError{Tool: tool, Detail: err.Error()}
	}
	e.symbols = symbols
	return nil
}

// parseSymbolTable decodes nm's "addr type name" lines. Undefined
// symbols have no address column and are skipped with a warning.
func parseSymbolTable(out []byte, warn func(format string, args ...interface{})) (map[string]uint32, error) {
	symbols := make(map[string]uint32)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "U" {
			warn("warning: ELF binary has undefined symbol %s", fields[1])
			continue
		}
		if len(fields) < 3 {
			continue
		}
		addr, err := strconv.ParseUint(fields[0], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("unparseable symbol line %q", scanner.Text())
		}
		symbols[fields[2]] = uint32(addr)
	}
	return symbols, nil
}

// SymbolAddr resolves a symbol name to its link address.
func (e *ELFFile) SymbolAddr(name string) (uint32, error) {
	if err := e.fetchSymbols(); err != nil {
		return 0, err
	}
	addr, ok := e.symbols[name]
	if !ok {
		return 0, &SymbolNotFoundError{Name: name}
	}
	return addr, nil
}

// EntryPoint reads the ELF header's entry point address via readelf.
func (e *ELFFile) EntryPoint() (uint32, error) {
	tool := toolName("readelf")
	out, err := exec.Command(tool, "-h", e.Path).Output()
	if err != nil {
		return 0, &ToolError{Tool: tool, Detail: "failed to run", Err: err}
	}

	addr, err := parseEntryPoint(out)
	if err != nil {
		return 0, &ToolError{Tool: tool, Detail: err.Error()}
	}
	return addr, nil
}

// parseEntryPoint extracts the entry point address from readelf's
// header output ("Entry point address: 0x...").
func parseEntryPoint(out []byte) (uint32, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 4 && fields[0] == "Entry" {
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[3], "0x"), 16, 32)
			if err != nil {
				return 0, fmt.Errorf("unparseable entry point %q", fields[3])
			}
			return uint32(addr), nil
		}
	}
	return 0, fmt.Errorf("no entry point in header output")
}

// Section extracts the raw contents of a named section with objcopy.
// A section absent from the ELF yields empty data, which image
// construction treats as a skippable segment.
func (e *ELFFile) Section(name string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "section-*.bin")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	tool := toolName("objcopy")
	cmd := exec.Command(tool, "--only-section", name, "-Obinary", e.Path, tmpName)
	if err := cmd.Run(); err != nil {
		return nil, &ToolError{Tool: tool, Detail: fmt.Sprintf("failed to extract section %s", name), Err: err}
	}

	data, err := os.ReadFile(tmpName)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted section: %w", err)
	}
	return data, nil
}
