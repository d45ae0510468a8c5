package toolchain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseSymbolTable(t *testing.T) {
	out := []byte(strings.Join([]string{
		"40100000 T call_user_start",
		"3ffe8000 D _data_start",
		"         U printf",
		"U memcpy",
		"40240000 T _irom0_text_start",
		"",
	}, "\n"))

	var warnings []string
	symbols, err := parseSymbolTable(out, func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	if err != nil {
		t.Fatalf("parseSymbolTable() error = %v", err)
	}

	want := map[string]uint32{
		"call_user_start":   0x40100000,
		"_data_start":       0x3FFE8000,
		"_irom0_text_start": 0x40240000,
	}
	for name, addr := range want {
		if symbols[name] != addr {
			t.Errorf("symbols[%q] = 0x%08X, want 0x%08X", name, symbols[name], addr)
		}
	}
	if len(symbols) != len(want) {
		t.Errorf("symbol count = %d, want %d", len(symbols), len(want))
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want one per undefined symbol", warnings)
	}
	if !strings.Contains(warnings[0], "printf") || !strings.Contains(warnings[1], "memcpy") {
		t.Errorf("warnings = %v, want undefined-symbol warnings for printf and memcpy", warnings)
	}
}

func TestParseSymbolTableBadLine(t *testing.T) {
	_, err := parseSymbolTable([]byte("zzzz T broken\n"), func(string, ...interface{}) {})
	if err == nil {
		t.Error("expected error for unparseable address")
	}
}

func TestParseEntryPoint(t *testing.T) {
	out := []byte(strings.Join([]string{
		"ELF Header:",
		"  Class:                             ELF32",
		"  Machine:                           Tensilica Xtensa Processor",
		"  Entry point address:               0x40100004",
		"  Start of program headers:          52 (bytes into file)",
	}, "\n"))

	addr, err := parseEntryPoint(out)
	if err != nil {
		t.Fatalf("parseEntryPoint() error = %v", err)
	}
	if addr != 0x40100004 {
		t.Errorf("addr = 0x%08X, want 0x40100004", addr)
	}
}

func TestParseEntryPointMissing(t *testing.T) {
	if _, err := parseEntryPoint([]byte("ELF Header:\n  Class: ELF32\n")); err == nil {
		t.Error("expected error when header has no entry point line")
	}
}

func TestToolNameXtensaCore(t *testing.T) {
	t.Setenv("XTENSA_CORE", "lx106")
	if got := toolName("nm"); got != "xt-nm" {
		t.Errorf("toolName(nm) = %q, want xt-nm", got)
	}
}

func TestSymbolNotFound(t *testing.T) {
	e := NewELFFile("unused.elf")
	e.symbols = map[string]uint32{"known": 1}

	_, err := e.SymbolAddr("missing")
	var notFound *SymbolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("SymbolAddr() error = %v, want *SymbolNotFoundError", err)
	}
	if notFound.Name != "missing" {
		t.Errorf("Name = %q, want missing", notFound.Name)
	}
}
