package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewtherat/xtensa-toolchain/image"
	"github.com/matthewtherat/xtensa-toolchain/toolchain"
)

// Flash parameter flags, shared by write_flash and elf2image.
var (
	flashFreq string
	flashMode string
	flashSize string
)

// make_image flags
var (
	segFiles   []string
	segAddrs   []string
	entryPoint string
)

// elf2image flags
var (
	elfOutput   string
	entrySymbol string
)

var imageInfoCmd = &cobra.Command{
	Use:   "image_info <filename>",
	Short: "Dump headers from an application image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		img, err := image.Parse(args[0])
		if err != nil {
			return err
		}

		if img.EntryPoint != 0 {
			fmt.Printf("Entry point: %08x\n", img.EntryPoint)
		} else {
			fmt.Println("Entry point not set")
		}
		fmt.Printf("%d segments\n\n", len(img.Segments))
		for i, seg := range img.Segments {
			fmt.Printf("Segment %d: %5d bytes at %08x\n", i+1, len(seg.Data), seg.Addr)
		}

		validity := "valid"
		if !img.ValidateChecksum() {
			validity = "invalid!"
		}
		fmt.Printf("\nChecksum: %02x (%s)\n", img.Checksum, validity)
		return nil
	},
}

var makeImageCmd = &cobra.Command{
	Use:   "make_image <output>",
	Short: "Create an application image from binary files",
	Long: `Create an application image from raw segment files.

Each --segfile needs a matching --segaddr giving its load address.
Files with a .hex extension are parsed as Intel HEX and contribute one
segment per contiguous data region; their --segaddr is ignored in
favor of the addresses recorded in the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if len(segFiles) == 0 {
			return fmt.Errorf("no segments specified")
		}
		if len(segFiles) != len(segAddrs) {
			return fmt.Errorf("number of specified files does not match number of specified addresses")
		}

		img := image.New()
		for i, name := range segFiles {
			if strings.EqualFold(filepath.Ext(name), ".hex") {
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				segments, err := image.SegmentsFromHex(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				for _, seg := range segments {
					img.AddSegment(seg.Addr, seg.Data)
				}
				continue
			}

			addr, err := parseUint32(segAddrs[i])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			img.AddSegment(addr, data)
		}

		if entryPoint != "" {
			entry, err := parseUint32(entryPoint)
			if err != nil {
				return err
			}
			img.EntryPoint = entry
		}

		return img.Save(args[0])
	},
}

func init() {
	makeImageCmd.Flags().StringArrayVarP(&segFiles, "segfile", "f", nil, "Segment input file")
	makeImageCmd.Flags().StringArrayVarP(&segAddrs, "segaddr", "a", nil, "Segment base address")
	makeImageCmd.Flags().StringVarP(&entryPoint, "entrypoint", "e", "", "Address of entry point")
}

var elf2imageCmd = &cobra.Command{
	Use:   "elf2image <input>",
	Short: "Create an application image from ELF file",
	Long: `Create flashable files from a compiled ELF firmware.

Two files are produced under the output prefix: <prefix>0x00000.bin
holding the RAM-resident segments, and <prefix>0x<offset>.bin holding
the raw flash-mapped .irom0.text section at its flash offset. The
prefix defaults to the input filename followed by a dash.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		mode, err := image.ParseFlashMode(flashMode)
		if err != nil {
			return err
		}
		size, err := image.ParseFlashSize(flashSize)
		if err != nil {
			return err
		}
		freq, err := image.ParseFlashFreq(flashFreq)
		if err != nil {
			return err
		}

		prefix := elfOutput
		if prefix == "" {
			prefix = args[0] + "-"
		}

		elf := toolchain.NewELFFile(args[0])
		elf.SetWarnFunc(func(format string, a ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		})

		out, err := image.FromObject(elf, entrySymbol)
		if err != nil {
			return err
		}
		out.Image.FlashMode = byte(mode)
		out.Image.FlashSizeFreq = image.PackSizeFreq(size, freq)

		if err := out.Image.Save(prefix + "0x00000.bin"); err != nil {
			return err
		}

		iromFile := prefix + fmt.Sprintf("0x%05x.bin", out.IROMOffset)
		return os.WriteFile(iromFile, out.IROM, 0644)
	},
}

func init() {
	elf2imageCmd.Flags().StringVarP(&elfOutput, "output", "o", "", "Output filename prefix")
	elf2imageCmd.Flags().StringVar(&entrySymbol, "entry-symbol", "call_user_start", "Entry point symbol name")
	elf2imageCmd.Flags().StringVarP(&flashFreq, "flash_freq", "f", "40m", "SPI flash frequency (40m, 26m, 20m, 80m)")
	elf2imageCmd.Flags().StringVarP(&flashMode, "flash_mode", "m", "qio", "SPI flash mode (qio, qout, dio, dout)")
	elf2imageCmd.Flags().StringVarP(&flashSize, "flash_size", "s", "4m", "SPI flash size in Mbit")
}
