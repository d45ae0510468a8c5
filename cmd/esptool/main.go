// Command esptool talks to the ESP8266 ROM bootloader over a serial
// port: it writes and reads flash, loads code into RAM, inspects
// memory and builds firmware images from binaries or ELF files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	serialPort string
	baudRate   int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "esptool",
	Short: "ESP8266 ROM Bootloader Utility",
	Long: `esptool communicates with the ESP8266 ROM bootloader over a serial
port. It can write firmware to flash, load and run code in RAM, read
flash and memory back, and create firmware images from raw binaries or
compiled ELF files.

Image manipulation commands (image_info, make_image, elf2image) work on
local files and need no device attached.`,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serialPort, "port", "p", "/dev/ttyUSB0", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Serial port baud rate")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show protocol-level logging")

	rootCmd.AddCommand(loadRAMCmd)
	rootCmd.AddCommand(dumpMemCmd)
	rootCmd.AddCommand(readMemCmd)
	rootCmd.AddCommand(writeMemCmd)
	rootCmd.AddCommand(writeFlashCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(imageInfoCmd)
	rootCmd.AddCommand(makeImageCmd)
	rootCmd.AddCommand(elf2imageCmd)
	rootCmd.AddCommand(readMACCmd)
	rootCmd.AddCommand(flashIDCmd)
	rootCmd.AddCommand(readFlashCmd)
	rootCmd.AddCommand(eraseFlashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nA fatal error occurred: %s\n", err)
		os.Exit(2)
	}
}
