package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthewtherat/xtensa-toolchain/bootloader"
	"github.com/matthewtherat/xtensa-toolchain/image"
)

var loadRAMCmd = &cobra.Command{
	Use:   "load_ram <filename>",
	Short: "Download an image to RAM and execute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		img, err := image.Parse(args[0])
		if err != nil {
			return err
		}

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		fmt.Println("RAM boot...")
		if err := client.LoadRAM(img); err != nil {
			return err
		}
		fmt.Printf("All segments done, executing at %08x\n", img.EntryPoint)
		return nil
	},
}

var dumpMemCmd = &cobra.Command{
	Use:   "dump_mem <address> <size> <filename>",
	Short: "Dump arbitrary memory to disk",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		addr, err := parseUint32(args[0])
		if err != nil {
			return err
		}
		size, err := parseUint32(args[1])
		if err != nil {
			return err
		}

		f, err := os.Create(args[2])
		if err != nil {
			return err
		}
		defer f.Close()

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		if err := client.DumpMem(addr, size, f); err != nil {
			return err
		}
		fmt.Println("Done!")
		return nil
	},
}

var readMemCmd = &cobra.Command{
	Use:   "read_mem <address>",
	Short: "Read arbitrary memory location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		addr, err := parseUint32(args[0])
		if err != nil {
			return err
		}

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		value, err := client.ReadReg(addr)
		if err != nil {
			return err
		}
		fmt.Printf("0x%08x = 0x%08x\n", addr, value)
		return nil
	},
}

var writeMemCmd = &cobra.Command{
	Use:   "write_mem <address> <value> <mask>",
	Short: "Read-modify-write to arbitrary memory location",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		addr, err := parseUint32(args[0])
		if err != nil {
			return err
		}
		value, err := parseUint32(args[1])
		if err != nil {
			return err
		}
		mask, err := parseUint32(args[2])
		if err != nil {
			return err
		}

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		if err := client.WriteReg(addr, value, mask, 0); err != nil {
			return err
		}
		fmt.Printf("Wrote %08x, mask %08x to %08x\n", value, mask, addr)
		return nil
	},
}

var writeFlashCmd = &cobra.Command{
	Use:   "write_flash <address> <filename> [<address> <filename>]...",
	Short: "Write a binary blob to flash",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected one or more address/filename pairs")
		}
		return nil
	},
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
		info := bootloader.FlashInfo{
			Mode:     mode,
			SizeFreq: image.PackSizeFreq(size, freq),
		}

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		for i := 0; i < len(args); i += 2 {
			addr, err := parseUint32(args[i])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[i+1])
			if err != nil {
				return err
			}

			start := time.Now()
			if err := client.WriteFlash(addr, data, info); err != nil {
				return err
			}
			elapsed := time.Since(start).Seconds()
			fmt.Printf("Wrote %d bytes at 0x%08x in %.1f seconds (%.1f kbit/s)\n",
				len(data), addr, elapsed, float64(len(data))/elapsed*8/1000)
		}

		fmt.Println("Leaving...")
		return client.FinishFlash(mode)
	},
}

func init() {
	writeFlashCmd.Flags().StringVarP(&flashFreq, "flash_freq", "f", "40m", "SPI flash frequency (40m, 26m, 20m, 80m)")
	writeFlashCmd.Flags().StringVarP(&flashMode, "flash_mode", "m", "qio", "SPI flash mode (qio, qout, dio, dout)")
	writeFlashCmd.Flags().StringVarP(&flashSize, "flash_size", "s", "4m", "SPI flash size in Mbit")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run application code in flash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		return client.Run(false)
	},
}

var readMACCmd = &cobra.Command{
	Use:   "read_mac",
	Short: "Read MAC address from OTP ROM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		mac, err := client.ReadMAC()
		if err != nil {
			return err
		}
		fmt.Printf("MAC AP: %s\n", mac.APString())
		fmt.Printf("MAC STA: %s\n", mac.StationString())
		return nil
	},
}

var flashIDCmd = &cobra.Command{
	Use:   "flash_id",
	Short: "Read SPI flash manufacturer and device ID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		id, err := client.FlashID()
		if err != nil {
			return err
		}
		fmt.Printf("Manufacturer: %02x\n", id&0xFF)
		fmt.Printf("Device: %02x%02x\n", (id>>8)&0xFF, (id>>16)&0xFF)
		return nil
	},
}

var readFlashCmd = &cobra.Command{
	Use:   "read_flash <address> <size> <filename>",
	Short: "Read SPI flash content",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		addr, err := parseUint32(args[0])
		if err != nil {
			return err
		}
		size, err := parseUint32(args[1])
		if err != nil {
			return err
		}

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		fmt.Println("Please wait...")
		data, err := client.ReadFlash(addr, size)
		if err != nil {
			return err
		}
		return os.WriteFile(args[2], data, 0644)
	},
}

var eraseFlashCmd = &cobra.Command{
	Use:   "erase_flash",
	Short: "Perform chip erase on SPI flash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client, p, err := connect()
		if err != nil {
			return err
		}
		defer p.Close()

		if err := client.EraseChip(); err != nil {
			return err
		}
		fmt.Println("Erase started; reset the device when the flash LED stops flickering.")
		return nil
	},
}
