package bootloader

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/matthewtherat/xtensa-toolchain/protocol"
)

// responseRetries bounds the receive loop of a single command. Some
// ESP8266s answer the sync sequence with more responses than expected;
// the engine discards responses whose opcode does not echo the request
// until a matching one arrives or this budget is exhausted. This is a
// device-specific workaround, not a generic retry policy.
const responseRetries = 100

// syncResponseBurst is the number of extra responses the ROM emits
// after answering a sync command; Sync drains them all.
const syncResponseBurst = 7

// resetPulseDelay is the settle time between control line transitions
// during the reset-to-bootloader sequence.
const resetPulseDelay = 50 * time.Millisecond

// Conn is the duplex byte channel a session runs on, exclusively owned
// by one Client. Read must return (0, nil) when the configured read
// timeout elapses, as go.bug.st/serial ports do; port.Port satisfies
// this interface.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(d time.Duration) error
	SetDTR(level bool) error
	SetRTS(level bool) error
	FlushInput() error
	FlushOutput() error
}

// Client drives one bootloader session over a serial connection.
//
// The protocol is half-duplex with exactly one command outstanding at
// a time; Client is not safe for concurrent use.
type Client struct {
	conn   Conn
	framer *protocol.Framer
	config Config
}

// New creates a Client over the given connection.
//
// Example:
//
//	p, _ := port.Open("/dev/ttyUSB0", port.DefaultBaud)
//	client := bootloader.New(p, bootloader.WithLogger(myLogger))
func New(conn Conn, opts ...Option) *Client {
	if conn == nil {
		panic("conn cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		conn:   conn,
		framer: protocol.NewFramer(conn),
		config: cfg,
	}
}

// Command sends a request packet and waits for the matching response,
// returning its value word and body. Responses whose opcode does not
// echo the request are discarded; see responseRetries.
func (c *Client) Command(op byte, body []byte, checksum uint32) (uint32, []byte, error) {
	if err := c.framer.WriteFrame(protocol.EncodeCommand(op, body, checksum)); err != nil {
		return 0, nil, fmt.Errorf("failed to send command 0x%02X: %w", op, err)
	}

	for attempt := 0; attempt < responseRetries; attempt++ {
		hdr, respBody, err := c.receiveResponse()
		if err != nil {
			return 0, nil, err
		}
		if hdr.Opcode == op {
			return hdr.Value, respBody, nil
		}
		c.logDebug("discarding unsolicited response",
			"opcode", fmt.Sprintf("0x%02X", hdr.Opcode),
			"want", fmt.Sprintf("0x%02X", op),
		)
	}

	return 0, nil, &ResponseMismatchError{Opcode: op}
}

// drainResponse reads and discards the next well-formed response
// regardless of its opcode. Used to consume the sync burst.
func (c *Client) drainResponse() error {
	_, _, err := c.receiveResponse()
	return err
}

// receiveResponse reads one complete delimited response frame.
func (c *Client) receiveResponse() (protocol.ResponseHeader, []byte, error) {
	if err := c.framer.ReadFrameDelimiter(); err != nil {
		return protocol.ResponseHeader{}, nil, err
	}

	raw, err := c.framer.Read(protocol.HeaderSize)
	if err != nil {
		return protocol.ResponseHeader{}, nil, err
	}
	hdr, err := protocol.ParseResponseHeader(raw)
	if err != nil {
		return protocol.ResponseHeader{}, nil, err
	}

	body, err := c.framer.Read(int(hdr.Length))
	if err != nil {
		return protocol.ResponseHeader{}, nil, err
	}

	if err := c.framer.ReadFrameDelimiter(); err != nil {
		return protocol.ResponseHeader{}, nil, err
	}

	return hdr, body, nil
}

// checkedCommand runs a command and requires the ROM's two-byte
// success code in the response body. seq is the block sequence number
// for download commands, -1 otherwise.
func (c *Client) checkedCommand(op string, seq int, opcode byte, body []byte, checksum uint32) error {
	_, status, err := c.Command(opcode, body, checksum)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !protocol.IsStatusOK(status) {
		return &OpError{Op: op, Seq: seq, Status: status}
	}
	return nil
}

// ReadReg reads a 32-bit word from a target memory address.
func (c *Client) ReadReg(addr uint32) (uint32, error) {
	value, status, err := c.Command(protocol.OpReadReg, packWords(addr), 0)
	if err != nil {
		return 0, fmt.Errorf("read register 0x%08X: %w", addr, err)
	}
	if !protocol.IsStatusOK(status) {
		return 0, &OpError{Op: "read register", Seq: -1, Status: status}
	}
	return value, nil
}

// WriteReg writes a masked value to a target memory address, with an
// optional device-side delay in microseconds before the write.
func (c *Client) WriteReg(addr, value, mask, delayMicros uint32) error {
	return c.checkedCommand("write register", -1,
		protocol.OpWriteReg, packWords(addr, value, mask, delayMicros), 0)
}

// syncPayload returns the fixed 36-byte magic the ROM's auto-baud
// detector locks onto: 0x07 0x07 0x12 0x20 followed by 32 times 0x55.
func syncPayload() []byte {
	p := make([]byte, 36)
	copy(p, []byte{0x07, 0x07, 0x12, 0x20})
	for i := 4; i < len(p); i++ {
		p[i] = 0x55
	}
	return p
}

// Sync performs one sync handshake and drains the response burst the
// ROM is known to emit after it.
func (c *Client) Sync() error {
	if _, _, err := c.Command(protocol.OpSync, syncPayload(), 0); err != nil {
		return err
	}
	for i := 0; i < syncResponseBurst; i++ {
		if err := c.drainResponse(); err != nil {
			return err
		}
	}
	return nil
}

// Connect forces the chip into bootloader mode and synchronizes with
// it. Each reset attempt pulses the control lines (RTS drives CH_PD or
// nRESET, DTR drives GPIO0, both active low on common boards), then
// tries the sync handshake several times under a short timeout. The
// nested attempt loop compensates for the ROM's auto-baud and
// entry-timing sensitivity; exhausting it is fatal.
func (c *Client) Connect() error {
	c.logInfo("connecting")

	if err := c.conn.SetReadTimeout(c.config.Timeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	for attempt := 0; attempt < c.config.ResetAttempts; attempt++ {
		c.reportProgress(Progress{
			Phase:   PhaseConnecting,
			Current: attempt + 1,
			Total:   c.config.ResetAttempts,
		})

		if err := c.resetToBootloader(); err != nil {
			return err
		}

		if err := c.trySync(); err == nil {
			c.logInfo("connected", "attempt", attempt+1)
			return nil
		}
	}

	err := &ConnectError{Attempts: c.config.ResetAttempts * c.config.SyncAttempts}
	c.logError("connect failed", "attempts", err.Attempts)
	return err
}

// resetToBootloader reboots the chip with GPIO0 held low so the ROM
// stays in the serial bootloader instead of booting from flash.
func (c *Client) resetToBootloader() error {
	steps := []struct {
		dtr, rts bool
		settle   bool
	}{
		{dtr: false, rts: true, settle: true},  // chip in reset, GPIO0 released
		{dtr: true, rts: false, settle: true},  // out of reset, GPIO0 low
		{dtr: false, rts: false, settle: false},
	}
	for _, s := range steps {
		if err := c.conn.SetDTR(s.dtr); err != nil {
			return fmt.Errorf("failed to drive DTR: %w", err)
		}
		if err := c.conn.SetRTS(s.rts); err != nil {
			return fmt.Errorf("failed to drive RTS: %w", err)
		}
		if s.settle {
			time.Sleep(resetPulseDelay)
		}
	}
	return nil
}

// trySync performs the inner sync attempts under the short handshake
// timeout, flushing stale bytes before each try.
func (c *Client) trySync() error {
	var lastErr error
	for i := 0; i < c.config.SyncAttempts; i++ {
		if err := c.conn.FlushInput(); err != nil {
			return fmt.Errorf("failed to flush input: %w", err)
		}
		if err := c.conn.FlushOutput(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}

		lastErr = c.withReadTimeout(c.config.SyncTimeout, c.Sync)
		if lastErr == nil {
			return nil
		}
		c.logDebug("sync attempt failed", "attempt", i+1, "error", lastErr)
		time.Sleep(resetPulseDelay)
	}
	return lastErr
}

// withReadTimeout runs fn with the read timeout temporarily set to d
// and restores the operating timeout on every exit path. Leaving a
// lowered or raised timeout behind would corrupt later operations.
func (c *Client) withReadTimeout(d time.Duration, fn func() error) error {
	if err := c.conn.SetReadTimeout(d); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	defer func() {
		_ = c.conn.SetReadTimeout(c.config.Timeout)
	}()
	return fn()
}

// packWords encodes 32-bit words as a little-endian command body.
func packWords(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// reportProgress calls the progress callback if configured.
func (c *Client) reportProgress(p Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(p)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
