package pigpio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gloworm-vision/encodersine/hardware/gpio"
)

// Client is used for controlling GPIO and I2C over the pigpio socket interface.
// A single connection is shared, so requests are serialized.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
}

// compile-time check for whether Client satisfies the GPIO interface
var _ gpio.GPIO = &Client{}

// Dial dials into the pigpio socket interface (normally running on port 8888)
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("couldn't dial into pigpio socket: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Close closes the underlying pigpio socket interface connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection is already closed")
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}

// Write sets a GPIO pin to LOW or HIGH.
func (c *Client) Write(pin int, level gpio.Level) error {
	var rawLevel uint32
	if level {
		rawLevel = 1
	}

	_, err := c.command(cmdWrite, uint32(pin), rawLevel, nil, nil)
	return err
}

// I2COpen opens a handle to the device at addr on the given I2C bus.
func (c *Client) I2COpen(bus int, addr uint8) (*I2C, error) {
	flags := make([]byte, 4)

	handle, err := c.command(cmdI2CO, uint32(bus), uint32(addr), flags, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open i2c bus %d address %#x: %w", bus, addr, err)
	}

	return &I2C{client: c, handle: uint32(handle)}, nil
}

// I2C is an open handle to a single device on an I2C bus.
type I2C struct {
	client *Client
	handle uint32
}

// ReadRegister reads len(buf) bytes starting at register reg.
func (i *I2C) ReadRegister(reg byte, buf []byte) error {
	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, uint32(len(buf)))

	n, err := i.client.command(cmdI2CRI, i.handle, uint32(reg), count, buf)
	if err != nil {
		return fmt.Errorf("unable to read register %#x: %w", reg, err)
	}

	if int(n) != len(buf) {
		return fmt.Errorf("short read from register %#x: got %d of %d bytes", reg, n, len(buf))
	}

	return nil
}

// WriteRegister writes data starting at register reg.
func (i *I2C) WriteRegister(reg byte, data []byte) error {
	if _, err := i.client.command(cmdI2CWI, i.handle, uint32(reg), data, nil); err != nil {
		return fmt.Errorf("unable to write register %#x: %w", reg, err)
	}

	return nil
}

// Close releases the I2C handle. The pigpio connection stays open.
func (i *I2C) Close() error {
	_, err := i.client.command(cmdI2CC, i.handle, 0, nil, nil)
	return err
}

type cmd struct {
	Cmd uint32
	P1  uint32
	P2  uint32
	P3  uint32
}

const (
	cmdWrite uint32 = 4
	cmdI2CO  uint32 = 54
	cmdI2CC  uint32 = 55
	cmdI2CRI uint32 = 67
	cmdI2CWI uint32 = 68
)

// ErrCommand is returned when pigpio responds with a negative result.
type ErrCommand struct {
	Cmd    uint32
	Result int32
}

func (err ErrCommand) Error() string {
	return fmt.Sprintf("pigpio command %d failed with code %d", err.Cmd, err.Result)
}

// command sends a request with optional extension bytes (whose length goes in P3)
// and returns the result from the response. If out is non-nil, the response is
// expected to carry result bytes of extension data which are copied into out.
func (c *Client) command(command, p1, p2 uint32, ext []byte, out []byte) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return 0, fmt.Errorf("not connected to pigpio socket interface")
	}

	request := cmd{
		Cmd: command,
		P1:  p1,
		P2:  p2,
		P3:  uint32(len(ext)),
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, request)
	buf.Write(ext)

	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("unable to write request to socket: %w", err)
	}

	var response cmd
	if err := binary.Read(c.conn, binary.LittleEndian, &response); err != nil {
		return 0, fmt.Errorf("unable to read response from socket: %w", err)
	}

	result := int32(response.P3)
	if result < 0 {
		return result, ErrCommand{Cmd: command, Result: result}
	}

	if out != nil && result > 0 {
		data := make([]byte, result)
		if _, err := io.ReadFull(c.conn, data); err != nil {
			return 0, fmt.Errorf("unable to read extended response from socket: %w", err)
		}
		copy(out, data)
	}

	return result, nil
}
