package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects INSTREAM chunks above StreamMaxLength; 1 MiB stays well under
// the default.
const chunkSize = 1 << 20

// ClamAVScanner streams files to a clamd daemon
type ClamAVScanner struct {
	network string
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner takes a TCP "host:port" or an absolute unix socket path
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &ClamAVScanner{network: network, address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string { return "clamav" }

func (c *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping checks that clamd answers
func (c *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: unexpected reply %q", ErrUnavailable, reply)
	}
	return nil
}

// Scan sends data with the INSTREAM command
func (c *ClamAVScanner) Scan(ctx context.Context, data []byte) (Result, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var size [4]byte
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		binary.BigEndian.PutUint32(size[:], uint32(end-start))
		if _, err := w.Write(size[:]); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if _, err := w.Write(data[start:end]); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := w.Flush(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return Result{}, err
	}
	return parseReply(reply, c.Name())
}

// readReply reads one NUL-terminated (z-prefixed command) response
func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}

// parseReply reads "stream: OK", "stream: <sig> FOUND" or "<msg> ERROR"
func parseReply(reply, scanner string) (Result, error) {
	res := Result{Scanner: scanner}
	body := strings.TrimSpace(strings.TrimPrefix(reply, "stream:"))
	switch {
	case body == "OK":
		return res, nil
	case strings.HasSuffix(body, " FOUND"):
		res.Infected = true
		res.Threat = strings.TrimSuffix(body, " FOUND")
		return res, nil
	default:
		return res, fmt.Errorf("%w: %s", ErrUnavailable, reply)
	}
}
