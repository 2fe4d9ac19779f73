package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

// RunOnce blocks while the user selects a region in the resident, so the
// only time limit is ctx.
func (c *tcpClient) RunOnce(ctx context.Context) (bool, string, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, "", nil
	}

	var d net.Dialer
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, "", fmt.Errorf("connect to resident on %s: %w", addr, err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write([]byte(captureRequest)); err != nil {
		return true, "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return true, "", ctx.Err()
		}
		return true, "", err
	}
	body, _ := io.ReadAll(br)

	switch status {
	case successResponse:
		return true, string(body), nil
	case errorResponse:
		return true, "", errors.New(string(body))
	}
	return true, "", fmt.Errorf("unexpected resident response %q", status)
}
