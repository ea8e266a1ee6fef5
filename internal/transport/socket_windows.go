//go:build windows

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions configures the resolver's outbound UDP socket on Windows.
// Windows SO_REUSEADDR allows port sharing outright, unlike POSIX's
// TIME_WAIT-only semantics; there is no SO_REUSEPORT to set.
func setSocketOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	return nil
}

// getKernelVersion returns empty string on Windows (not applicable).
func getKernelVersion() string {
	return ""
}

func platformControl(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	err := c.Control(func(fd uintptr) {
		sockoptErr = setSocketOptions(fd)
	})
	if err != nil {
		return fmt.Errorf("raw conn control failed: %w", err)
	}
	return sockoptErr
}

// PlatformControl is the net.ListenConfig.Control hook used when opening the
// resolver's outbound socket.
func PlatformControl(network, address string, c syscall.RawConn) error {
	return platformControl(network, address, c)
}
