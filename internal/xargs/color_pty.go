// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package xargs

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// runColor runs c with stdout and stderr on a pseudo-terminal so tools that
// check isatty emit color. Output processing is disabled so "\n" is not
// rewritten to "\r\n".
func runColor(c *exec.Cmd) ([]byte, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, err
	}
	defer ptmx.Close()

	if err := disableOutputProcessing(tty); err != nil {
		tty.Close()
		return nil, err
	}

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		tty.Close()
		return nil, err
	}
	defer devNull.Close()

	c.Stdin = devNull
	c.Stdout = tty
	c.Stderr = tty
	if err := c.Start(); err != nil {
		tty.Close()
		return nil, err
	}
	// The child holds its own copy; closing ours lets reads hit EOF/EIO.
	tty.Close()

	var buf bytes.Buffer
	_, copyErr := io.Copy(&buf, ptmx)
	waitErr := c.Wait()
	if copyErr != nil && !errors.Is(copyErr, syscall.EIO) && waitErr == nil {
		return buf.Bytes(), copyErr
	}
	return buf.Bytes(), waitErr
}

func disableOutputProcessing(tty *os.File) error {
	fd := int(tty.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	termios.Oflag &^= unix.ONLCR | unix.OPOST
	return unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
}
