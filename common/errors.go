package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

var (
	ErrConnClosed        = errors.New("mcnet: connection is closed")
	ErrNotConnected      = errors.New("mcnet: not connected")
	ErrNoAddress         = errors.New("mcnet: no server address, call Connect first")
	ErrInvalidTransition = errors.New("mcnet: invalid state transition")
	ErrProtocolViolation = errors.New("mcnet: protocol violation")
	ErrConnectionRefused = errors.New("mcnet: connection refused")
	ErrResolutionFailed  = errors.New("mcnet: host resolution failed")
	ErrTimeout           = errors.New("mcnet: timed out")
	ErrTransport         = errors.New("mcnet: transport failure")
)

// TransportError reports a failed socket operation. Kind is one of ErrConnectionRefused,
// ErrResolutionFailed, ErrTimeout or ErrTransport, and matches with errors.Is.
type TransportError struct {
	Op   string
	Kind error
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == e.Kind
}

// NewTransportError classifies err and wraps it.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Kind: ClassifyNetError(err), Err: err}
}

// ClassifyNetError maps a dial or socket error to a transport error kind.
func ClassifyNetError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrTimeout
		}
		return ErrResolutionFailed
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrTransport
}
