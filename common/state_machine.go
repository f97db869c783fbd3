package common

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/packet"
)

// StateMachine tracks the protocol state of one session. Closed is terminal.
type StateMachine struct {
	mu    sync.RWMutex
	state packet.State
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: packet.StateIdle}
}

func (m *StateMachine) State() packet.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func canTransition(from, to packet.State) bool {
	if from == packet.StateClosed {
		return false
	}
	switch to {
	case packet.StateClosed:
		return true
	case packet.StateHandshaking:
		return from == packet.StateIdle
	case packet.StateStatus, packet.StateLogin:
		return from == packet.StateHandshaking
	case packet.StatePlay:
		return from == packet.StateLogin
	}
	return false
}

// Transition moves to state to, or fails with ErrInvalidTransition.
func (m *StateMachine) Transition(to packet.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !canTransition(m.state, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", m.state, to)
	}
	m.state = to
	return nil
}

// Close moves to Closed and reports whether the machine was open.
func (m *StateMachine) Close() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == packet.StateClosed {
		return false
	}
	m.state = packet.StateClosed
	return true
}
