package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionKind classifies a session's provenance.
type SessionKind string

const (
	// SessionNormal is an ordinary interactive session.
	SessionNormal SessionKind = "Normal"
	// SessionDetached is a session running without a foreground reader.
	SessionDetached SessionKind = "Detached"
	// SessionShared is a session with an active sharing configuration.
	SessionShared SessionKind = "Shared"
	// SessionTemporary is a session not intended to be recovered.
	SessionTemporary SessionKind = "Temporary"
)

// SessionState is the lifecycle state of a session's metadata record.
type SessionState string

const (
	// StateActive means a foreground reader is attached to the PTY.
	StateActive SessionState = "Active"
	// StateDetached means the child is alive but no reader is attached.
	StateDetached SessionState = "Detached"
	// StateSuspended means the child has been sent SIGSTOP.
	StateSuspended SessionState = "Suspended"
	// StateTerminated means the child has exited and been reaped.
	StateTerminated SessionState = "Terminated"
	// StateRecovering means startup is attempting to reattach.
	StateRecovering SessionState = "Recovering"
)

// SharingPermission controls what a shared session's collaborators may do.
type SharingPermission string

const (
	// PermissionReadOnly allows observing output only.
	PermissionReadOnly SharingPermission = "ReadOnly"
	// PermissionReadWrite allows sending input as well.
	PermissionReadWrite SharingPermission = "ReadWrite"
)

// SharingConfig describes a session's sharing policy, when present.
type SharingConfig struct {
	Permission SharingPermission `json:"permission"`
	Invitees   []string          `json:"invitees,omitempty"`
}

// SessionMetadata is the persisted record for one session.
type SessionMetadata struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	SessionType    SessionKind       `json:"session_type"`
	State          SessionState      `json:"state"`
	Owner          string            `json:"owner"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	SharingConfig  *SharingConfig    `json:"sharing_config,omitempty"`
	CustomMetadata map[string]string `json:"custom_metadata"`
}

// Touch updates UpdatedAt to now and, if state is non-empty, transitions
// State as well.
func (m *SessionMetadata) Touch(state SessionState) {
	m.UpdatedAt = time.Now()
	if state != "" {
		m.State = state
	}
}
