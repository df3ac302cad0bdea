// internal/domain/failure/failure.go
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags one entry of the error taxonomy.
type Kind string

const (
	KindUnknown   Kind = "UNKNOWN"
	KindTransport Kind = "TRANSPORT"
	KindShape     Kind = "SHAPE"
	KindStatus    Kind = "STATUS"
	KindDelivery  Kind = "DELIVERY"
	KindConfig    Kind = "CONFIG"
)

// Error is the closed set of failures the bot distinguishes.
// Only types declared in this package implement it.
type Error interface {
	error
	Kind() Kind
	sealed()
}

// Retryable reports whether the loop may recover from the failure on a later cycle.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransport, KindShape, KindStatus, KindDelivery:
		return true
	default:
		return false
	}
}

// KindOf returns the kind of the first failure.Error found in err's chain.
func KindOf(err error) Kind {
	var fe Error
	if errors.As(err, &fe) {
		return fe.Kind()
	}
	return KindUnknown
}

// TransportError covers network failures and non-200 responses.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("endpoint returned status %d, expected 200", e.StatusCode)
	}
	return "endpoint connection error"
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() Kind    { return KindTransport }
func (*TransportError) sealed()         {}

// ShapeReason says what was wrong with the payload.
type ShapeReason string

const (
	ShapeInvalidJSON ShapeReason = "invalid json"
	ShapeNotMapping  ShapeReason = "not a mapping"
	ShapeMissingKey  ShapeReason = "missing key"
	ShapeNotList     ShapeReason = "not a list"
)

// ShapeError reports a malformed top-level payload.
type ShapeError struct {
	Reason ShapeReason
	Key    string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Key)
	}
	return string(e.Reason)
}

func (e *ShapeError) Unwrap() error { return e.Err }
func (e *ShapeError) Kind() Kind    { return KindShape }
func (*ShapeError) sealed()         {}

type StatusReason string

const (
	StatusMissingIdentifier StatusReason = "missing identifier"
	StatusUnknown           StatusReason = "unknown status"
)

// StatusError reports a malformed individual work item.
type StatusError struct {
	Reason StatusReason
	Status string
}

func (e *StatusError) Error() string {
	if e.Reason == StatusUnknown {
		return fmt.Sprintf("%s: %s", e.Reason, e.Status)
	}
	return string(e.Reason)
}

func (e *StatusError) Kind() Kind { return KindStatus }
func (*StatusError) sealed()      {}

// DeliveryError wraps a failed notification send.
type DeliveryError struct {
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("message %q not delivered: %v", e.Message, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
func (e *DeliveryError) Kind() Kind    { return KindDelivery }
func (*DeliveryError) sealed()         {}

// ConfigError lists every required variable that is absent or unusable.
type ConfigError struct {
	Missing []string
	Invalid []string
	Err     error
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variables: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid environment variables: "+strings.Join(e.Invalid, ", "))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "invalid configuration"
	}
	return strings.Join(parts, "; ")
}

func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Kind() Kind    { return KindConfig }
func (*ConfigError) sealed()         {}
