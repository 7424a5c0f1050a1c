package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Placeholders appended in place of payloads that can't be used as text.
const (
	NotUTF8Payload = "<payload is not utf-8>"
	EmptyPayload   = "<payload is empty>"
)

// Policy decides what happens to a message whose payload isn't valid text.
type Policy string

// Set of policies.
const (
	// Substitute appends a placeholder so every message produces a block
	// and the chain has no gaps relative to the stream.
	Substitute Policy = "substitute"

	// Drop skips the message, leaving a gap relative to the stream.
	Drop Policy = "drop"
)

// ParsePolicy converts the name into a Policy. An empty name selects
// Substitute.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", Substitute:
		return Substitute, nil
	case Drop:
		return Drop, nil
	}

	return "", fmt.Errorf("unknown payload policy %q", name)
}

// Decision is the outcome of applying a policy to a payload.
type Decision struct {
	Payload     string
	Append      bool
	Substituted bool
}

// Decide applies the policy to the raw value of a message. A nil value
// means the message carried no payload, an empty non-nil value is a valid
// empty payload. The kafka source can't tell the two apart and always
// delivers a non-nil value.
func (p Policy) Decide(value []byte) Decision {
	var placeholder string
	switch {
	case value == nil:
		placeholder = EmptyPayload
	case !utf8.Valid(value):
		placeholder = NotUTF8Payload
	default:
		return Decision{Payload: string(value), Append: true}
	}

	if p == Drop {
		return Decision{}
	}

	return Decision{Payload: placeholder, Append: true, Substituted: true}
}
