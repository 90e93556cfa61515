// Package topic implements MQTT style topic names and filters used to route
// todo events to subscribers.
package topic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the maximum size in bytes of a topic name or filter.
const MaxLength = 65535

const (
	separator           = "/"
	serverPrefix        = "$"
	singleLevelWildcard = "+"
	multiLevelWildcard  = "#"
)

var nameRegex = regexp.MustCompile("^[^#+]+$")

// Name is a concrete topic an event is published on, e.g. "todos/42".
type Name struct {
	value string
}

func NewName(value string) (*Name, error) {
	if value == "" {
		return nil, fmt.Errorf("topic name: cannot be empty")
	}

	if len(value) > MaxLength {
		return nil, fmt.Errorf("topic name: %.32s... cannot have more than %d bytes", value, MaxLength)
	}

	if !nameRegex.MatchString(value) {
		return nil, fmt.Errorf("topic name: %s format is invalid", value)
	}

	return &Name{value}, nil
}

// MustName is like NewName but panics on an invalid value.
func MustName(value string) *Name {
	name, err := NewName(value)
	if err != nil {
		panic(err)
	}

	return name
}

func (n *Name) String() string {
	return n.value
}

// IsServerSpecific reports whether the name starts with "$". Such topics are
// only matched by filters naming the same first level explicitly.
func (n *Name) IsServerSpecific() bool {
	return strings.HasPrefix(n.value, serverPrefix)
}

func (n *Name) levels() []string {
	return strings.Split(n.value, separator)
}

func (n *Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

func (n *Name) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	parsed, err := NewName(value)
	if err != nil {
		return err
	}

	*n = *parsed

	return nil
}
