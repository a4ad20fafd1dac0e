package easyremote

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Constants defined by the EasyRemote protocol
const (
	DefaultPort = 4003

	// Actions
	ActionReady         = "ready"
	ActionSetLayer      = "set_layer"
	ActionDone          = "done"
	ActionUpdateElement = "update_element"

	// EventUp is the only event the console expects on update_element.
	EventUp = "up"

	// MaxDatagramSize bounds a single inbound message.
	MaxDatagramSize = 4096
)

// readyMessage announces the client. Screen size is always reported as 0x0,
// so any positional fields the console sends back are zero as well.
const readyMessage = "action=ready&width=0&height=0\r\n"

var (
	ErrNotFound  = errors.New("control not found")
	ErrWrongKind = errors.New("control has a different kind")
	ErrClosed    = errors.New("session closed")

	// ErrInvalidColor reports a NaN or infinite HSV component.
	ErrInvalidColor = errors.New("color component is not finite")
)

// ParseError reports an inbound datagram that could not be understood.
type ParseError struct {
	Datagram string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %q: field %s: %v", e.Datagram, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Datagram, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errMissingField = errors.New("missing")
	errNotInteger   = errors.New("not an integer")
)

// Message is a decoded inbound datagram.
type Message struct {
	Action string
	Values url.Values
	raw    string
}

// ParseMessage decodes a datagram. Only the first value of a repeated key
// is ever consulted.
func ParseMessage(data []byte) (*Message, error) {
	raw := strings.TrimRight(string(data), "\r\n")
	values, err := parseQuery(raw)
	if err != nil {
		return nil, &ParseError{Datagram: raw, Err: err}
	}

	m := &Message{Values: values, raw: raw}
	m.Action = values.Get("action")
	if m.Action == "" {
		return nil, &ParseError{Datagram: raw, Field: "action", Err: errMissingField}
	}
	return m, nil
}

// parseQuery splits on '&' only, so a ';' stays part of its value.
// A malformed percent escape is an error.
func parseQuery(raw string) (url.Values, error) {
	values := make(url.Values)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, err
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		values.Add(k, v)
	}
	return values, nil
}

// Layer describes one control announced by a set_layer message.
// Positional fields are not kept.
type Layer struct {
	ID   int
	Page int
	Name string
	Type string
}

// Layer extracts the control description from a set_layer message.
func (m *Message) Layer() (Layer, error) {
	var l Layer
	var err error

	if l.ID, err = m.intField("id"); err != nil {
		return Layer{}, err
	}
	if l.Page, err = m.intField("page"); err != nil {
		return Layer{}, err
	}
	if l.Name, err = m.field("name"); err != nil {
		return Layer{}, err
	}
	if l.Type, err = m.field("type"); err != nil {
		return Layer{}, err
	}
	return l, nil
}

func (m *Message) field(key string) (string, error) {
	v := m.Values.Get(key)
	if v == "" {
		return "", &ParseError{Datagram: m.raw, Field: key, Err: errMissingField}
	}
	return v, nil
}

func (m *Message) intField(key string) (int, error) {
	v, err := m.field(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ParseError{Datagram: m.raw, Field: key, Err: errNotInteger}
	}
	return n, nil
}

// Update is an outbound update_element command.
type Update struct {
	ID    int
	Page  int
	Value string
	Type  Kind
}

// Encode serializes the update. Field order is fixed and the value is
// written verbatim so that comma separated values reach the console as is.
func (u Update) Encode() []byte {
	var b strings.Builder
	b.WriteString("action=" + ActionUpdateElement)
	b.WriteString("&id=" + strconv.Itoa(u.ID))
	b.WriteString("&page=" + strconv.Itoa(u.Page))
	b.WriteString("&value=" + u.Value)
	b.WriteString("&type=" + string(u.Type))
	b.WriteString("&event=" + EventUp)
	return []byte(b.String())
}
