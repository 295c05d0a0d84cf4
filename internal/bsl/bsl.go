// Package bsl parses the block structured language used by the dis86
// configuration: a node is a list of key value pairs, where a value is
// either a string or a nested node in braces.
//
//	dis86 {
//	  functions {
//	    F_Main { start 1000:0000 end "" mode far }
//	  }
//	}
package bsl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is returned for malformed input.
var ErrSyntax = errors.New("bsl syntax error")

// Value is either a string or a node.
type Value struct {
	Str  string
	Node *Node // nil for string values
}

// IsNode returns whether the value is a nested node.
func (v Value) IsNode() bool {
	return v.Node != nil
}

// KeyValue is a single entry of a node.
type KeyValue struct {
	Key   string
	Value Value
}

// Node is an ordered list of key value pairs. Keys are not required to be
// unique, lookups return the first match.
type Node struct {
	Entries []KeyValue
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenStr
	tokenOpen
	tokenClose
)

type parser struct {
	buf  string
	idx  int
	line int

	tokType tokenType
	tokStr  string
}

// Parse parses a complete document and returns its root node.
func Parse(data string) (*Node, error) {
	p := &parser{buf: data, line: 1}
	if err := p.next(); err != nil {
		return nil, err
	}

	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.tokType != tokenEOF {
		return nil, p.errorf("expected end of input")
	}
	return root, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, p.line, fmt.Sprintf(format, args...))
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isVisible(c byte) bool {
	return c >= 33 && c <= 126
}

func (p *parser) skipWhite() {
	for ; p.idx < len(p.buf) && isWhite(p.buf[p.idx]); p.idx++ {
		if p.buf[p.idx] == '\n' {
			p.line++
		}
	}
}

// next reads the next token.
func (p *parser) next() error {
	p.skipWhite()
	if p.idx == len(p.buf) {
		p.tokType = tokenEOF
		p.tokStr = ""
		return nil
	}

	c := p.buf[p.idx]
	switch {
	case c == '{':
		p.idx++
		p.tokType = tokenOpen
		return nil

	case c == '}':
		p.idx++
		p.tokType = tokenClose
		return nil

	case c == '"':
		end := strings.IndexByte(p.buf[p.idx+1:], '"')
		if end < 0 {
			return p.errorf("reached end of input inside a quoted string")
		}
		p.tokType = tokenStr
		p.tokStr = p.buf[p.idx+1 : p.idx+1+end]
		p.line += strings.Count(p.tokStr, "\n")
		p.idx += end + 2
		return nil

	case isVisible(c):
		start := p.idx
		for p.idx < len(p.buf) && isVisible(p.buf[p.idx]) && p.buf[p.idx] != '{' && p.buf[p.idx] != '}' {
			p.idx++
		}
		p.tokType = tokenStr
		p.tokStr = p.buf[start:p.idx]
		return nil

	default:
		return p.errorf("unexpected character 0x%02x", c)
	}
}

// parseNode parses key value pairs until the next token is not a string.
func (p *parser) parseNode() (*Node, error) {
	node := &Node{}

	for p.tokType == tokenStr {
		key := p.tokStr
		if err := p.next(); err != nil {
			return nil, err
		}

		value, err := p.parseValue(key)
		if err != nil {
			return nil, err
		}
		node.Entries = append(node.Entries, KeyValue{Key: key, Value: value})
	}

	return node, nil
}

func (p *parser) parseValue(key string) (Value, error) {
	switch p.tokType {
	case tokenStr:
		value := Value{Str: p.tokStr}
		return value, p.next()

	case tokenOpen:
		if err := p.next(); err != nil {
			return Value{}, err
		}
		node, err := p.parseNode()
		if err != nil {
			return Value{}, err
		}
		if p.tokType != tokenClose {
			return Value{}, p.errorf("expected closing '}' for '%s'", key)
		}
		return Value{Node: node}, p.next()

	case tokenEOF, tokenClose:
		return Value{}, p.errorf("missing value for key '%s'", key)

	default:
		return Value{}, p.errorf("unexpected token for key '%s'", key)
	}
}

// Get returns the value at a dot separated path like "dis86.functions".
func (n *Node) Get(path string) (Value, bool) {
	if path == "" {
		return Value{}, false
	}

	node := n
	keys := strings.Split(path, ".")
	for i, key := range keys {
		value, ok := node.Child(key)
		if !ok {
			return Value{}, false
		}
		if i == len(keys)-1 {
			return value, true
		}
		if !value.IsNode() {
			return Value{}, false
		}
		node = value.Node
	}
	return Value{}, false
}

// GetStr returns the string at the given path.
func (n *Node) GetStr(path string) (string, bool) {
	value, ok := n.Get(path)
	if !ok || value.IsNode() {
		return "", false
	}
	return value.Str, true
}

// GetNode returns the node at the given path.
func (n *Node) GetNode(path string) (*Node, bool) {
	value, ok := n.Get(path)
	if !ok || !value.IsNode() {
		return nil, false
	}
	return value.Node, true
}

// Keys returns the keys of all entries in order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.Entries))
	for _, kv := range n.Entries {
		keys = append(keys, kv.Key)
	}
	return keys
}

// Child returns the value of the first entry with the given key. Unlike Get
// the key is not split at dots.
func (n *Node) Child(key string) (Value, bool) {
	for _, kv := range n.Entries {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return Value{}, false
}
