package phabricator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "github.com/lueurxax/task-stats/internal/core/errors"
)

// CursorMode decides when a search cursor ends the enumeration.
type CursorMode int

const (
	// CursorTruthy stops on an absent, null, empty-string or numeric-zero
	// token. This matches the legacy statistics script.
	CursorTruthy CursorMode = iota
	// CursorExplicit stops only when no token was sent (absent, null or
	// empty string). Numeric zero is a valid continuation token.
	CursorExplicit
)

// ParseCursorMode maps a configuration value to a CursorMode.
func ParseCursorMode(s string) (CursorMode, error) {
	switch s {
	case "", "truthy":
		return CursorTruthy, nil
	case "explicit":
		return CursorExplicit, nil
	default:
		return CursorTruthy, fmt.Errorf("%w: cursor mode %q", apperrors.ErrInputFormat, s)
	}
}

func (m CursorMode) String() string {
	if m == CursorExplicit {
		return "explicit"
	}

	return "truthy"
}

// Continues reports whether another page should be requested after c.
func (m CursorMode) Continues(c Cursor) bool {
	if m == CursorExplicit {
		return c.Present()
	}

	return c.Truthy()
}

type cursorKind int

const (
	cursorAbsent cursorKind = iota
	cursorString
	cursorNumber
	cursorFalse
)

// Cursor is the "after" continuation token of a search page. It keeps track
// of how the token was encoded so "no token" and "a token that looks empty"
// stay distinguishable.
type Cursor struct {
	token string
	kind  cursorKind
}

// StringCursor builds a cursor holding a string token.
func StringCursor(token string) Cursor {
	return Cursor{token: token, kind: cursorString}
}

// UnmarshalJSON accepts a string, a number, null or false.
func (c *Cursor) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*c = Cursor{}
	case bytes.Equal(trimmed, []byte("false")):
		*c = Cursor{kind: cursorFalse}
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: cursor: %w", apperrors.ErrDataShape, err)
		}

		*c = Cursor{token: s, kind: cursorString}
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("%w: cursor %s is not a token", apperrors.ErrDataShape, trimmed)
		}

		*c = Cursor{token: n.String(), kind: cursorNumber}
	}

	return nil
}

// Token returns the value to send as the next "after" parameter.
func (c Cursor) Token() string {
	return c.token
}

// Present reports whether the service sent a usable token.
func (c Cursor) Present() bool {
	switch c.kind {
	case cursorString:
		return c.token != ""
	case cursorNumber:
		return true
	default:
		return false
	}
}

// Truthy reports whether the token is non-empty and non-zero.
func (c Cursor) Truthy() bool {
	switch c.kind {
	case cursorString:
		return c.token != ""
	case cursorNumber:
		f, err := strconv.ParseFloat(c.token, 64)

		return err != nil || f != 0
	default:
		return false
	}
}
