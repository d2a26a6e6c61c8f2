package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedBox is matched by every error returned while parsing boxes.
var ErrMalformedBox = errors.New("mp4io: malformed box")

// ParseError locates a parse failure. Nested errors form a chain from the
// outermost container down to the field that could not be read.
type ParseError struct {
	Tag    Tag
	Debug  string
	Offset int
	Err    error
}

func (p *ParseError) Error() string {
	var (
		s     []string
		cause error
	)
	for err := p; err != nil; {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
		next, ok := err.Err.(*ParseError) //nolint:errorlint
		if !ok {
			cause = err.Err
			break
		}
		err = next
	}
	msg := "mp4io: parse error: " + strings.Join(s, ",")
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return msg
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

func (p *ParseError) Is(target error) bool {
	return target == ErrMalformedBox
}

// Innermost returns the deepest ParseError of the chain.
func (p *ParseError) Innermost() *ParseError {
	for {
		next, ok := p.Err.(*ParseError) //nolint:errorlint
		if !ok {
			return p
		}
		p = next
	}
}

func parseErr(debug string, offset int, prev error) error {
	return &ParseError{Debug: debug, Offset: offset, Err: prev}
}

func boxErr(tag Tag, offset int, prev error) error {
	return &ParseError{Tag: tag, Debug: tag.String(), Offset: offset, Err: prev}
}
