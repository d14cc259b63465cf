package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "assignor not found"}
		s.Equal("assignor not found", err.Error())
	})

	s.Run("code when message is empty", func() {
		err := &Error{Code: CodeConflict}
		s.Equal("conflict", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	a := &Error{Code: CodeValidation, Message: "value must be greater than zero"}
	b := &Error{Code: CodeValidation, Message: "emission date cannot be in the future"}
	s.True(errors.Is(a, b))
	s.False(errors.Is(a, &Error{Code: CodeNotFound}))
	s.False(a.Is(errors.New("validation_failed")))

	wrapped := fmt.Errorf("store: %w", a)
	s.True(errors.Is(wrapped, &Error{Code: CodeValidation}))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps existing domain code", func() {
		inner := New(CodeNotFound, "payable not found")
		outer := Wrap(inner, CodeInternal, "failed to load payable")

		var de *Error
		s.Require().True(errors.As(outer, &de))
		s.Equal(CodeNotFound, de.Code)
		s.Equal("failed to load payable", de.Message)
	})

	s.Run("applies code to plain errors", func() {
		root := errors.New("connection refused")
		outer := Wrap(root, CodeInternal, "failed to create assignor")

		s.True(HasCode(outer, CodeInternal))
		s.ErrorIs(outer, root)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeUnauthorized, "bad credentials"), CodeUnauthorized))
	s.False(HasCode(New(CodeUnauthorized, "bad credentials"), CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeInternal))
	s.False(HasCode(nil, CodeInternal))
}

func (s *DomainErrorsSuite) TestMessage() {
	s.Equal("", Message(nil))
	s.Equal("plain failure", Message(errors.New("plain failure")))
	s.Equal("assignor not found", Message(fmt.Errorf("ctx: %w", New(CodeNotFound, "assignor not found"))))
	s.Equal("timeout", Message(&Error{Code: CodeTimeout}))
}
