package controller

import (
	"errors"
	"testing"
)

type failingBody struct {
	closed bool
}

func (b *failingBody) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func (b *failingBody) Close() error {
	b.closed = true
	return nil
}

func TestReadBodyClosesOnError(t *testing.T) {
	c := NewController(nil)

	body := &failingBody{}
	_, err := c.readBody(body)
	if err == nil {
		t.Fatal("Expected an error from a failing body")
	}
	if !body.closed {
		t.Error("Expected the body to be closed after a failed read")
	}
}
