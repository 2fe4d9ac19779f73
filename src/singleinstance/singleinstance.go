package singleinstance

// This file defines the API for single-instance ownership and run-once delegation.

import (
	"context"
)

// Server owns the TCP endpoint and answers run-once requests.
type Server interface {
	// Start binds the first port of the configured range; failure means a resident exists.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted capture request, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one delegated capture request awaiting its answer.
type Conn interface {
	// RespondSuccess sends the translated text.
	RespondSuccess(text string) error
	// RespondError sends a human-readable failure.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Client delegates a run-once capture to a resident server.
type Client interface {
	// RunOnce asks the resident to capture and translate, returning its text.
	// If no resident is found, returns delegated=false, err=nil.
	RunOnce(ctx context.Context) (delegated bool, text string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
