package web

import (
	"errors"

	"github.com/UnknownOlympus/athena/internal/client"
)

// SectionState is the one state a data section renders in.
type SectionState string

const (
	SectionLoading SectionState = "loading"
	SectionError   SectionState = "error"
	SectionEmpty   SectionState = "empty"
	SectionContent SectionState = "content"
)

// Section is a data-backed part of a page. Exactly one of its states is rendered.
type Section[T any] struct {
	State SectionState
	Data  T
	// Error is the message of the error panel; RetryURL reloads the section.
	Error    string
	RetryURL string
	// LoadURL is fetched by the browser to replace a loading placeholder.
	LoadURL string
}

// Loaded is the content state, or the empty state when empty is set.
func Loaded[T any](data T, empty bool) Section[T] {
	if empty {
		return Section[T]{State: SectionEmpty, Data: data}
	}
	return Section[T]{State: SectionContent, Data: data}
}

// Failed is the error state. Data is kept so that a stale result can still be shown next to the panel.
func Failed[T any](err error, retryURL string, stale T) Section[T] {
	return Section[T]{State: SectionError, Error: errorMessage(err), RetryURL: retryURL, Data: stale}
}

// Deferred is the loading state of a section fetched after the page.
func Deferred[T any](loadURL string) Section[T] {
	return Section[T]{State: SectionLoading, LoadURL: loadURL, RetryURL: loadURL}
}

func (s Section[T]) Is(state string) bool {
	return string(s.State) == state
}

// errorMessage turns an error into the text of an error panel.
func errorMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrMalformedResponse):
		return "The task service sent a response that could not be read."
	case errors.As(err, &apiErr) && apiErr.Body != "":
		return apiErr.Body
	case errors.As(err, &apiErr):
		return "The task service answered with an error."
	default:
		return "The task service could not be reached."
	}
}
