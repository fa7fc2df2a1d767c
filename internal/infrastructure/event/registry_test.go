package event

import (
	"testing"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed handlers come before wildcards", func(t *testing.T) {
		r := NewHandlerRegistry()
		wildcard := &recordingHandler{}
		typed := &recordingHandler{}
		r.Register(wildcard)
		r.Register(typed, typeRecorded, typeCancelled)

		assert.Equal(t, []shared.EventHandler{typed, wildcard}, r.GetHandlers(typeRecorded))
		assert.Equal(t, []shared.EventHandler{wildcard}, r.GetHandlers("InvoiceCreated"))
		assert.Equal(t, []string{typeCancelled, typeRecorded}, r.EventTypes())
	})

	t.Run("registering twice keeps one entry", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := &recordingHandler{}
		r.Register(h, typeRecorded)
		r.Register(h, typeRecorded)
		assert.Len(t, r.GetHandlers(typeRecorded), 1)
	})

	t.Run("unregister drops empty types", func(t *testing.T) {
		r := NewHandlerRegistry()
		a, b := &recordingHandler{}, &recordingHandler{}
		r.Register(a, typeRecorded)
		r.Register(b, typeRecorded, typeCancelled)

		r.Unregister(b)
		assert.Equal(t, []shared.EventHandler{a}, r.GetHandlers(typeRecorded))
		assert.Equal(t, []string{typeRecorded}, r.EventTypes())
	})
}
