package rest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoute(t *testing.T) {
	r := NewRoute(http.MethodPost, "/channels/%s/messages", "42", "42")

	assert.Equal(t, "/channels/42/messages", r.Path)
	assert.Equal(t, "POST /channels/%s/messages:42", r.Signature())
	assert.Equal(t, "POST /channels/42/messages", r.String())
}

func TestRoute_MinorParameterSharesSignature(t *testing.T) {
	a := NewRoute(http.MethodGet, "/channels/%s/messages/%s", "42", "42", "100")
	b := NewRoute(http.MethodGet, "/channels/%s/messages/%s", "42", "42", "200")

	assert.Equal(t, a.Signature(), b.Signature(),
		"message ids are minor parameters and must not split the bucket")
	assert.NotEqual(t, a.Path, b.Path)
}

func TestRoute_MajorParameterSplitsSignature(t *testing.T) {
	a := NewRoute(http.MethodGet, "/channels/%s/messages/%s", "42", "42", "100")
	b := NewRoute(http.MethodGet, "/channels/%s/messages/%s", "43", "43", "100")

	assert.NotEqual(t, a.Signature(), b.Signature())
}

func TestRoute_NoMajorParameter(t *testing.T) {
	r := NewRoute(http.MethodGet, "/gateway", "")

	assert.Equal(t, "/gateway", r.Path)
	assert.Equal(t, "GET /gateway:", r.Signature())
}
