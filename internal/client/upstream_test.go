package client

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardRelaysStatusAndBody(t *testing.T) {
	var gotQuery, gotAuth, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"success":false,"error":"short and stout"}`))
	}, StaticToken("must-not-be-used"))

	resp, err := c.Forward(context.Background(), ForwardRequest{
		Resource:      "tickets",
		Method:        http.MethodPost,
		Path:          "/tickets",
		RawQuery:      "b=2&a=1&a=3",
		Authorization: "Bearer caller",
		Body:          []byte(`{"title":"x"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.JSONEq(t, `{"success":false,"error":"short and stout"}`, string(resp.Body))
	assert.Equal(t, "b=2&a=1&a=3", gotQuery)
	assert.Equal(t, "Bearer caller", gotAuth)
	assert.Equal(t, `{"title":"x"}`, gotBody)
}

func TestForwardWithoutAuthorization(t *testing.T) {
	var hasAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	}, StaticToken("ignored"))

	_, err := c.Forward(context.Background(), ForwardRequest{Resource: "agents", Method: http.MethodGet, Path: "/agents"})
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestForwardNonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, nil)

	_, err := c.Forward(context.Background(), ForwardRequest{Resource: "agents", Method: http.MethodGet, Path: "/agents"})
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, ParseFailure, callErr.Kind)
}
