package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/gqlperf/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{
		Endpoint: srv.URL,
		Token:    "secret-token",
		Timeout:  timeout,
		Logger:   testutil.NewTestLogger(t),
	})
	t.Cleanup(c.Close)
	return c
}

func TestDo_SendsAuthenticatedRequest(t *testing.T) {
	var got Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"me":{"id":"u1"}}}`))
	}, time.Second)

	resp, err := c.Do(context.Background(), Request{
		Query:         "query Me { me { id } }",
		Variables:     map[string]any{"first": 3},
		OperationName: "Me",
	})
	require.NoError(t, err)

	assert.Equal(t, "query Me { me { id } }", got.Query)
	assert.Equal(t, "Me", got.OperationName)
	assert.EqualValues(t, 3, got.Variables["first"])

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.HasData())
	assert.False(t, resp.HasErrors())
	assert.JSONEq(t, `{"me":{"id":"u1"}}`, string(resp.Data))
	assert.Positive(t, resp.Elapsed)
}

func TestDo_GraphQLErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Variable \"$id\" is invalid","path":["space",0]}]}`))
	}, time.Second)

	resp, err := c.Do(context.Background(), Request{Query: "query Q { space { id } }"})
	require.NoError(t, err)
	assert.False(t, resp.HasData())
	require.True(t, resp.HasErrors())
	assert.Equal(t, `Variable "$id" is invalid`, resp.Errors[0].Message)
}

func TestDo_PartialData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"a":1,"b":null},"errors":[{"message":"forbidden"}]}`))
	}, time.Second)

	resp, err := c.Do(context.Background(), Request{Query: "{ a b }"})
	require.NoError(t, err)
	assert.True(t, resp.HasData())
	assert.True(t, resp.HasErrors())
}

func TestDo_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"token expired"}]}`))
	}, time.Second)

	resp, err := c.Do(context.Background(), Request{Query: "{ me { id } }"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDo_NonJSONErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}, time.Second)

	_, err := c.Do(context.Background(), Request{Query: "{ a }"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "bad gateway")
}

func TestDo_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, time.Second)

	_, err := c.Do(context.Background(), Request{Query: "{ a }"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestDo_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	resp, err := c.Do(context.Background(), Request{Query: "{ slow }"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, resp.Elapsed, 50*time.Millisecond)
	assert.Less(t, resp.Elapsed, 2*time.Second)
}

func TestDo_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{Endpoint: url, Timeout: time.Second})
	defer c.Close()

	_, err := c.Do(context.Background(), Request{Query: "{ a }"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestResponse_HasData(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"object", `{"a":1}`, true},
		{"null", `null`, false},
		{"padded null", ` null `, false},
		{"missing", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Data: json.RawMessage(tt.data)}
			assert.Equal(t, tt.want, r.HasData())
		})
	}
	var nilResp *Response
	assert.False(t, nilResp.HasData())
}
