package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelay(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestDetect_Success(t *testing.T) {
	var filename, contentType string
	var content []byte
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/detect", r.URL.Path)
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		filename = header.Filename
		contentType = header.Header.Get("Content-Type")
		content, _ = io.ReadAll(file)

		w.Write([]byte(`{"verdict":"AI-Generated","confidence":87,"raw":[{"label":"ai","score":0.87}]}`))
	})

	result, err := New(srv.URL+"/api/detect").Detect(context.Background(), "dog.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "AI-Generated", result.Verdict)
	assert.Equal(t, 87.0, result.Confidence)
	assert.False(t, result.IsReal())
	assert.NotEmpty(t, result.Raw)
	assert.Equal(t, "dog.jpg", filename)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, []byte("jpeg-bytes"), content)
}

func TestDetect_ServerMessage(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model inference failed","details":{"detail":"model busy"}}`))
	})

	_, err := New(srv.URL).Detect(context.Background(), "a.png", "image/png", []byte("x"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Model inference failed", apiErr.Error())
	assert.JSONEq(t, `{"detail":"model busy"}`, string(apiErr.Details))
}

func TestDetect_GenericMessage(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := New(srv.URL).Detect(context.Background(), "a.png", "image/png", []byte("x"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, GenericFailureMessage, apiErr.Error())
}

func TestDetect_UndecodableSuccess(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := New(srv.URL).Detect(context.Background(), "a.png", "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode detection result")
}

func TestHealth(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	require.NoError(t, New(srv.URL+"/api/detect").Health(context.Background()))
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := New(srv.URL + "/api/detect").Health(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
