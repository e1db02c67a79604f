package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Send(t *testing.T) {
	var (
		gotMethod, gotUA, gotAuth, gotPath string
		gotBody                            []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.RequestURI()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/atom+xml; charset=UTF-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("<entry/>"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(TransportConfig{})
	h := make(http.Header)
	h.Set("Authorization", "OAuth abc")
	resp, err := tr.Send(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL + "/m8/feeds/contacts/default/full/?q=x",
		Header: h,
		Body:   []byte("<entry>payload</entry>"),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, defaultUserAgent, gotUA)
	assert.Equal(t, "OAuth abc", gotAuth)
	assert.Equal(t, "/m8/feeds/contacts/default/full/?q=x", gotPath)
	assert.Equal(t, "<entry>payload</entry>", string(gotBody))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "<entry/>", string(resp.Body))
	assert.Equal(t, "application/atom+xml; charset=UTF-8", resp.Header.Get("Content-Type"))
}

func TestHTTPTransport_ErrorStatusIsAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Failed :("))
	}))
	defer srv.Close()

	resp, err := NewHTTPTransport(TransportConfig{UserAgent: "custom/2"}).Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Failed :(", string(resp.Body))
}

func TestHTTPTransport_InsecureSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req := &Request{Method: http.MethodGet, URL: srv.URL}

	_, err := NewHTTPTransport(TransportConfig{}).Send(context.Background(), req)
	assert.Error(t, err)

	resp, err := NewHTTPTransport(TransportConfig{InsecureSkipVerify: true}).Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPTransport(TransportConfig{}).Send(context.Background(), &Request{Method: http.MethodGet, URL: url})
	assert.Error(t, err)
}

func TestHTTPTransport_FromClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	tr := NewHTTPTransportFromClient(srv.Client())
	resp, err := tr.Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.NotEqual(t, defaultUserAgent, string(resp.Body))
}
