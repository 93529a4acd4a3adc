package transport_test

import (
	"context"
	"net/http"
)

// fakeProvider returns fixed headers or a fixed error.
type fakeProvider struct {
	headers map[string]string
	err     error
	calls   int
}

func (p *fakeProvider) Headers(context.Context) (map[string]string, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.headers, nil
}

// recordingTransport captures the last request for inspection.
type recordingTransport struct {
	lastReq *http.Request
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.lastReq = r
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}
