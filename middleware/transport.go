package middleware

import (
	"io"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// Transport is an [http.RoundTripper] that attaches the controller's current
// bearer token to every outgoing request and records each request as user
// activity. On a 401 response it attempts exactly one silent
// refresh-and-extend and, if a new token was obtained, replays the request
// once.
//
// The replay requires a rewindable body: requests with a consumed body and
// no GetBody are returned with the original 401 untouched.
type Transport struct {
	controller *goSession.Controller
	base       http.RoundTripper
	retryOn401 bool
}

// NewTransport wraps base (nil means [http.DefaultTransport]) with bearer
// injection and 401 retry.
func NewTransport(controller *goSession.Controller, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		controller: controller,
		base:       base,
		retryOn401: true,
	}
}

// WithoutRetry disables the 401 refresh-and-replay behavior.
func (t *Transport) WithoutRetry() *Transport {
	t.retryOn401 = false
	return t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.controller == nil {
		return t.base.RoundTrip(req)
	}

	t.controller.Touch()

	token, ok := t.controller.Token()
	if !ok {
		return t.base.RoundTrip(req)
	}

	resp, err := t.base.RoundTrip(authorized(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !t.retryOn401 {
		return resp, err
	}

	retry, rewindable := rewind(req)
	if !rewindable {
		return resp, nil
	}

	if rerr := t.controller.RefreshAndExtend(req.Context()); rerr != nil {
		return resp, nil
	}
	fresh, ok := t.controller.Token()
	if !ok || fresh == token {
		return resp, nil
	}

	drain(resp)
	return t.base.RoundTrip(authorized(retry, fresh))
}

// authorized clones req with the bearer header set; RoundTrippers must not
// mutate the caller's request.
func authorized(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return clone
}

// rewind prepares a request for a second send. GET-style requests with no
// body are always replayable; others need GetBody.
func rewind(req *http.Request) (*http.Request, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, true
}

// drain discards an abandoned response so the underlying connection can be
// reused.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
