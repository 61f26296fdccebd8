package rest

import (
	"io"
	"net/http"

	"oss.nandlabs.io/opspulse/codec"
)

// Response wraps the http.Response returned by Client.Execute, pairing it
// with the Client that produced it so Decode can resolve the same codec
// options the request was built with.
type Response struct {
	raw    *http.Response
	client *Client
}

// Raw returns the underlying http.Response.
func (res *Response) Raw() *http.Response {
	return res.raw
}

// StatusCode returns the HTTP status code of the response.
func (res *Response) StatusCode() int {
	return res.raw.StatusCode
}

// Status returns the HTTP status line of the response (e.g. "200 OK").
func (res *Response) Status() string {
	return res.raw.Status
}

// IsSuccess reports whether the status code is in the 2xx range.
func (res *Response) IsSuccess() bool {
	return res.raw.StatusCode >= http.StatusOK && res.raw.StatusCode < http.StatusMultipleChoices
}

// Header returns the response headers.
func (res *Response) Header() http.Header {
	return res.raw.Header
}

// Body returns the raw response body reader. Callers that use Decode do not
// need to call this directly; Decode consumes and closes the body itself.
func (res *Response) Body() io.ReadCloser {
	return res.raw.Body
}

// Decode reads the response body into v using the codec matching the
// response's Content-Type header, falling back to the client's configured
// codec options. The body is always closed, whether decoding succeeds or not.
func (res *Response) Decode(v interface{}) error {
	defer ioutilsClose(res.raw.Body)

	contentType := res.raw.Header.Get(ContentTypeHeader)
	var c codec.Codec
	var err error
	if res.client != nil {
		c, err = codec.Get(contentType, res.client.options.codecOptions)
	} else {
		c, err = codec.GetDefault(contentType)
	}
	if err != nil {
		return err
	}
	return c.Read(res.raw.Body, v)
}

// Close releases the response body without decoding it.
func (res *Response) Close() error {
	return res.raw.Body.Close()
}

func ioutilsClose(c io.Closer) {
	_ = c.Close()
}
