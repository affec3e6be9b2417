// Package httpclient provides an outbound HTTP client instrumented with OTEL
// traces and a per-provider request counter.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	providerName   string
	roundTripper   http.RoundTripper
	requestTimeout time.Duration
	headers        map[string]string
	baseURL        string
	bearerToken    string
	maxBodyBytes   int64
	traceBodies    bool
}

// ClientOption configures ClientOptions.
type ClientOption func(*ClientOptions)

func newClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{
		requestTimeout: defaultRequestTimeout,
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *ClientOptions) {
		o.meterProvider = mp
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) ClientOption {
	return func(o *ClientOptions) {
		o.tracer = t
	}
}

// WithProviderName labels metrics and spans with the upstream name.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) {
		o.providerName = name
	}
}

// WithRoundTripper replaces the pooled transport. The otelhttp wrapper still
// sits on top of it.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *ClientOptions) {
		o.roundTripper = rt
	}
}

// WithRequestTimeout bounds each request end to end.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if timeout > 0 {
			o.requestTimeout = timeout
		}
	}
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		o.headers = headers
	}
}

// WithBaseURL resolves relative request paths against url.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}

// WithBearerToken sends Authorization: Bearer <token> on every request.
// The header value is masked in span events.
func WithBearerToken(token string) ClientOption {
	return func(o *ClientOptions) {
		o.bearerToken = token
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) ClientOption {
	return func(o *ClientOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithBodyTracing records request and response bodies as span events.
func WithBodyTracing() ClientOption {
	return func(o *ClientOptions) {
		o.traceBodies = true
	}
}

// RequestOptions holds per-request configuration.
type RequestOptions struct {
	errorHandler ResponseErrorHandler
	labels       []Label
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// ResponseErrorHandler turns a completed response into an error, or nil
// when the response should be treated as a success.
type ResponseErrorHandler func(statusCode int, body []byte) error

// WithResponseErrorHandler sets the error mapping for a request.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *RequestOptions) {
		o.errorHandler = handler
	}
}

// Label is a metric attribute attached to a single request.
type Label struct {
	Key   string
	Value string
}

// WithLabels attaches labels to the request counter.
func WithLabels(labels ...Label) RequestOption {
	return func(o *RequestOptions) {
		o.labels = append(o.labels, labels...)
	}
}
