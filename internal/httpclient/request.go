package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request builds and executes a single HTTP request.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError reports a status code of 400 or above.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

type requestBuilder struct {
	c            *InstrumentedClient
	headers      map[string]string
	query        url.Values
	body         any
	result       any
	errorHandler ResponseErrorHandler
	labels       []Label
}

func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

// SetBody sets the request body. Values other than []byte, string and
// io.Reader are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

// SetResult sets the destination for decoding a successful JSON response.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) resolve(path string) string {
	full := path
	if base := r.c.opts.baseURL; base != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + r.query.Encode()
	}
	return full
}

func (r *requestBuilder) encodeBody() (io.Reader, []byte, error) {
	switch b := r.body.(type) {
	case nil:
		return nil, nil, nil
	case []byte:
		return bytes.NewReader(b), b, nil
	case string:
		return strings.NewReader(b), []byte(b), nil
	case io.Reader:
		return b, nil, nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request body: %w", err)
		}
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		return bytes.NewReader(raw), raw, nil
	}
}

func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	opts := r.c.opts
	fullURL := r.resolve(path)

	ctx, span := r.c.tracer.Start(ctx, "http.client."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("provider", opts.providerName),
		),
	)
	defer span.End()

	bodyReader, raw, err := r.encodeBody()
	if err != nil {
		r.fail(ctx, span, err)
		return nil, err
	}
	if opts.traceBodies && raw != nil {
		span.AddEvent("request.body", trace.WithAttributes(attribute.String("http.request_body", string(raw))))
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		r.fail(ctx, span, err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.c.client.Do(req)
	if err != nil {
		r.fail(ctx, span, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.maxBodyBytes))
	if err != nil {
		r.fail(ctx, span, err)
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if opts.traceBodies {
		span.AddEvent("response.body", trace.WithAttributes(attribute.String("http.response_body", string(body))))
	}

	response := &Response{StatusCode: resp.StatusCode, Header: resp.Header, body: body}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if r.errorHandler != nil {
		if herr := r.errorHandler(resp.StatusCode, body); herr != nil {
			span.SetStatus(codes.Error, herr.Error())
			r.record(ctx, false)
			return response, herr
		}
	}

	if r.result != nil && !response.IsError() && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			r.fail(ctx, span, err)
			return response, fmt.Errorf("decode response body: %w", err)
		}
	}

	r.record(ctx, !response.IsError())
	return response, nil
}

func (r *requestBuilder) fail(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}
	span.SetStatus(codes.Error, err.Error())
	r.record(ctx, false)
}

func (r *requestBuilder) record(ctx context.Context, success bool) {
	attrs := make([]attribute.KeyValue, 0, len(r.labels)+2)
	attrs = append(attrs,
		attribute.String("provider", r.c.opts.providerName),
		attribute.Bool("success", success),
	)
	for _, l := range r.labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	r.c.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
