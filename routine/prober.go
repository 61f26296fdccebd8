package routine

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"oss.nandlabs.io/opspulse/l3"
)

var logger = l3.Get()

// RunOutcome is the result of a single HttpProber.Probe call. A probe never
// raises; every failure mode is represented as a RunOutcome with
// Status=RunStatusFail and a populated ErrorMessage.
type RunOutcome struct {
	Status       RunStatus
	HTTPStatus   *int
	DurationMs   int64
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Prober executes one HTTP request against a routine's endpoint.
type Prober interface {
	Probe(ctx context.Context, r *Routine) RunOutcome
}

// httpProber is the default Prober, grounded on
// original_source/api/function_app.py's _execute_http_routine: secret
// injection via Authorization: Bearer <secret>, classification by status
// code range, and the exact error-message vocabulary
// (missing_secret_ref_value / http_error:<code> / timeout / exception:<msg>).
// Transport construction follows rest/client.go's own conventions
// (bounded idle connections, explicit timeouts) rather than the zero-value
// http.Client.
type httpProber struct {
	client         *http.Client
	secrets        SecretProvider
	requestTimeout time.Duration
}

// NewHttpProber returns the default Prober. requestTimeout is the per-probe
// deadline (spec.md §4.2's HTTP_TIMEOUT_SECONDS).
func NewHttpProber(secretProvider SecretProvider, requestTimeout time.Duration) Prober {
	return &httpProber{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		secrets:        secretProvider,
		requestTimeout: requestTimeout,
	}
}

func (p *httpProber) Probe(ctx context.Context, r *Routine) RunOutcome {
	started := time.Now().UTC()
	t0 := time.Now()

	method := r.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	headers := make(map[string]string, len(r.HeadersJSON)+1)
	for k, v := range r.HeadersJSON {
		headers[k] = v
	}

	if r.AuthMode == AuthModeSecretRef {
		token, ok := p.secrets.Resolve(ctx, r.SecretRef)
		if !ok {
			return RunOutcome{
				Status:       RunStatusFail,
				DurationMs:   time.Since(t0).Milliseconds(),
				ErrorMessage: "missing_secret_ref_value",
				StartedAt:    started,
				FinishedAt:   time.Now().UTC(),
			}
		}
		headers["Authorization"] = "Bearer " + token
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, r.EndpointURL, nil)
	if err != nil {
		return RunOutcome{
			Status:       RunStatusFail,
			DurationMs:   time.Since(t0).Milliseconds(),
			ErrorMessage: truncateMessage("exception:"+err.Error(), ErrorMessageMaxLen),
			StartedAt:    started,
			FinishedAt:   time.Now().UTC(),
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	finished := time.Now().UTC()
	duration := time.Since(t0).Milliseconds()

	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return RunOutcome{
				Status:       RunStatusFail,
				DurationMs:   duration,
				ErrorMessage: "timeout",
				StartedAt:    started,
				FinishedAt:   finished,
			}
		}
		return RunOutcome{
			Status:       RunStatusFail,
			DurationMs:   duration,
			ErrorMessage: truncateMessage("exception:"+err.Error(), ErrorMessageMaxLen),
			StartedAt:    started,
			FinishedAt:   finished,
		}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return RunOutcome{
			Status:     RunStatusSuccess,
			HTTPStatus: &status,
			DurationMs: duration,
			StartedAt:  started,
			FinishedAt: finished,
		}
	}

	return RunOutcome{
		Status:       RunStatusFail,
		HTTPStatus:   &status,
		DurationMs:   duration,
		ErrorMessage: "http_error:" + strconv.Itoa(status),
		StartedAt:    started,
		FinishedAt:   finished,
	}
}

func truncateMessage(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
