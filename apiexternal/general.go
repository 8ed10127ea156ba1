package apiexternal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/RussellLuo/slidingwindow"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

//RLHTTPClient Rate Limited HTTP Client
type RLHTTPClient struct {
	client        *resty.Client
	Ratelimiter   *rate.Limiter
	LimiterWindow *slidingwindow.Limiter
}

var errPleaseWait = errors.New("please wait")

// request describes one backend call. Form and JSON are mutually exclusive.
type request struct {
	Method string
	Path   string
	Form   url.Values
	JSON   any
}

// Do dispatches the request and returns the raw body of a 2xx answer.
// Other answers become a NETWORK error carrying the status and the body text.
func (c *RLHTTPClient) Do(ctx context.Context, r request) ([]byte, error) {
	operation := r.Method + " " + r.Path
	if err := c.wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrClassNetwork, operation, err)
	}

	requestID := uuid.New().String()
	req := c.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetHeader("Accept", "application/json")
	if r.Form != nil {
		req.SetFormDataFromValues(r.Form)
	}
	if r.JSON != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.JSON)
	}

	start := time.Now()
	resp, err := req.Execute(r.Method, r.Path)
	fields := logrus.Fields{
		"method":     r.Method,
		"path":       r.Path,
		"request_id": requestID,
		"elapsed":    time.Since(start).String(),
	}
	if err != nil {
		logger.Log.WithFields(fields).WithError(err).Errorln("backend request failed")
		return nil, apperrors.Wrap(apperrors.ErrClassNetwork, operation, err).WithContext("request_id", requestID)
	}
	fields["status_code"] = resp.StatusCode()
	if !resp.IsSuccess() {
		logger.Log.WithFields(fields).Errorln("backend answered with an error")
		message := string(resp.Body())
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return nil, apperrors.NewStatus(operation, resp.StatusCode(), message).WithContext("request_id", requestID)
	}
	logger.Log.WithFields(fields).Debugln("backend request")
	return resp.Body(), nil
}

func (c *RLHTTPClient) wait(ctx context.Context) error {
	if c.LimiterWindow != nil && !c.LimiterWindow.Allow() {
		isok := false
		for i := 0; i < 10; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(1 * time.Second):
			}
			if c.LimiterWindow.Allow() {
				isok = true
				break
			}
		}
		if !isok {
			return errPleaseWait
		}
	}
	if c.Ratelimiter != nil {
		return c.Ratelimiter.Wait(ctx) // This is a blocking call. Honors the rate limit
	}
	return nil
}

//NewClient return http client with a ratelimiter
func NewClient(baseURL string, timeout time.Duration, userAgent string, rl *rate.Limiter, rl2 *slidingwindow.Limiter) *RLHTTPClient {
	transport := &http.Transport{MaxIdleConns: 20, MaxConnsPerHost: 10, DisableCompression: false, IdleConnTimeout: 20 * time.Second}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(transport).
		SetHeader("User-Agent", userAgent).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return &RLHTTPClient{
		client:        client,
		Ratelimiter:   rl,
		LimiterWindow: rl2,
	}
}

// NewLimiters builds the token bucket and the sliding window for calls per seconds.
func NewLimiters(seconds int, calls int) (*rate.Limiter, *slidingwindow.Limiter) {
	if seconds == 0 {
		seconds = 1
	}
	if calls == 0 {
		calls = 1
	}
	rl := rate.NewLimiter(rate.Every(time.Duration(seconds)*time.Second/time.Duration(calls)), calls)
	limiter, _ := slidingwindow.NewLimiter(time.Duration(seconds)*time.Second, int64(calls), func() (slidingwindow.Window, slidingwindow.StopFunc) { return slidingwindow.NewLocalWindow() })
	return rl, limiter
}
