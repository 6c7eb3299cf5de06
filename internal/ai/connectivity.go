package ai

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultProbeURL     = "https://generativelanguage.googleapis.com/"
	defaultProbeTimeout = 5 * time.Second
)

// ConnectivityChecker reports whether the network looks reachable.
type ConnectivityChecker interface {
	Online(ctx context.Context) bool
}

// ProbeChecker sends a HEAD request to URL. Any HTTP response, whatever its
// status, counts as online.
type ProbeChecker struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
	Logger  *zap.Logger
}

func NewProbeChecker(url string, logger *zap.Logger) *ProbeChecker {
	if url == "" {
		url = DefaultProbeURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProbeChecker{URL: url, Timeout: defaultProbeTimeout, Client: http.DefaultClient, Logger: logger}
}

func (p *ProbeChecker) Online(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		p.Logger.Warn("build connectivity probe", zap.String("url", p.URL), zap.Error(err))
		return false
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		p.Logger.Debug("connectivity probe failed", zap.String("url", p.URL), zap.Error(err))
		return false
	}
	resp.Body.Close()
	return true
}

// AlwaysOnline skips the probe.
type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) bool { return true }
