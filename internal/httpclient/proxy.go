package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"golang.org/x/net/http/httpproxy"

	"github.com/artifactrelay/connector/internal/config"
	"github.com/artifactrelay/connector/internal/constants"
	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/logging"
)

// ConfigureHTTPClient builds a base *http.Client honoring the proxy spec
// attached to the remote endpoint. proxy may be nil, in which case proxy
// settings are read from the environment (HTTP_PROXY/HTTPS_PROXY/NO_PROXY).
// endpointURL is used only as the proxy warmup probe target.
func ConfigureHTTPClient(cfg *config.SessionConfig, proxy *descriptor.ProxySpec, endpointURL string) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout(cfg),
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          constants.HTTPMaxIdleConns,
		MaxIdleConnsPerHost:   constants.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:       constants.HTTPMaxConnsPerHost,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}

	if proxy == nil {
		transport.Proxy = http.ProxyFromEnvironment
		return &http.Client{Transport: transport}, nil
	}

	switch strings.ToLower(proxy.Mode) {
	case "no-proxy", "":
		transport.Proxy = nil
		return &http.Client{Transport: transport}, nil

	case "system":
		transport.Proxy = http.ProxyFromEnvironment
		return &http.Client{Transport: transport}, nil

	case "ntlm":
		if proxy.Host == "" {
			transport.Proxy = nil
			return &http.Client{Transport: transport}, nil
		}
		proxyURL := buildProxyURL(proxy)
		transport.Proxy = proxyFuncWithBypass(proxyURL, proxy.NoProxy, nil)
		client := &http.Client{
			Transport: ntlmssp.Negotiator{RoundTripper: transport},
		}
		if proxy.Warmup && proxy.User != "" && proxy.Password != "" {
			if err := warmupProxy(client, cfg, endpointURL); err != nil {
				return nil, fmt.Errorf("proxy warmup failed: %w", err)
			}
		}
		return client, nil

	case "basic":
		if proxy.Host == "" {
			transport.Proxy = nil
			return &http.Client{Transport: transport}, nil
		}
		proxyURL := buildProxyURL(proxy)
		transport.Proxy = proxyFuncWithBypass(proxyURL, proxy.NoProxy, nil)
		client := &http.Client{Transport: transport}
		if proxy.Warmup && proxy.User != "" && proxy.Password != "" {
			if err := warmupProxy(client, cfg, endpointURL); err != nil {
				return nil, fmt.Errorf("proxy warmup failed: %w", err)
			}
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", proxy.Mode)
	}
}

func dialTimeout(cfg *config.SessionConfig) time.Duration {
	if cfg == nil || cfg.ConnectTimeout <= 0 {
		return constants.HTTPDialTimeout
	}
	return cfg.ConnectTimeout
}

func buildProxyURL(proxy *descriptor.ProxySpec) *url.URL {
	port := proxy.Port
	if port == 0 {
		port = 8080
	}
	u := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", proxy.Host, port),
	}
	if proxy.User != "" && proxy.Password != "" {
		u.User = url.UserPassword(proxy.User, proxy.Password)
	}
	return u
}

// warmupProxy performs a lightweight request to establish the proxy
// connection ahead of time, probing the remote endpoint's own base URL
// rather than a third-party target so the warmup exercises the same host
// the transfers will actually hit.
func warmupProxy(client *http.Client, cfg *config.SessionConfig, endpointURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	target := endpointURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", cfg.UserAgentOrDefault())

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("warmup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("warmup request returned server error: %d", resp.StatusCode)
	}
	return nil
}

// proxyFuncWithBypass returns a proxy function honoring a NoProxy bypass
// list. logger is optional and only used for debug diagnostics.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string, logger *logging.Logger) func(*http.Request) (*url.URL, error) {
	if noProxy == "" {
		return http.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		result, err := proxyFunc(req.URL)
		if logger != nil {
			if result == nil {
				logger.Debugf("proxy bypass: %s (direct connection)", req.URL.Host)
			} else {
				logger.Debugf("proxy: %s -> %s", req.URL.Host, result.Host)
			}
		}
		return result, err
	}
}
