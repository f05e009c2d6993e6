package cli

import (
	"time"

	"github.com/artifactrelay/connector/internal/config"
	"github.com/artifactrelay/connector/internal/connector"
	"github.com/artifactrelay/connector/internal/descriptor"
)

// buildConnector assembles a Connector from the persistent flags. Grounded
// on the teacher's api_helper.go pattern of centralizing client
// construction so every subcommand shares one code path.
func buildConnector() (*connector.Connector, error) {
	endpoint := &descriptor.RemoteEndpoint{
		URL:         endpointURL,
		ContentType: contentType,
	}
	if username != "" || password != "" {
		endpoint.Credentials = &descriptor.Credentials{Username: username, Password: password}
	}
	if proxyMode != "" {
		endpoint.Proxy = &descriptor.ProxySpec{
			Mode:     proxyMode,
			Host:     proxyHost,
			Port:     proxyPort,
			User:     proxyUser,
			Password: proxyPassword,
			NoProxy:  noProxy,
			Warmup:   proxyWarmup,
		}
	}

	cfg := &config.SessionConfig{
		DisableResumable: disableResumable,
		UseCache:         useCache,
		MaxRetries:       maxRetries,
		ConnectTimeout:   30 * time.Second,
	}

	return connector.NewConnector(endpoint, cfg, nil, logger)
}

func parsePolicy(s string) descriptor.ChecksumPolicy {
	switch s {
	case "warn":
		return descriptor.PolicyWarn
	case "ignore":
		return descriptor.PolicyIgnore
	default:
		return descriptor.PolicyStrict
	}
}
