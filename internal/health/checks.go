package health

import (
	"context"
	"net"
	"net/url"
)

// UpstreamCheck returns a check that verifies the upstream application
// server accepts TCP connections.
func UpstreamCheck(target *url.URL) CheckFunc {
	return func(ctx context.Context) Component {
		host := target.Host
		if target.Port() == "" {
			port := "80"
			if target.Scheme == "https" {
				port = "443"
			}
			host = net.JoinHostPort(target.Hostname(), port)
		}

		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", host)
		if err != nil {
			return Component{
				Status:  StatusDown,
				Details: map[string]string{"upstream": host, "error": err.Error()},
			}
		}
		_ = conn.Close()

		return Component{
			Status:  StatusUp,
			Details: map[string]string{"upstream": host},
		}
	}
}

// AlwaysUp returns a check that always reports UP. Used for the
// liveness probe, which only proves the process is serving requests.
func AlwaysUp() CheckFunc {
	return func(context.Context) Component {
		return Component{Status: StatusUp}
	}
}
