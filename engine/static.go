package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/wikidex/models"
	"golang.org/x/sync/semaphore"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBody caps how much of a response StaticSurfaces reads.
const maxBody = 10 << 20

// StaticOptions configures StaticSurfaces.
type StaticOptions struct {
	// MaxSurfaces caps concurrent requests. Zero means 8.
	MaxSurfaces int

	// Proxy is an http(s) proxy URL.
	Proxy string

	// Headers are added to every request, overriding the defaults.
	Headers map[string]string

	// Client replaces the Chrome-fingerprinted client.
	Client *http.Client
}

// StaticSurfaces is a surface provider that does not execute scripts: it
// fetches the server-rendered markup over HTTP with a Chrome-like TLS
// fingerprint. Navigate completes when the body has been read.
type StaticSurfaces struct {
	client  *http.Client
	headers map[string]string
	max     int
	sem     *semaphore.Weighted

	active   atomic.Int32
	acquired atomic.Int64
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once and reused for every connection.
var (
	chromeH1Spec     tls.ClientHelloSpec
	chromeH1SpecErr  error
	chromeH1SpecOnce sync.Once
)

func chromeSpec() (*tls.ClientHelloSpec, error) {
	chromeH1SpecOnce.Do(func() {
		spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
		if err != nil {
			chromeH1SpecErr = err
			return
		}
		// Replace h2 with http/1.1 only in the ALPN extension so the server
		// never negotiates HTTP/2, which http.Transport cannot speak over a
		// utls connection.
		for i, ext := range spec.Extensions {
			if alpn, ok := ext.(*tls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
				spec.Extensions[i] = alpn
				break
			}
		}
		chromeH1Spec = spec
	})
	return &chromeH1Spec, chromeH1SpecErr
}

// NewStaticSurfaces creates a StaticSurfaces provider.
func NewStaticSurfaces(opts StaticOptions) *StaticSurfaces {
	if opts.MaxSurfaces < 1 {
		opts.MaxSurfaces = 8
	}
	client := opts.Client
	if client == nil {
		client = newChromeClient(opts.Proxy)
	}
	return &StaticSurfaces{
		client:  client,
		headers: opts.Headers,
		max:     opts.MaxSurfaces,
		sem:     semaphore.NewWeighted(int64(opts.MaxSurfaces)),
	}
}

// newChromeClient builds an http.Client whose TLS handshakes look like
// Chrome's.
func newChromeClient(proxy string) *http.Client {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			spec, err := chromeSpec()
			if err != nil {
				conn.Close()
				return nil, fmt.Errorf("static: build tls spec: %w", err)
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("static: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// Acquire returns a surface, blocking while MaxSurfaces are in use.
func (p *StaticSurfaces) Acquire(ctx context.Context) (Surface, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	p.active.Add(1)
	p.acquired.Add(1)
	return &staticSurface{owner: p}, nil
}

// Stats returns a snapshot of the provider's current state.
func (p *StaticSurfaces) Stats() models.SurfaceStats {
	return models.SurfaceStats{
		Kind:           "http",
		MaxSurfaces:    p.max,
		ActiveSurfaces: int(p.active.Load()),
		TotalAcquired:  p.acquired.Load(),
	}
}

// Close releases idle connections.
func (p *StaticSurfaces) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

type staticSurface struct {
	owner *StaticSurfaces
	body  string
	ready bool
	once  sync.Once
}

func (s *staticSurface) Navigate(ctx context.Context, address string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return fmt.Errorf("static: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	for k, v := range s.owner.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.owner.client.Do(req)
	if err != nil {
		return fmt.Errorf("static: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("static: HTTP %d for %s", resp.StatusCode, address)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return fmt.Errorf("static: non-html content-type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return fmt.Errorf("static: read body: %w", err)
	}
	if len(body) > maxBody {
		return fmt.Errorf("static: body of %s exceeds %d bytes", address, maxBody)
	}
	s.body = string(body)
	s.ready = true
	return nil
}

func (s *staticSurface) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.ready {
		return "", errors.New("static: no document loaded")
	}
	return s.body, nil
}

func (s *staticSurface) Close() error {
	s.once.Do(func() {
		s.body = ""
		s.owner.active.Add(-1)
		s.owner.sem.Release(1)
	})
	return nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
