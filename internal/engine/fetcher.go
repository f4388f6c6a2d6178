package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// VCardFetcher retrieves vCard data from a URL.
type VCardFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher over net/http. Credentials in the URL
// userinfo are sent as Basic auth.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with the default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// Fetch downloads targetURL. The body is capped at config.MaxHTTPResponseSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, WrapError(err, CodeInvalidInput, config.ErrInvalidURL)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, NewError(CodeInvalidInput, fmt.Sprintf("%s: %s", config.ErrProtocol, u.Scheme))
	}

	// Credentials and query strings stay out of the logs.
	user := u.User
	u.User = nil
	safeURL := u.Scheme + "://" + u.Host + u.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompEngine),
		slog.String(config.LogKeyURL, safeURL),
	)
	log.Debug(config.MsgVCardDownload)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardFetch, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != nil {
		pass, _ := user.Password()
		req.SetBasicAuth(user.Username(), pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgVCardStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		msg := fmt.Sprintf("%s: %s", config.ErrVCardFetch, resp.Status)
		if resp.StatusCode == http.StatusNotFound {
			return nil, NewError(CodeNotFound, msg)
		}
		return nil, fmt.Errorf("%s", msg)
	}

	log.Debug(config.MsgVCardDownload, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser limits reads while closing the underlying body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// OpenVCard opens location, which is either a local path or an http(s) URL
// handed to fetcher.
func OpenVCard(ctx context.Context, fetcher VCardFetcher, location string) (io.ReadCloser, error) {
	if isRemote(location) {
		return fetcher.Fetch(ctx, location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, WrapError(err, CodeNotFound, config.ErrVCardOpen)
	}
	return f, nil
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, config.SchemeHTTP+"://") || strings.HasPrefix(lower, config.SchemeHTTPS+"://")
}
