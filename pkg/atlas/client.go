package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icholy/digest"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://cloud.mongodb.com/api/atlas/v1.0"

//go:generate mockgen -destination=mock/fetcher.go -package=mock github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas Fetcher

// Fetcher retrieves the pending invoice for an organization.
type Fetcher interface {
	PendingInvoice(ctx context.Context, orgID string) (*Invoice, error)
}

type ClientConfig struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration

	// Transport is the underlying RoundTripper used beneath digest
	// authentication. http.DefaultTransport is used when nil.
	Transport http.RoundTripper
}

// Client talks to the Atlas admin API using programmatic API keys.
type Client struct {
	logger     logrus.FieldLogger
	baseURL    *url.URL
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

func NewClient(logger logrus.FieldLogger, cfg ClientConfig) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid Atlas API url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid Atlas API url %q: scheme and host are required", baseURL)
	}

	return &Client{
		logger:  logger.WithField("component", "atlasClient"),
		baseURL: u,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &digest.Transport{
				Username:  cfg.PublicKey,
				Password:  cfg.PrivateKey,
				Transport: cfg.Transport,
			},
		},
	}, nil
}

// PendingInvoice fetches and decodes the organization's pending invoice.
func (c *Client) PendingInvoice(ctx context.Context, orgID string) (*Invoice, error) {
	resp, err := c.get(ctx, fmt.Sprintf("orgs/%s/invoices/pending", url.PathEscape(orgID)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: resp.Request.URL.String(), Err: err}
	}

	var invoice Invoice
	if err := json.Unmarshal(body, &invoice); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &invoice, nil
}

// get performs an authenticated GET against path relative to the base URL.
// The caller must close the body of the returned response.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	uri := c.baseURL.String() + "/" + path
	logger := c.logger.WithField("url", uri)
	logger.Debugf("getting url %s", uri)

	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{URL: uri, Err: err}
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Error("request to Atlas failed")
		return nil, &TransportError{URL: uri, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		err = ErrNotFound
	case http.StatusForbidden:
		err = ErrForbidden
	case http.StatusUnauthorized:
		err = ErrUnauthorized
	default:
		logger.Errorf("got bad status code getting pending invoice: %d", resp.StatusCode)
		err = &StatusError{StatusCode: resp.StatusCode}
	}
	// drain so the connection can be reused
	_, _ = ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	return nil, err
}
