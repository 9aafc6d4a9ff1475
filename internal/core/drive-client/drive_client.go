// Package driveclient fetches source documents from Google Drive.
package driveclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/markdave123-py/quizsmith/internal/core"
)

const (
	googleAppsPrefix = "application/vnd.google-apps."
	defaultMaxBytes  = 32 << 20
)

// ErrNoCredentials is returned when the caller sends no token and the
// service-account fallback is not enabled.
var ErrNoCredentials = errors.New("drive: no access token and no service account fallback enabled")

// Options configures the client.
//
// CredentialsFile:        service account JSON.
// ServiceAccountFallback: use the service account when the caller sends no token.
// MaxBytes:               download size cap.
// Endpoint:               API base URL override.
// HTTPClient:             transport override; disables token handling.
type Options struct {
	CredentialsFile        string
	ServiceAccountFallback bool
	MaxBytes               int64
	Endpoint               string
	HTTPClient             *http.Client
}

type Client struct {
	fallback *drive.Service
	opts     Options
}

var _ core.DriveClient = (*Client)(nil)

// New builds a client. When enabled, the service-account fallback is created
// up front so misconfigured credentials fail at startup.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	c := &Client{opts: opts}

	if opts.ServiceAccountFallback && (opts.CredentialsFile != "" || opts.HTTPClient != nil) {
		svc, err := c.service(ctx, option.WithCredentialsFile(opts.CredentialsFile), option.WithScopes(drive.DriveReadonlyScope))
		if err != nil {
			return nil, fmt.Errorf("drive service account: %w", err)
		}
		c.fallback = svc
	}
	return c, nil
}

func (c *Client) service(ctx context.Context, auth ...option.ClientOption) (*drive.Service, error) {
	var opts []option.ClientOption
	if c.opts.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.opts.HTTPClient))
	} else {
		opts = append(opts, auth...)
	}
	if c.opts.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.opts.Endpoint))
	}
	return drive.NewService(ctx, opts...)
}

// Download fetches a file's bytes. Google Docs, Sheets and Slides have no
// binary content and are exported as text/plain.
func (c *Client) Download(ctx context.Context, fileID, accessToken string) (*core.RemoteFile, error) {
	svc := c.fallback
	if accessToken != "" {
		var err error
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		svc, err = c.service(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("drive service: %w", err)
		}
	}
	if svc == nil {
		return nil, ErrNoCredentials
	}

	meta, err := svc.Files.Get(fileID).
		Fields("id", "name", "mimeType", "size").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive metadata %s: %w", fileID, err)
	}
	if meta.Size > c.opts.MaxBytes {
		return nil, fmt.Errorf("drive file %s is %d bytes, limit is %d", fileID, meta.Size, c.opts.MaxBytes)
	}

	mimeType := meta.MimeType
	var resp *http.Response
	if strings.HasPrefix(meta.MimeType, googleAppsPrefix) {
		mimeType = "text/plain"
		resp, err = svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	} else {
		resp, err = svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("drive read %s: %w", fileID, err)
	}
	if int64(len(data)) > c.opts.MaxBytes {
		return nil, fmt.Errorf("drive file %s exceeds %d bytes", fileID, c.opts.MaxBytes)
	}

	return &core.RemoteFile{Name: meta.Name, MimeType: mimeType, Data: data}, nil
}
