package repository

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // legacy checksums published next to artifacts
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/credentials"
	"github.com/uklance/gradle-dependency-export/bindings/go/metrics"
)

// ErrChecksumMismatch is returned if a downloaded artifact does not match its published checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrUnexpectedContent is returned if a repository answers with a document that cannot be an
// artifact, like the HTML login page of a repository manager.
var ErrUnexpectedContent = errors.New("unexpected content")

const resultCacheHit = "cache_hit"

var requestsTotal = metrics.MustRegisterCounterVec(Realm, "requests_total",
	"Artifact lookups in remote repositories by result.", "repository", "result")

// Remote is a repository served over HTTP. Downloaded artifacts are kept in a cache
// directory in repository layout, cached artifacts are never downloaded again.
type Remote struct {
	name            string
	baseURL         *url.URL
	cacheDir        string
	client          *http.Client
	credentials     map[string]string
	verifyChecksums bool
}

var _ Repository = (*Remote)(nil)

// RemoteOptions configures a Remote.
type RemoteOptions struct {
	HTTPClient  *http.Client
	Credentials map[string]string
	// SkipChecksums disables the verification against published checksum files.
	SkipChecksums bool
}

type RemoteOption func(*RemoteOptions)

// WithHTTPClient sets the client used for downloads. Defaults to NewHTTPClient().
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(o *RemoteOptions) {
		o.HTTPClient = client
	}
}

// WithCredentials sets the credentials sent with every request,
// see the credentials.CredentialKey constants.
func WithCredentials(creds map[string]string) RemoteOption {
	return func(o *RemoteOptions) {
		o.Credentials = creds
	}
}

// WithSkipChecksums disables checksum verification.
func WithSkipChecksums(skip bool) RemoteOption {
	return func(o *RemoteOptions) {
		o.SkipChecksums = skip
	}
}

// NewRemote creates a remote repository at baseURL caching into cacheDir.
func NewRemote(name, baseURL, cacheDir string, opts ...RemoteOption) (*Remote, error) {
	options := &RemoteOptions{}
	for _, opt := range opts {
		opt(options)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url of repository %q failed: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("repository %q: unsupported url scheme %q", name, u.Scheme)
	}
	if cacheDir == "" {
		return nil, fmt.Errorf("repository %q: cache directory is required", name)
	}
	if options.HTTPClient == nil {
		options.HTTPClient = NewHTTPClient()
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return &Remote{
		name:            name,
		baseURL:         u,
		cacheDir:        cacheDir,
		client:          options.HTTPClient,
		credentials:     options.Credentials,
		verifyChecksums: !options.SkipChecksums,
	}, nil
}

func (r *Remote) Name() string {
	return r.name
}

// URL returns the base URL of the repository.
func (r *Remote) URL() string {
	return r.baseURL.String()
}

func (r *Remote) Fetch(ctx context.Context, c coordinate.Coordinate, extension string) (_ string, err error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", Realm), slog.String("repository", r.name))

	rel := Path(c, extension)
	target, err := filepath.Abs(filepath.Join(r.cacheDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(target); err == nil && fi.Mode().IsRegular() {
		logger.DebugContext(ctx, "using cached artifact", slog.String("path", target))
		requestsTotal.WithLabelValues(r.name, resultCacheHit).Inc()
		return target, nil
	}

	defer func() {
		switch {
		case err == nil:
			requestsTotal.WithLabelValues(r.name, metrics.ResultSuccess).Inc()
		case errors.Is(err, ErrNotFound):
			requestsTotal.WithLabelValues(r.name, metrics.ResultNotFound).Inc()
		default:
			requestsTotal.WithLabelValues(r.name, metrics.ResultFailure).Inc()
		}
	}()

	logger.DebugContext(ctx, "downloading artifact", slog.String("path", rel))
	if err := r.download(ctx, rel, target); err != nil {
		return "", fmt.Errorf("fetching %s@%s from %q failed: %w", c, extension, r.name, err)
	}
	return target, nil
}

func (r *Remote) download(ctx context.Context, rel, target string) (err error) {
	body, err := r.get(ctx, rel)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, body.Close())
	}()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	sums := newChecksums()
	_, err = io.Copy(io.MultiWriter(tmp, sums.writer()), body)
	err = errors.Join(err, tmp.Close())
	if err != nil {
		return fmt.Errorf("writing %s failed: %w", rel, err)
	}

	if mime, err := mimetype.DetectFile(tmp.Name()); err == nil && mime.Is("text/html") && !isProjectModel(tmp.Name()) {
		return fmt.Errorf("%w: %s is %s", ErrUnexpectedContent, rel, mime)
	}

	if r.verifyChecksums {
		if err := r.verify(ctx, rel, sums); err != nil {
			return err
		}
	}
	return os.Rename(tmp.Name(), target)
}

// isProjectModel reports whether the root element of the file is a project.
// Models starting with a comment instead of an xml declaration are sniffed as html.
func isProjectModel(name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	d := xml.NewDecoder(bufio.NewReader(f))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	for {
		tok, err := d.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local == "project"
		}
	}
}

// verify checks the first published checksum file found, preferring the strongest algorithm.
// Artifacts without any published checksum are accepted.
func (r *Remote) verify(ctx context.Context, rel string, sums *checksums) error {
	for _, algorithm := range []string{"sha512", "sha256", "sha1"} {
		expected, err := r.readChecksum(ctx, rel+"."+algorithm)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s checksum of %s failed: %w", algorithm, rel, err)
		}
		actual := sums.encoded(algorithm)
		if !strings.EqualFold(expected, actual) {
			return fmt.Errorf("%w: %s of %s is %s, published %s", ErrChecksumMismatch, algorithm, rel, actual, expected)
		}
		return nil
	}
	slogcontext.FromCtx(ctx).DebugContext(ctx, "no checksum published",
		slog.String("realm", Realm),
		slog.String("repository", r.name),
		slog.String("path", rel),
	)
	return nil
}

func (r *Remote) readChecksum(ctx context.Context, rel string) (_ string, err error) {
	body, err := r.get(ctx, rel)
	if err != nil {
		return "", err
	}
	defer func() {
		err = errors.Join(err, body.Close())
	}()
	// checksum files contain the hex digest optionally followed by the file name
	scanner := bufio.NewScanner(io.LimitReader(body, 4096))
	scanner.Split(bufio.ScanWords)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("empty checksum file %s", rel)
	}
	sum := scanner.Text()
	if _, err := hex.DecodeString(sum); err != nil {
		return "", fmt.Errorf("invalid checksum %q in %s", sum, rel)
	}
	return sum, nil
}

func (r *Remote) get(ctx context.Context, rel string) (io.ReadCloser, error) {
	u := r.baseURL.JoinPath(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", u.Redacted(), ErrNotFound)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", u.Redacted(), resp.Status)
	}
}

func (r *Remote) authorize(req *http.Request) {
	if token := r.credentials[credentials.CredentialKeyToken]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	if username := r.credentials[credentials.CredentialKeyUsername]; username != "" {
		req.SetBasicAuth(username, r.credentials[credentials.CredentialKeyPassword])
	}
}

type checksums struct {
	sha256 digest.Digester
	sha512 digest.Digester
	sha1   hash.Hash
}

func newChecksums() *checksums {
	return &checksums{
		sha256: digest.SHA256.Digester(),
		sha512: digest.SHA512.Digester(),
		sha1:   sha1.New(), //nolint:gosec // see import
	}
}

func (c *checksums) writer() io.Writer {
	return io.MultiWriter(c.sha256.Hash(), c.sha512.Hash(), c.sha1)
}

func (c *checksums) encoded(algorithm string) string {
	switch algorithm {
	case "sha256":
		return c.sha256.Digest().Encoded()
	case "sha512":
		return c.sha512.Digest().Encoded()
	default:
		return hex.EncodeToString(c.sha1.Sum(nil))
	}
}

