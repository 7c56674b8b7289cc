package ps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds optional S3 settings. Unset fields fall back to the AWS
// default credential chain and configuration.
type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string // S3-compatible endpoint, implies path-style addressing
}

// objectStore serves catalog files from a remote location.
type objectStore interface {
	open(ctx context.Context, filePath string) (io.ReadCloser, error)
	exists(ctx context.Context, filePath string) bool
	list(ctx context.Context) ([]string, error)
	put(ctx context.Context, filePath string, data []byte) error
	String() string
}

type urlScheme string

const (
	schemeS3    urlScheme = "s3"
	schemeHTTP  urlScheme = "http"
	schemeHTTPS urlScheme = "https"
	schemeLocal urlScheme = "local"
)

func detectScheme(url string) urlScheme {
	lowerURL := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lowerURL, "s3://"):
		return schemeS3
	case strings.HasPrefix(lowerURL, "https://"):
		return schemeHTTPS
	case strings.HasPrefix(lowerURL, "http://"):
		return schemeHTTP
	default:
		return schemeLocal
	}
}

// IsRemoteURL reports whether url names an HTTP or S3 catalog.
func IsRemoteURL(url string) bool {
	return detectScheme(url) != schemeLocal
}

// NewRemotePersistence serves the catalog below baseURL, either
// http(s)://host/prefix or s3://bucket/prefix. HTTP catalogs are read-only
// and cannot list their databases.
func NewRemotePersistence(ctx context.Context, baseURL string, cfg *S3Config) (*Persistence, error) {
	var store objectStore

	switch detectScheme(baseURL) {
	case schemeHTTP, schemeHTTPS:
		store = &httpStore{
			baseURL: strings.TrimSuffix(baseURL, "/"),
			client:  &http.Client{Timeout: 5 * time.Minute},
		}
	case schemeS3:
		bucket, prefix, err := parseS3URL(baseURL)
		if err != nil {
			return nil, err
		}
		client, err := getS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store = &s3Store{client: client, bucket: bucket, prefix: prefix}
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s", baseURL)
	}

	return &Persistence{
		backend: remoteBackend,
		store:   store,
	}, nil
}

type httpStore struct {
	baseURL string
	client  *http.Client
}

func (s *httpStore) String() string {
	return s.baseURL
}

func (s *httpStore) open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	url := s.baseURL + "/" + filePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", url, os.ErrNotExist)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request for %s returned status %d", url, resp.StatusCode)
	}
}

func (s *httpStore) exists(ctx context.Context, filePath string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.baseURL+"/"+filePath, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (s *httpStore) list(context.Context) ([]string, error) {
	return nil, fmt.Errorf("listing databases over HTTP: %w", ErrNotSupported)
}

func (s *httpStore) put(context.Context, string, []byte) error {
	return fmt.Errorf("HTTP catalogs do not support writing: %w", ErrReadOnly)
}

// parseS3URL parses s3://bucket/prefix into bucket and prefix parts
func parseS3URL(url string) (bucket, prefix string, err error) {
	trimmed := url[len("s3://"):]
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	if len(parts) == 2 {
		prefix = strings.Trim(parts[1], "/")
	}
	return parts[0], prefix, nil
}

// getS3Client creates an S3 client with the given configuration
func getS3Client(ctx context.Context, cfg *S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error

	if cfg != nil && cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg != nil && cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg != nil && cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

type s3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func (s *s3Store) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

func (s *s3Store) key(filePath string) string {
	if s.prefix == "" {
		return filePath
	}
	return s.prefix + "/" + filePath
}

func (s *s3Store) open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filePath)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key(filePath), os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	return resp.Body, nil
}

func (s *s3Store) exists(ctx context.Context, filePath string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filePath)),
	})
	return err == nil
}

// list returns the first-level "directories" below the prefix.
func (s *s3Store) list(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}
		for _, common := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(common.Prefix), prefix), "/")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (s *s3Store) put(ctx context.Context, filePath string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filePath)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var responseErr *awshttp.ResponseError
	return errors.As(err, &responseErr) && responseErr.HTTPStatusCode() == http.StatusNotFound
}
