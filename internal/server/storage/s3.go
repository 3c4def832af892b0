// Package storage stores hero image content in an S3 compatible bucket
// (MinIO in development) and derives the public URLs saved in the database.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	sc "github.com/dmitrijs2005/herostore/internal/server/config"
)

// ErrDuplicateObject is returned by Upload when the key is already taken.
var ErrDuplicateObject = errors.New("duplicate object")

// Gateway is the object storage used by the hero service.
type Gateway interface {
	// Upload stores body under media/<folder>/<filename> and returns its
	// public URL.
	Upload(ctx context.Context, folder, filename, contentType string, body []byte) (string, error)
	// Delete removes the object a public URL returned by Upload points at.
	Delete(ctx context.Context, folder, publicURL string) error
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Gateway implements Gateway on top of aws-sdk-go-v2.
type S3Gateway struct {
	client     objectAPI
	bucket     string
	publicBase string
	timeout    time.Duration
}

// NewS3Gateway builds an S3 client with static credentials and path-style
// addressing against cfg.S3BaseEndpoint.
func NewS3Gateway(ctx context.Context, cfg *sc.Config) (*S3Gateway, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	public := cfg.S3PublicBaseURL
	if public == "" {
		public = strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	}

	return newGateway(client, cfg.S3Bucket, public, cfg.StorageTimeout), nil
}

func newGateway(client objectAPI, bucket, publicBase string, timeout time.Duration) *S3Gateway {
	return &S3Gateway{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		timeout:    timeout,
	}
}

// ObjectName escapes the stem of filename and keeps its extension as is.
func ObjectName(filename string) string {
	ext := path.Ext(filename)
	return url.PathEscape(strings.TrimSuffix(filename, ext)) + ext
}

// ObjectKey is the bucket key of an object name inside a media folder.
func ObjectKey(folder, name string) string {
	return "media/" + folder + "/" + name
}

// NameFromURL extracts the object name from a public URL: the last path
// segment without any query string.
func NameFromURL(publicURL string) string {
	name := publicURL[strings.LastIndex(publicURL, "/")+1:]
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}

// PublicURL returns the URL clients use to fetch key.
func (g *S3Gateway) PublicURL(key string) string {
	return g.publicBase + "/" + key
}

func (g *S3Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *S3Gateway) Upload(ctx context.Context, folder, filename, contentType string, body []byte) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	key := ObjectKey(folder, ObjectName(filename))

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isDuplicate(err) {
			return "", ErrDuplicateObject
		}
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return g.PublicURL(key), nil
}

func (g *S3Gateway) Delete(ctx context.Context, folder, publicURL string) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	key := ObjectKey(folder, NameFromURL(publicURL))

	if _, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

// isDuplicate reports whether a conditional put failed because the key
// already exists.
func isDuplicate(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
