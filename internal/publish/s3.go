// Package publish выкладывает готовые выгрузки сверки в S3-совместимое хранилище.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrDisabled = errors.New("report publishing is not configured")

// putter: единственный вызов SDK, который нам нужен; в тестах подменяется.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Profile   string
	PathStyle bool
}

type S3Publisher struct {
	client putter
	bucket string
	prefix string
}

// NewS3Publisher использует стандартную цепочку AWS config/credentials
// с необязательными region/profile.
func NewS3Publisher(ctx context.Context, cfg Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrDisabled
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
	})
	return newPublisher(c, cfg.Bucket, cfg.Prefix), nil
}

func newPublisher(c putter, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: c, bucket: bucket, prefix: prefix}
}

// Publish кладёт отчёт как <prefix>/<runID>.<ext> и возвращает ключ объекта.
func (p *S3Publisher) Publish(ctx context.Context, runID, ext, contentType string, body []byte) (string, error) {
	if runID == "" {
		return "", errors.New("publish: empty run id")
	}
	key := path.Join(p.prefix, runID+"."+ext)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-store"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}
	return key, nil
}
