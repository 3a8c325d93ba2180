package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"video-publisher/domain/dto"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Store keeps sources in an S3-compatible bucket and addresses them as s3://bucket/key.
// Refs without the scheme fall through to the local store.
type S3Store struct {
	bucket string
	api    *awss3.Client
	upl    *manager.Uploader
	local  *LocalStore
}

func NewS3Store(ctx context.Context, cfg S3Config, local *LocalStore) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is empty")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = !strings.Contains(cfg.Endpoint, "amazonaws.com")
		}
	})
	return &S3Store{bucket: cfg.Bucket, api: client, upl: manager.NewUploader(client), local: local}, nil
}

var _ repository.ISourceStore = (*S3Store)(nil)

func (s *S3Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := path.Join("videos", utils.NewID()+"-"+sanitizeName(name))
	if _, err := s.upl.Upload(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}); err != nil {
		return "", fmt.Errorf("upload source to s3: %w", err)
	}
	return s3Scheme + s.bucket + "/" + key, nil
}

func (s *S3Store) Open(ctx context.Context, ref string) (*dto.SourceObject, error) {
	bucket, key, ok := ParseS3Ref(ref)
	if !ok {
		if s.local == nil {
			return nil, fmt.Errorf("unsupported source ref %q", ref)
		}
		return s.local.Open(ctx, ref)
	}
	out, err := s.api.GetObject(ctx, &awss3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, err
	}
	return &dto.SourceObject{Reader: out.Body, Size: aws.ToInt64(out.ContentLength), Name: path.Base(key)}, nil
}

// ParseS3Ref splits s3://bucket/key.
func ParseS3Ref(ref string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(ref, s3Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, s3Scheme)
	i := strings.Index(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
