package assets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectGetter is the part of the S3 client a bucket source needs.
// *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads files from an S3 bucket under a key prefix.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	src := assets.S3(s3.NewFromConfig(cfg), "my-bucket", "catsite/")
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
}

// S3 returns a source reading objects at prefix+name in bucket.
func S3(client ObjectGetter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Open fetches the object. The caller closes the body.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, Info, error) {
	key := s.prefix + name
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, Info{}, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
		}
		return nil, Info{}, fmt.Errorf("assets: get s3://%s/%s: %w", s.bucket, key, err)
	}

	info := Info{
		Size:        -1,
		ContentType: ContentType(name),
	}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	// Buckets often store everything as binary/octet-stream; the extension wins then.
	if out.ContentType != nil && *out.ContentType != "" && *out.ContentType != "binary/octet-stream" && *out.ContentType != "application/octet-stream" {
		info.ContentType = *out.ContentType
	}
	return out.Body, info, nil
}
