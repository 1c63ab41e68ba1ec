package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/catsite/internal/config"
	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/actions"
	"github.com/vango-dev/catsite/pkg/assets"
)

const defaultRegion = "us-east-1"

// assetSource returns the page source selected by the config.
func assetSource(cfg *config.Config) (assets.Source, error) {
	switch cfg.Assets.Source {
	case config.SourceEmbedded, "":
		return assets.Embedded(), nil
	case config.SourceDir:
		st, err := os.Stat(cfg.Assets.Dir)
		if err != nil || !st.IsDir() {
			return nil, errors.New("E120").WithKey("assets.dir").WithDetail(cfg.Assets.Dir)
		}
		return assets.Dir(cfg.Assets.Dir), nil
	case config.SourceS3:
		if cfg.Assets.Bucket == "" {
			return nil, errors.New("E122").WithKey("assets.bucket")
		}
		return assets.S3(newS3Client(cfg.Assets), cfg.Assets.Bucket, cfg.Assets.Prefix), nil
	default:
		return nil, errors.New("E121").WithKey("assets.source")
	}
}

// newS3Client creates a client for the asset bucket. Credentials come from
// the standard AWS environment variables; without them requests are
// unsigned, which suits public buckets.
func newS3Client(ac config.AssetsConfig) *s3.Client {
	region := ac.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = defaultRegion
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" {
		creds = aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials))
	}

	return s3.New(s3.Options{
		Region:       region,
		Credentials:  creds,
		UsePathStyle: ac.PathStyle,
		BaseEndpoint: endpoint(ac.Endpoint),
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	return aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

func endpoint(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

// actionTable loads the configured action table, or the built-in one.
func actionTable(cfg *config.Config) (*actions.Table, error) {
	if cfg.Actions.File == "" {
		return actions.Default(), nil
	}
	if _, err := os.Stat(cfg.Actions.File); err != nil {
		return nil, errors.New("E131").WithKey("actions.file").WithDetail(cfg.Actions.File).Wrap(err)
	}
	t, err := actions.Load(cfg.Actions.File)
	if err != nil {
		return nil, errors.New("E130").WithKey("actions.file").WithDetail(cfg.Actions.File).Wrap(err)
	}
	return t, nil
}
