package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/haivivi/muse/pkg/cli"
	"github.com/haivivi/muse/pkg/storage"
)

// exportStore builds the file store reports and snapshots are written
// through. An empty target falls back to the exports directory under
// the OS config dir; Dir wins over Bucket when both are set.
func exportStore(target *cli.ExportTarget) (storage.FileStore, string, error) {
	if target == nil {
		target = &cli.ExportTarget{}
	}

	if target.Dir != "" {
		st, err := storage.NewLocal(target.Dir)
		if err != nil {
			return nil, "", fmt.Errorf("open export dir: %w", err)
		}
		return st, st.Root(), nil
	}

	if target.Bucket != "" {
		client, err := newS3Client(target.Region)
		if err != nil {
			return nil, "", err
		}
		desc := "s3://" + target.Bucket
		if target.Prefix != "" {
			desc += "/" + target.Prefix
		}
		return storage.NewS3(client, target.Bucket, target.Prefix), desc, nil
	}

	p, err := cli.NewPaths()
	if err != nil {
		return nil, "", fmt.Errorf("resolve exports dir: %w", err)
	}
	st, err := storage.NewLocal(p.ExportsDir())
	if err != nil {
		return nil, "", fmt.Errorf("open exports dir: %w", err)
	}
	return st, st.Root(), nil
}

// newS3Client builds an S3 client from the environment. The region
// comes from the export target or AWS_REGION/AWS_DEFAULT_REGION;
// credentials are read lazily so a misconfigured environment fails at
// upload time with a clear message.
func newS3Client(region string) (*s3.Client, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		return nil, fmt.Errorf("S3 export needs a region: set export.region or AWS_REGION")
	}

	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, fmt.Errorf("AWS credentials not set (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})

	return s3.New(s3.Options{Region: region, Credentials: creds}), nil
}
