// Package archive keeps a history of replaced snapshots in an
// S3-compatible object store. The accounts table only ever holds the
// latest blob, so the archive is what makes a destructive client push
// recoverable.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/discussions-app/core/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Archiver writes one object per replaced snapshot.
type S3Archiver struct {
	config *sc.Config
}

func NewS3Archiver(config *sc.Config) *S3Archiver {
	return &S3Archiver{config: config}
}

func storageKey(publicKey string) string {
	d := time.Now()
	return fmt.Sprintf("accounts/%s/%d/%d/%d/%v.json", publicKey, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *S3Archiver) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(a.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Archive stores the snapshot under a per-account dated key.
func (a *S3Archiver) Archive(ctx context.Context, publicKey string, snapshot []byte) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}

	bucket := a.config.S3Bucket
	key := storageKey(publicKey)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(snapshot),
	})
	if err != nil {
		return fmt.Errorf("failed to archive snapshot: %w", err)
	}
	return nil
}
