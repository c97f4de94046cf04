package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink stores every message as an RFC 5322 .eml object instead of
// delivering it. Pointed at MinIO it acts as a mail catcher for staging.
type S3Sink struct {
	envelope
	bucket string
	client objectPutter
	now    func() time.Time
}

// Seams for tests.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

func NewS3Sink(ctx context.Context, cfg *config.Config) (*S3Sink, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Sink{
		envelope: envelope{from: fromAddress(cfg), fromName: cfg.MailFromName},
		bucket:   cfg.S3Bucket,
		client:   client,
		now:      time.Now,
	}, nil
}

// objectKey groups messages by day; the slug keeps keys readable in the
// bucket browser.
func (s *S3Sink) objectKey(to, subject string) string {
	d := s.now().UTC()
	return fmt.Sprintf("mail/%04d/%02d/%02d/%s-%s.eml", d.Year(), d.Month(), d.Day(), slug.Make(to+" "+subject), uuid.NewString())
}

func (s *S3Sink) Send(ctx context.Context, to, subject, body string) error {
	m, err := s.message(to, subject, body)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("render message: %w", err)
	}

	key := s.objectKey(to, subject)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("message/rfc822"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
