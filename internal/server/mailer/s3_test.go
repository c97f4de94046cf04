package mailer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func s3Config() *config.Config {
	return &config.Config{
		MailSink: SinkS3, MailFrom: "noreply@shop.com", MailFromName: "PSR Enterprises",
		S3Region: "us-east-1", S3RootUser: "minio", S3RootPassword: "minio123",
		S3Bucket: "mail", S3BaseEndpoint: "http://127.0.0.1:9000",
	}
}

func withFakeS3(t *testing.T, f *fakePutter) *string {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				return aws.Config{}, err
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var endpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		endpoint = aws.ToString(opts.BaseEndpoint)
		return f
	}
	return &endpoint
}

func TestS3Sink_Send(t *testing.T) {
	f := &fakePutter{}
	endpoint := withFakeS3(t, f)

	s, err := NewS3Sink(context.Background(), s3Config())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", *endpoint)

	s.now = func() time.Time { return time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Send(context.Background(), "ann@x.com", "Verify your email", "Your OTP to verify your email is 123456."))

	require.NotNil(t, f.input)
	assert.Equal(t, "mail", aws.ToString(f.input.Bucket))
	key := aws.ToString(f.input.Key)
	assert.True(t, strings.HasPrefix(key, "mail/2025/03/07/"), key)
	assert.True(t, strings.HasSuffix(key, ".eml"), key)
	assert.Contains(t, key, "verify-your-email")
	assert.Equal(t, "message/rfc822", aws.ToString(f.input.ContentType))
	assert.Contains(t, f.body, "Subject: Verify your email")
	assert.Contains(t, f.body, "123456")
}

func TestS3Sink_PutError(t *testing.T) {
	f := &fakePutter{err: errors.New("no such bucket")}
	withFakeS3(t, f)

	s, err := NewS3Sink(context.Background(), s3Config())
	require.NoError(t, err)

	err = s.Send(context.Background(), "ann@x.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put")
}

func TestNewS3Sink_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	_, err := NewS3Sink(context.Background(), s3Config())
	require.Error(t, err)
}
