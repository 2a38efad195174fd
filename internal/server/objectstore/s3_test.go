package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = b
	f.types[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(b)),
		ContentType: aws.String(f.types[*in.Key]),
	}, nil
}

type fakePresign struct{ ttl time.Duration }

func (f *fakePresign) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.ttl = o.Expires
	return &v4.PresignedHTTPRequest{URL: "http://minio/" + *in.Bucket + "/" + *in.Key + "?sig=1"}, nil
}

func newFakeStore() (*S3Store, *fakeS3, *fakePresign) {
	f := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	p := &fakePresign{}
	return &S3Store{bucket: "invoices", client: f, presign: p}, f, p
}

func TestS3Store_PutGet(t *testing.T) {
	s, _, _ := newFakeStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "image/png", []byte("png-bytes")))

	data, ct, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", ct)
}

func TestS3Store_GetMissing(t *testing.T) {
	s, _, _ := newFakeStore()
	_, _, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_PutError(t *testing.T) {
	s, f, _ := newFakeStore()
	f.putErr = errors.New("bucket missing")
	assert.ErrorContains(t, s.Put(context.Background(), "k", "x", nil), "bucket missing")
}

func TestS3Store_PresignGet(t *testing.T) {
	s, _, p := newFakeStore()
	url, err := s.PresignGet(context.Background(), "k1", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://minio/invoices/k1?sig=1", url)
	assert.Equal(t, 5*time.Minute, p.ttl)
}

func TestNewS3Store_AppliesOptions(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	s, err := NewS3Store(context.Background(), Options{
		Region: "eu-west-1", AccessKey: "a", SecretKey: "b", BaseEndpoint: "http://127.0.0.1:9000", Bucket: "invoices",
	})
	require.NoError(t, err)
	assert.Equal(t, "invoices", s.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Store(context.Background(), Options{})
	assert.ErrorContains(t, err, "no creds")
}

func TestInvoiceKey(t *testing.T) {
	key := InvoiceKey(7, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^users/7/2024/03/05/[0-9a-f-]{36}$`), key)
}
