package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecrew/config"
)

func newTestPresigner() *S3Presigner {
	client := s3.New(s3.Options{
		Region: "ap-southeast-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
		}),
	})
	return NewS3PresignerFromClient(client, config.S3Env{
		Bucket:     "sitecrew-files",
		Prefix:     "/attachments/",
		PresignTTL: 15 * time.Minute,
	})
}

func TestObjectKey(t *testing.T) {
	p := newTestPresigner()

	key := p.ObjectKey("t1", `C:\photos\north wall.jpg`)
	assert.True(t, strings.HasPrefix(key, "attachments/t1/"), key)
	assert.True(t, strings.HasSuffix(key, "-north wall.jpg"), key)
	assert.NotEqual(t, key, p.ObjectKey("t1", `C:\photos\north wall.jpg`))
	assert.True(t, strings.HasSuffix(p.ObjectKey("t1", ""), "-file"))
}

func TestPresignUpload(t *testing.T) {
	p := newTestPresigner()

	raw, err := p.PresignUpload(context.Background(), "attachments/t1/x-plan.pdf", "application/pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "sitecrew-files")
	assert.Equal(t, "/attachments/t1/x-plan.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	raw, err = p.PresignDownload(context.Background(), "attachments/t1/x-plan.pdf")
	require.NoError(t, err)
	assert.Contains(t, raw, "X-Amz-Signature=")
}
