package secrets

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	p, r, ok := ParseRef("secretref:s3:bucket/key:with:colons")
	require.True(t, ok)
	assert.Equal(t, "s3", p)
	assert.Equal(t, "bucket/key:with:colons", r)

	for _, bad := range []string{"plain", "secretref:", "secretref:env", "secretref::X", "secretref:env:"} {
		_, _, ok := ParseRef(bad)
		assert.False(t, ok, bad)
	}
}

func TestResolver_LiteralAndEnv(t *testing.T) {
	env := &EnvProvider{lookup: func(k string) (string, bool) {
		if k == "JWT_SECRET" {
			return "from-env", true
		}
		if k == "EMPTY" {
			return "", true
		}
		return "", false
	}}
	r := NewResolver(env, nil)
	ctx := context.Background()

	v, err := r.Resolve(ctx, "literal-secret")
	require.NoError(t, err)
	assert.Equal(t, "literal-secret", v)

	v, err = r.Resolve(ctx, "secretref:env:JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = r.Resolve(ctx, "secretref:env:MISSING")
	assert.Error(t, err)

	_, err = r.Resolve(ctx, "secretref:env:EMPTY")
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = r.Resolve(ctx, "secretref:vault:path")
	assert.ErrorContains(t, err, "not registered")

	_, err = r.Resolve(ctx, "secretref:env")
	assert.ErrorContains(t, err, "malformed")
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt")
	require.NoError(t, os.WriteFile(path, []byte("file-secret\n"), 0o600))

	r := NewResolver(NewFileProvider())
	v, err := r.Resolve(context.Background(), "secretref:file:"+path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", v)

	_, err = r.Resolve(context.Background(), "secretref:file:"+filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

type fakeS3 struct {
	bucket, key string
	body        string
	err         error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = aws.ToString(in.Bucket), aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Provider(t *testing.T) {
	fake := &fakeS3{body: "s3-secret\n"}
	r := NewResolver(&S3Provider{client: fake})

	v, err := r.Resolve(context.Background(), "secretref:s3:secrets/gate/jwt")
	require.NoError(t, err)
	assert.Equal(t, "s3-secret", v)
	assert.Equal(t, "secrets", fake.bucket)
	assert.Equal(t, "gate/jwt", fake.key)

	_, err = r.Resolve(context.Background(), "secretref:s3:no-key")
	assert.Error(t, err)

	fake.err = errors.New("access denied")
	_, err = r.Resolve(context.Background(), "secretref:s3:secrets/gate/jwt")
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3Provider_UsesConfigLoader(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var gotOpts int
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		gotOpts = len(optFns)
		return aws.Config{Region: "us-east-1"}, nil
	}

	p, err := NewS3Provider(context.Background(), S3Config{Region: "us-east-1", BaseEndpoint: "http://127.0.0.1:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "s3", p.Name())
	assert.Equal(t, 2, gotOpts)

	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = NewS3Provider(context.Background(), S3Config{})
	assert.Error(t, err)
}
