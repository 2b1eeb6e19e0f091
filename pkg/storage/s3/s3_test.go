package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/leapstack-labs/structload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		location   string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{location: "s3://bucket/data/sales.csv", wantBucket: "bucket", wantKey: "data/sales.csv"},
		{location: "bucket/sales.csv", wantBucket: "bucket", wantKey: "sales.csv"},
		{location: "s3://bucket/a/b/c.parquet", wantBucket: "bucket", wantKey: "a/b/c.parquet"},
		{location: "s3://bucket", wantErr: true},
		{location: "s3://bucket/", wantErr: true},
		{location: "s3:///key.csv", wantErr: true},
		{location: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, key, err := SplitLocation(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestFetcher_Fetch(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"bucket/data/sales.csv": "id,amount\n1,10\n"}}
	f := NewWithClient(fake, testutil.NewTestLogger(t))

	data, err := f.Fetch(context.Background(), "s3://bucket/data/sales.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,amount\n1,10\n", string(data))
	assert.Equal(t, []string{"bucket/data/sales.csv"}, fake.calls)
}

func TestFetcher_FetchErrors(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	f := NewWithClient(fake, testutil.NewTestLogger(t))

	_, err := f.Fetch(context.Background(), "s3://bucket/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://bucket/missing.csv")
	assert.Contains(t, err.Error(), "NoSuchKey")

	_, err = f.Fetch(context.Background(), "no-key")
	require.Error(t, err)
	assert.Len(t, fake.calls, 1, "invalid locations must not reach the client")
}

func TestOptions_ClientSettings(t *testing.T) {
	opts := Options{
		Region:          "eu-west-1",
		AccessKeyID:     "AKID",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	}

	var lo config.LoadOptions
	for _, fn := range opts.loadOptions() {
		require.NoError(t, fn(&lo))
	}
	assert.Equal(t, "eu-west-1", lo.Region)
	require.NotNil(t, lo.Credentials)
	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)

	var so s3.Options
	opts.apply(&so)
	assert.Equal(t, "http://localhost:9000", aws.ToString(so.BaseEndpoint))
	assert.True(t, so.UsePathStyle)

	assert.Empty(t, Options{}.loadOptions())
}
