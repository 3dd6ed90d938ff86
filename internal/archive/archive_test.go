package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Key: in.Key}, nil
}

func TestObjectKey(t *testing.T) {
	pt, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	tests := []struct {
		name   string
		prefix string
		at     time.Time
		want   string
	}{
		{
			name:   "local wall clock",
			prefix: "mountain-history",
			at:     time.Date(2021, 7, 2, 14, 40, 0, 0, pt),
			want:   "mountain-history/2021/07/02/MountRainier-2021-07-02T14:40:00.jpg",
		},
		{
			name: "no prefix",
			at:   time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC),
			want: "2021/12/31/MountRainier-2021-12-31T23:59:59.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.prefix, "MountRainier", tt.at))
		})
	}
}

func TestS3Archiver_Archive(t *testing.T) {
	up := &fakeUploader{}
	a := &S3Archiver{bucket: "snapshots", prefix: "mountain-history", uploader: up}
	at := time.Date(2021, 7, 2, 14, 40, 0, 0, time.UTC)

	key, err := a.Archive(context.Background(), "MountRainier", at, []byte{0xff, 0xd8}, "")
	require.NoError(t, err)
	assert.Equal(t, "mountain-history/2021/07/02/MountRainier-2021-07-02T14:40:00.jpg", key)
	assert.Equal(t, "snapshots", aws.ToString(up.input.Bucket))
	assert.Equal(t, key, aws.ToString(up.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(up.input.ContentType))
	assert.Equal(t, []byte{0xff, 0xd8}, up.body)
}

func TestS3Archiver_Errors(t *testing.T) {
	boom := errors.New("access denied")
	a := &S3Archiver{bucket: "snapshots", uploader: &fakeUploader{err: boom}}
	at := time.Date(2021, 7, 2, 14, 40, 0, 0, time.UTC)

	_, err := a.Archive(context.Background(), "MountRainier", at, []byte{1}, "image/jpeg")
	assert.ErrorIs(t, err, boom)

	_, err = a.Archive(context.Background(), "MountRainier", at, nil, "image/jpeg")
	assert.ErrorContains(t, err, "empty image")

	_, err = NewS3Archiver(context.Background(), "", "p")
	assert.ErrorContains(t, err, "bucket required")
}
