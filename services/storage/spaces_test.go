package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/collegebuddy/api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	put     *s3.PutObjectInput
	deleted string
}

func (f *fakeS3) PutObjectWithContext(_ context.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.put = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ context.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = *in.Key
	return &s3.DeleteObjectOutput{}, nil
}

func TestConfigFromEnv(t *testing.T) {
	cfg := ConfigFromEnv(&config.EnviornmentVariable{
		DO_SPACES_ACCESS_KEY:   "key",
		DO_SPACES_SECRET_KEY:   "secret",
		DO_SPACES_BUCKET:       "buddy",
		DO_SPACES_REGION:       "blr1",
		DO_SPACES_CDN_ENDPOINT: "https://cdn.example.com/",
	})
	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, "blr1.digitaloceanspaces.com", cfg.Endpoint)
	assert.Equal(t, "https://cdn.example.com", cfg.CDNURL)

	_, err := NewSpacesStore(SpacesConfig{Bucket: "b"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSpacesStore_PutAndDelete(t *testing.T) {
	fake := &fakeS3{}
	store := &SpacesStore{s3: fake, bucket: "buddy", endpoint: "blr1.digitaloceanspaces.com"}

	url, err := store.Put(context.Background(), "notes/1/a.pdf", []byte("%PDF-"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://buddy.blr1.digitaloceanspaces.com/notes/1/a.pdf", url)
	assert.Equal(t, "public-read", *fake.put.ACL)
	assert.Equal(t, "application/pdf", *fake.put.ContentType)

	store.cdnURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/notes/1/a.pdf", store.URL("notes/1/a.pdf"))

	require.NoError(t, store.Delete(context.Background(), "notes/1/a.pdf"))
	assert.Equal(t, "notes/1/a.pdf", fake.deleted)
}

func TestNoteKey(t *testing.T) {
	key := NoteKey(7, "Unit 1: Intro (final).PDF")
	assert.Regexp(t, regexp.MustCompile(`^notes/7/[0-9a-f]{8}_Unit-1-Intro-final\.pdf$`), key)
	assert.NotEqual(t, key, NoteKey(7, "Unit 1: Intro (final).PDF"))
	assert.Regexp(t, `_notes\.pdf$`, NoteKey(1, "???.pdf"))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Put(context.Background(), "k", nil, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
