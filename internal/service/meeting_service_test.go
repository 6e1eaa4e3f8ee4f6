package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/domain"
	"visitbook/internal/meeting"
	"visitbook/internal/mediastore/local"
	"visitbook/internal/report"
)

func newTestService(t *testing.T) *MeetingService {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	repo := meeting.NewRepository(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = repo.Close() })

	media, err := local.NewMediaStore(t.TempDir())
	require.NoError(t, err)

	renderer, err := report.NewRenderer()
	require.NoError(t, err)

	return NewMeetingService(repo, media, renderer, slog.Default())
}

func createMeeting(t *testing.T, svc *MeetingService) *domain.Meeting {
	t.Helper()
	m, err := svc.CreateMeeting(context.Background(), domain.Meeting{
		CustomerName: "Lee Younghee",
		Date:         "2024-09-07",
		Purpose:      domain.PurposeRent,
		Properties: []domain.PropertyVisit{
			{Name: "Prugio", Address: "Seocho-dong", Status: domain.VisitUnchecked},
		},
	})
	require.NoError(t, err)
	return m
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestAttachPhoto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m := createMeeting(t, svc)

	updated, locator, err := svc.AttachPhoto(ctx, m.ID, 0, "image/png", pngBytes(t))
	require.NoError(t, err)
	assert.NotEmpty(t, locator)
	require.Len(t, updated.Properties[0].Photos, 1)
	assert.Equal(t, locator, updated.Properties[0].Photos[0])

	reader, mime, err := svc.OpenPhoto(ctx, locator)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "image/png", mime)
}

func TestAttachPhotoEnforcesCap(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m := createMeeting(t, svc)

	for i := 0; i < domain.MaxPhotosPerProperty; i++ {
		_, _, err := svc.AttachPhoto(ctx, m.ID, 0, "image/png", pngBytes(t))
		require.NoError(t, err)
	}

	_, _, err := svc.AttachPhoto(ctx, m.ID, 0, "image/png", pngBytes(t))
	assert.ErrorIs(t, err, ErrPhotoLimit)
}

func TestAttachPhotoBadProperty(t *testing.T) {
	svc := newTestService(t)
	m := createMeeting(t, svc)

	_, _, err := svc.AttachPhoto(context.Background(), m.ID, 5, "image/png", pngBytes(t))
	assert.ErrorIs(t, err, ErrNoSuchProperty)
}

func TestAttachPhotoMissingMeeting(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.AttachPhoto(context.Background(), "no-such-id", 0, "image/png", pngBytes(t))
	assert.ErrorIs(t, err, meeting.ErrNotFound)
}

func TestRemovePhoto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m := createMeeting(t, svc)

	_, locator, err := svc.AttachPhoto(ctx, m.ID, 0, "image/png", pngBytes(t))
	require.NoError(t, err)

	updated, err := svc.RemovePhoto(ctx, m.ID, 0, locator)
	require.NoError(t, err)
	assert.Empty(t, updated.Properties[0].Photos)

	_, _, err = svc.OpenPhoto(ctx, locator)
	assert.Error(t, err)
}

// The reference must go away even when the blob is already gone: the
// two-step delete favors meeting consistency over storage cleanliness.
func TestRemovePhotoToleratesMissingBlob(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m := createMeeting(t, svc)

	_, locator, err := svc.AttachPhoto(ctx, m.ID, 0, "image/png", pngBytes(t))
	require.NoError(t, err)

	// First removal deletes the blob, second sees it missing.
	_, err = svc.RemovePhoto(ctx, m.ID, 0, locator)
	require.NoError(t, err)

	props := []domain.PropertyVisit{{Name: "Prugio", Photos: []string{locator}}}
	_, err = svc.UpdateMeeting(ctx, m.ID, meeting.Patch{Properties: &props})
	require.NoError(t, err)

	updated, err := svc.RemovePhoto(ctx, m.ID, 0, locator)
	require.NoError(t, err)
	assert.Empty(t, updated.Properties[0].Photos)
}

func TestBuildReport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m := createMeeting(t, svc)

	_, _, err := svc.AttachPhoto(ctx, m.ID, 0, "image/png", pngBytes(t))
	require.NoError(t, err)

	data, err := svc.BuildReport(ctx, m.ID)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Positive(t, decoded.Bounds().Dy())
}

func TestBuildReportMissingMeeting(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.BuildReport(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, meeting.ErrNotFound)
}
