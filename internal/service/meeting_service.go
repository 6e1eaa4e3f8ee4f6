package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"visitbook/internal/domain"
	"visitbook/internal/meeting"
	"visitbook/internal/mediastore"
)

// ErrPhotoLimit indicates the property already carries the maximum number
// of photos. The cap lives at this edit boundary, not in storage.
var ErrPhotoLimit = errors.New("photo limit reached for property")

// ErrNoSuchProperty indicates the property index is outside the meeting's
// property list.
var ErrNoSuchProperty = errors.New("no such property in meeting")

// meetingRepository is the subset of meeting.Repository that MeetingService
// requires.
type meetingRepository interface {
	Create(ctx context.Context, m domain.Meeting) (*domain.Meeting, error)
	Get(ctx context.Context, id string) (*domain.Meeting, error)
	Update(ctx context.Context, id string, patch meeting.Patch) (*domain.Meeting, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Meeting, error)
	Watch(ctx context.Context) (*meeting.Watch, error)
}

// reportRenderer is the subset of report.Renderer that MeetingService
// requires.
type reportRenderer interface {
	RenderPNG(m domain.Meeting, photos map[string]image.Image) ([]byte, error)
}

type MeetingService struct {
	meetings meetingRepository
	media    mediastore.Store
	renderer reportRenderer
	logger   *slog.Logger
}

func NewMeetingService(
	meetings meetingRepository,
	media mediastore.Store,
	renderer reportRenderer,
	logger *slog.Logger,
) *MeetingService {
	return &MeetingService{
		meetings: meetings,
		media:    media,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *MeetingService) CreateMeeting(ctx context.Context, m domain.Meeting) (*domain.Meeting, error) {
	return s.meetings.Create(ctx, m)
}

func (s *MeetingService) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	return s.meetings.Get(ctx, id)
}

func (s *MeetingService) ListMeetings(ctx context.Context) ([]domain.Meeting, error) {
	return s.meetings.List(ctx)
}

func (s *MeetingService) UpdateMeeting(ctx context.Context, id string, patch meeting.Patch) (*domain.Meeting, error) {
	return s.meetings.Update(ctx, id, patch)
}

func (s *MeetingService) DeleteMeeting(ctx context.Context, id string) error {
	return s.meetings.Delete(ctx, id)
}

func (s *MeetingService) WatchMeetings(ctx context.Context) (*meeting.Watch, error) {
	return s.meetings.Watch(ctx)
}

// AttachPhoto stores a photo blob for one property visit and appends its
// locator to the meeting. The per-property cap is enforced here. On a
// failed meeting update the stored blob is removed again so no reference
// ever points at nothing.
func (s *MeetingService) AttachPhoto(ctx context.Context, meetingID string, propertyIdx int, mimeType string, data []byte) (*domain.Meeting, string, error) {
	m, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, "", err
	}
	if propertyIdx < 0 || propertyIdx >= len(m.Properties) {
		return nil, "", ErrNoSuchProperty
	}
	if len(m.Properties[propertyIdx].Photos) >= domain.MaxPhotosPerProperty {
		return nil, "", ErrPhotoLimit
	}

	locator, err := s.media.Save(ctx, meetingID, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "meeting_id", meetingID, "locator", locator)

	properties := m.Properties
	properties[propertyIdx].Photos = append(properties[propertyIdx].Photos, locator)

	updated, err := s.meetings.Update(ctx, meetingID, meeting.Patch{Properties: &properties})
	if err != nil {
		if derr := s.media.Delete(ctx, locator); derr != nil {
			s.logger.Error("failed to roll back photo after update error", "locator", locator, "error", derr)
		}
		return nil, "", fmt.Errorf("failed to attach photo: %w", err)
	}

	return updated, locator, nil
}

// RemovePhoto deletes the blob and removes the locator from the property.
// The two steps are not transactional: a failed blob delete (including a
// missing blob) is logged and the reference is removed anyway, favoring a
// consistent meeting over storage cleanliness. The orphaned blob, if any,
// is not collected.
func (s *MeetingService) RemovePhoto(ctx context.Context, meetingID string, propertyIdx int, locator string) (*domain.Meeting, error) {
	m, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if propertyIdx < 0 || propertyIdx >= len(m.Properties) {
		return nil, ErrNoSuchProperty
	}

	if err := s.media.Delete(ctx, locator); err != nil {
		s.logger.Error("failed to delete photo blob, removing reference anyway",
			"meeting_id", meetingID, "locator", locator, "error", err)
	}

	properties := m.Properties
	photos := properties[propertyIdx].Photos
	kept := photos[:0]
	for _, p := range photos {
		if p != locator {
			kept = append(kept, p)
		}
	}
	properties[propertyIdx].Photos = kept

	return s.meetings.Update(ctx, meetingID, meeting.Patch{Properties: &properties})
}

// OpenPhoto streams a stored photo blob.
func (s *MeetingService) OpenPhoto(ctx context.Context, locator string) (io.ReadCloser, string, error) {
	return s.media.Open(ctx, locator)
}

// BuildReport renders the meeting into a shareable PNG. Photo blobs that
// cannot be loaded or decoded are skipped with a log line; the report is
// still produced.
func (s *MeetingService) BuildReport(ctx context.Context, meetingID string) ([]byte, error) {
	m, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	photos := make(map[string]image.Image)
	for _, prop := range m.Properties {
		for _, locator := range prop.Photos {
			img, err := s.loadPhoto(ctx, locator)
			if err != nil {
				s.logger.Warn("skipping unreadable report photo", "locator", locator, "error", err)
				continue
			}
			photos[locator] = img
		}
	}

	data, err := s.renderer.RenderPNG(*m, photos)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return data, nil
}

func (s *MeetingService) loadPhoto(ctx context.Context, locator string) (image.Image, error) {
	reader, _, err := s.media.Open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return img, nil
}
