package meeting

import (
	"encoding/json"
	"fmt"
	"time"

	"visitbook/internal/domain"
)

// Hash field names for the meeting document.
const (
	fieldCustomerName = "customer_name"
	fieldDate         = "date"
	fieldPurpose      = "purpose"
	fieldStatus       = "status"
	fieldProperties   = "properties"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

// meetingToHash converts a meeting to a redis hash. The embedded property
// visits are stored as one JSON array field; everything else is a flat
// string field.
func meetingToHash(m *domain.Meeting) (map[string]string, error) {
	properties, err := json.Marshal(m.Properties)
	if err != nil {
		return nil, fmt.Errorf("marshal properties: %w", err)
	}

	return map[string]string{
		fieldCustomerName: m.CustomerName,
		fieldDate:         m.Date,
		fieldPurpose:      m.Purpose,
		fieldStatus:       m.Status,
		fieldProperties:   string(properties),
		fieldCreatedAt:    m.CreatedAt.Format(time.RFC3339Nano),
		fieldUpdatedAt:    m.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

// hashToMeeting reverses meetingToHash.
func hashToMeeting(id string, hash map[string]string) (*domain.Meeting, error) {
	m := &domain.Meeting{
		ID:           id,
		CustomerName: hash[fieldCustomerName],
		Date:         hash[fieldDate],
		Purpose:      hash[fieldPurpose],
		Status:       hash[fieldStatus],
	}

	if raw := hash[fieldProperties]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &m.Properties); err != nil {
			return nil, fmt.Errorf("unmarshal properties: %w", err)
		}
	}

	var err error
	if m.CreatedAt, err = parseTime(hash[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(hash[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return m, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}
