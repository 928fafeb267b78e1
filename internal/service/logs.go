package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Alpha4Coders/DevTrack/internal"
	"github.com/Alpha4Coders/DevTrack/internal/storage"
)

var validate = validator.New()

type LogRequest struct {
	Date         internal.DateValue `json:"date" validate:"required"`
	StartTime    string             `json:"startTime" validate:"required"`
	EndTime      string             `json:"endTime" validate:"required"`
	LearnedToday string             `json:"learnedToday" validate:"required"`
	Tags         []string           `json:"tags,omitempty" validate:"dive,required"`
	Mood         string             `json:"mood,omitempty"`
}

// LogUpdateRequest carries a partial update; nil fields are left untouched.
type LogUpdateRequest struct {
	Date         *internal.DateValue `json:"date,omitempty"`
	StartTime    *string             `json:"startTime,omitempty"`
	EndTime      *string             `json:"endTime,omitempty"`
	LearnedToday *string             `json:"learnedToday,omitempty"`
	Tags         *[]string           `json:"tags,omitempty"`
	Mood         *string             `json:"mood,omitempty"`
}

func ValidateLogRequest(body *LogRequest) error {
	return validate.Struct(body)
}

// CreateLog persists a new entry and merges the user's last activity times,
// which feed the adaptive reminder mode.
func CreateLog(ctx context.Context, logs storage.LogRepository, users storage.UserRepository, userID string, body *LogRequest) (*internal.LogEntry, error) {
	now := time.Now()
	mood := body.Mood
	if mood == "" {
		mood = "good"
	}
	log := &internal.LogEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Date:         body.Date,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		LearnedToday: body.LearnedToday,
		Tags:         body.Tags,
		Mood:         mood,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := logs.SaveLog(ctx, log); err != nil {
		return nil, err
	}

	patch := internal.UserPatch{
		LastStartTime: &log.StartTime,
		LastEndTime:   &log.EndTime,
		UpdatedAt:     &now,
	}
	if err := users.MergeUser(ctx, userID, patch); err != nil {
		return nil, err
	}
	return log, nil
}

// GetOwnedLog fetches a log and enforces ownership.
func GetOwnedLog(ctx context.Context, logs storage.LogRepository, userID, id string) (*internal.LogEntry, error) {
	log, err := logs.GetLog(ctx, id)
	if err != nil {
		return nil, err
	}
	if log.UserID != userID {
		return nil, internal.ErrAccessDenied
	}
	return log, nil
}

func UpdateLog(ctx context.Context, logs storage.LogRepository, users storage.UserRepository, userID, id string, updates *LogUpdateRequest) (*internal.LogEntry, error) {
	log, err := GetOwnedLog(ctx, logs, userID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if updates.Date != nil {
		log.Date = *updates.Date
	}
	if updates.StartTime != nil {
		log.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		log.EndTime = *updates.EndTime
	}
	if updates.LearnedToday != nil {
		log.LearnedToday = *updates.LearnedToday
	}
	if updates.Tags != nil {
		log.Tags = *updates.Tags
	}
	if updates.Mood != nil {
		log.Mood = *updates.Mood
	}
	log.UpdatedAt = now

	if err := logs.UpdateLog(ctx, log); err != nil {
		return nil, err
	}

	if updates.StartTime != nil || updates.EndTime != nil {
		patch := internal.UserPatch{
			LastStartTime: updates.StartTime,
			LastEndTime:   updates.EndTime,
			UpdatedAt:     &now,
		}
		if err := users.MergeUser(ctx, userID, patch); err != nil {
			return nil, err
		}
	}
	return log, nil
}

func DeleteLog(ctx context.Context, logs storage.LogRepository, userID, id string) error {
	if _, err := GetOwnedLog(ctx, logs, userID, id); err != nil {
		return err
	}
	return logs.DeleteLog(ctx, id)
}
