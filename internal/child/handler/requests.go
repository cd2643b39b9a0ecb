package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"cradle/internal/child"
	"cradle/internal/child/service"
	dErrors "cradle/pkg/domainerrors"
)

const dateLayout = "2006-01-02"

type registerRequest struct {
	Name          string   `json:"name"`
	BirthDate     string   `json:"birth_date"`
	Gender        string   `json:"gender"`
	WeightAtBirth *float64 `json:"weight_at_birth"`
	HeightAtBirth *float64 `json:"height_at_birth"`
	BloodType     *string  `json:"blood_type"`
	Notes         string   `json:"notes"`
	GuardianID    int64    `json:"guardian_id"`
}

func decodeRegisterRequest(r *http.Request) (service.RegisterInput, error) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.RegisterInput{}, dErrors.New(dErrors.CodeValidation, "invalid request body")
	}
	input := service.RegisterInput{
		Name:          req.Name,
		Gender:        req.Gender,
		WeightAtBirth: req.WeightAtBirth,
		HeightAtBirth: req.HeightAtBirth,
		BloodType:     req.BloodType,
		Notes:         req.Notes,
		GuardianID:    req.GuardianID,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse(dateLayout, req.BirthDate)
		if err != nil {
			return service.RegisterInput{}, dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
		}
		input.BirthDate = birthDate
	}
	return input, nil
}

type assignRequest struct {
	ChildID       *int64  `json:"child_id"`
	Identifier    *string `json:"identifier"`
	GuardianID    int64   `json:"guardian_id"`
	NewIdentifier *string `json:"new_identifier"`
}

func decodeAssignRequest(r *http.Request) (service.AssignInput, error) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.AssignInput{}, dErrors.New(dErrors.CodeValidation, "invalid request body")
	}
	return service.AssignInput{
		ChildID:       req.ChildID,
		Identifier:    req.Identifier,
		GuardianID:    req.GuardianID,
		NewIdentifier: req.NewIdentifier,
	}, nil
}

// childBody renders a record the way the mobile app expects it, including the
// derived age fields.
func childBody(record child.Record, now time.Time) map[string]any {
	return map[string]any{
		"id":              record.ID,
		"name":            record.Name,
		"birth_date":      record.BirthDate.Format(dateLayout),
		"gender":          record.Gender,
		"weight_at_birth": record.WeightAtBirth,
		"height_at_birth": record.HeightAtBirth,
		"blood_type":      record.BloodType,
		"notes":           record.Notes,
		"guardian_id":     record.GuardianID,
		"unique_id":       record.Identifier,
		"age_in_days":     record.AgeInDays(now),
		"age_in_months":   record.AgeInMonths(now),
		"created_at":      record.CreatedAt,
	}
}
