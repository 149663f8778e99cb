package http

import (
	"time"

	"github.com/explore-grabby/booking-backend/internal/entity"
)

const (
	defaultImageURL = "/v1/entities/default-image"
)

type EntityResponse struct {
	ID          string      `json:"id"`
	Kind        entity.Kind `json:"kind"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Archived    bool        `json:"archived"`
	ConsoleType *string     `json:"console_type,omitempty"`
	Color       *string     `json:"color,omitempty"`
	HasImage    bool        `json:"has_image"`
	ImageURL    string      `json:"image_url"`
	CreatedAt   time.Time   `json:"created_at"`
}

func NewEntityResponse(e *entity.Entity, hasImage bool) EntityResponse {
	resp := EntityResponse{
		ID:          e.ID,
		Kind:        e.Kind(),
		Name:        e.Name,
		Description: e.Description,
		Archived:    e.Archived,
		HasImage:    hasImage,
		ImageURL:    defaultImageURL,
		CreatedAt:   e.CreatedAt,
	}
	if hasImage {
		resp.ImageURL = "/v1/entities/" + e.ID + "/image"
	}

	switch d := e.Details.(type) {
	case entity.Game:
		resp.ConsoleType = &d.ConsoleType
	case entity.Console:
		resp.Color = &d.Color
	case entity.ConsoleAccessory:
		resp.ConsoleType = &d.ConsoleType
		resp.Color = &d.Color
	}
	return resp
}

type ListEntitiesRequest struct {
	Kind string `form:"kind"`
	// Archived is "false" (default), "true" or "all".
	Archived string `form:"archived"`
}

type CreateEntityRequest struct {
	Kind        string `json:"kind" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ConsoleType string `json:"console_type"`
	Color       string `json:"color"`
}

// UpdateEntityRequest changes only the fields present. Variant fields are
// merged into the entity's current details.
type UpdateEntityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ConsoleType *string `json:"console_type"`
	Color       *string `json:"color"`
}

func detailsFor(kind entity.Kind, consoleType, color string) entity.Details {
	switch kind {
	case entity.KindGame:
		return entity.Game{ConsoleType: consoleType}
	case entity.KindConsole:
		return entity.Console{Color: color}
	case entity.KindConsoleAccessory:
		return entity.ConsoleAccessory{Color: color, ConsoleType: consoleType}
	}
	return nil
}

// mergeDetails applies the optional variant fields of body to current.
// It returns nil when body carries none.
func (body UpdateEntityRequest) mergeDetails(current entity.Details) entity.Details {
	if body.ConsoleType == nil && body.Color == nil {
		return nil
	}
	var consoleType, color string
	switch d := current.(type) {
	case entity.Game:
		consoleType = d.ConsoleType
	case entity.Console:
		color = d.Color
	case entity.ConsoleAccessory:
		consoleType, color = d.ConsoleType, d.Color
	}
	if body.ConsoleType != nil {
		consoleType = *body.ConsoleType
	}
	if body.Color != nil {
		color = *body.Color
	}
	return detailsFor(current.Kind(), consoleType, color)
}
