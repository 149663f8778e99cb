package entity

import (
	"net/http"
	"strings"
	"time"

	"github.com/explore-grabby/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "entity_not_found", "entity not found")
	ErrEmptyName      = apperror.New(http.StatusBadRequest, "empty_name", "name cannot be empty")
	ErrInvalidKind    = apperror.New(http.StatusBadRequest, "invalid_kind", "kind must be one of game, console, console_accessory")
	ErrKindMismatch   = apperror.New(http.StatusBadRequest, "kind_mismatch", "details do not match the entity kind")
	ErrMissingConsole = apperror.New(http.StatusBadRequest, "console_type_missing", "console type of a game may not be blank")
	ErrInUse          = apperror.New(http.StatusConflict, "entity_in_use", "entity still has bookings")
)

type Kind string

const (
	KindGame             Kind = "game"
	KindConsole          Kind = "console"
	KindConsoleAccessory Kind = "console_accessory"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindGame, KindConsole, KindConsoleAccessory:
		return k, nil
	}
	return "", ErrInvalidKind
}

// Details is the variant-specific payload of an Entity. It is implemented
// only by Game, Console and ConsoleAccessory.
type Details interface {
	Kind() Kind
	validate() error
}

type Game struct {
	ConsoleType string
}

func (Game) Kind() Kind { return KindGame }

func (g Game) validate() error {
	if strings.TrimSpace(g.ConsoleType) == "" {
		return ErrMissingConsole
	}
	return nil
}

type Console struct {
	Color string
}

func (Console) Kind() Kind { return KindConsole }

func (Console) validate() error { return nil }

type ConsoleAccessory struct {
	Color       string
	ConsoleType string
}

func (ConsoleAccessory) Kind() Kind { return KindConsoleAccessory }

func (ConsoleAccessory) validate() error { return nil }

// Entity is a single exclusively bookable unit.
type Entity struct {
	ID          string
	Name        string
	Description string
	Archived    bool
	CreatedAt   time.Time
	Details     Details
}

func (e *Entity) Kind() Kind {
	if e.Details == nil {
		return ""
	}
	return e.Details.Kind()
}

func (e *Entity) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.Details == nil {
		return ErrInvalidKind
	}
	return e.Details.validate()
}

// Filter defines parameters for listing entities.
type Filter struct {
	Kind     Kind
	Archived *bool
}

func (f Filter) Matches(e *Entity) bool {
	if f.Kind != "" && e.Kind() != f.Kind {
		return false
	}
	if f.Archived != nil && e.Archived != *f.Archived {
		return false
	}
	return true
}

// flatten maps Details onto the nullable columns used for storage and caching.
func flatten(d Details) (consoleType, color *string) {
	switch v := d.(type) {
	case Game:
		return &v.ConsoleType, nil
	case Console:
		return nil, &v.Color
	case ConsoleAccessory:
		return &v.ConsoleType, &v.Color
	}
	return nil, nil
}

// unflatten is the inverse of flatten.
func unflatten(kind Kind, consoleType, color *string) (Details, error) {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	switch kind {
	case KindGame:
		return Game{ConsoleType: deref(consoleType)}, nil
	case KindConsole:
		return Console{Color: deref(color)}, nil
	case KindConsoleAccessory:
		return ConsoleAccessory{Color: deref(color), ConsoleType: deref(consoleType)}, nil
	}
	return nil, ErrInvalidKind
}
