package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/explore-grabby/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "user_not_found", "user not found")
	ErrSubjectMissing = apperror.New(http.StatusBadRequest, "subject_missing", "identity has no subject")
)

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	Subject    string
	GivenName  string
	FamilyName string
}

// User is the local record of an identity. ID is the provider's subject.
type User struct {
	ID         string
	GivenName  string
	FamilyName string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.GivenName + " " + u.FamilyName)
}
