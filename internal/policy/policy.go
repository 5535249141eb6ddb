// Package policy decides whether a caller may perform an action.
// It is pure: callers load the subject and target and pass them in.
package policy

import "github.com/reelscore/backend/internal/apperror"

type Action string

const (
	ActionRegister          Action = "register"
	ActionLogin             Action = "login"
	ActionViewMovie         Action = "view_movie"
	ActionListRatings       Action = "list_ratings"
	ActionSubmitRating      Action = "submit_rating"
	ActionUpdateRating      Action = "update_rating"
	ActionDeleteOwnRating   Action = "delete_own_rating"
	ActionAddMovie          Action = "add_movie"
	ActionAdminDeleteRating Action = "admin_delete_rating"
	ActionUploadImage       Action = "upload_image"
)

const (
	ReasonAllow                  = "allow"
	ReasonAuthenticationRequired = "authentication required"
	ReasonUserNotFound           = "user not found"
	ReasonAdminsCannotRate       = "admins cannot rate"
	ReasonNotFound               = "not found"
	ReasonAdminAccessRequired    = "admin access required"
)

// Subject is the acting identity as known to the credential store.
type Subject struct {
	Authenticated bool
	// Found is false when the token is valid but the user no longer exists.
	Found   bool
	UserID  uint
	IsAdmin bool
}

// Target is an existing rating the action applies to.
type Target struct {
	OwnerID uint
}

type Decision struct {
	Allowed bool
	Reason  string
	Err     *apperror.AppError
}

// Error returns nil for Allow and the client-facing error for Deny.
func (d Decision) Error() error {
	if d.Allowed {
		return nil
	}
	return d.Err
}

var public = map[Action]bool{
	ActionRegister:    true,
	ActionLogin:       true,
	ActionViewMovie:   true,
	ActionListRatings: true,
}

var ratingActions = map[Action]string{
	ActionSubmitRating:    "Admins cannot submit ratings",
	ActionUpdateRating:    "Admins cannot update ratings",
	ActionDeleteOwnRating: "Admins cannot delete ratings",
}

var adminActions = map[Action]bool{
	ActionAddMovie:          true,
	ActionAdminDeleteRating: true,
}

// Evaluate applies the rules in order; the first match wins. The admin check on
// rating actions runs before any existence or ownership check.
func Evaluate(subject Subject, action Action, target *Target) Decision {
	if public[action] {
		return allow()
	}

	if !subject.Authenticated {
		return deny(ReasonAuthenticationRequired, apperror.Unauthenticated("Authentication required"))
	}
	if !subject.Found {
		return deny(ReasonUserNotFound, apperror.NotFound("User"))
	}

	if message, ok := ratingActions[action]; ok && subject.IsAdmin {
		return deny(ReasonAdminsCannotRate, apperror.Forbidden(message))
	}

	// Someone else's rating is reported exactly like a missing one.
	if action == ActionDeleteOwnRating && target != nil && target.OwnerID != subject.UserID {
		return deny(ReasonNotFound, apperror.NotFound("Rating"))
	}

	if adminActions[action] && !subject.IsAdmin {
		return deny(ReasonAdminAccessRequired, apperror.Forbidden("Admin access required"))
	}

	return allow()
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonAllow}
}

func deny(reason string, err *apperror.AppError) Decision {
	return Decision{Allowed: false, Reason: reason, Err: err}
}
