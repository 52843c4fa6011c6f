package services

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthorized         = errors.New("invalid token")
	ErrPostNotFound         = errors.New("post not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrParentMismatch       = errors.New("parent comment belongs to another post")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrTagNotFound          = errors.New("tag not found")
	ErrAlreadyBookmarked    = errors.New("already bookmarked")
	ErrNotBookmarked        = errors.New("not bookmarked")
	ErrNotificationNotFound = errors.New("notification not found")
)

// InputError 带有面向用户提示的参数错误
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error {
	return &InputError{Msg: msg}
}
