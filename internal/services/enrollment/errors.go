package enrollment

import "errors"

var (
	ErrCourseInactive   = errors.New("course is not open for enrollment")
	ErrCourseFull       = errors.New("course is at capacity")
	ErrAlreadyRequested = errors.New("student already has an open enrollment for this course")
	ErrNotPending       = errors.New("enrollment is not pending")
	ErrNotOwner         = errors.New("enrollment belongs to another student")
)
