package tracker

import (
	"fmt"
	"unicode/utf8"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

const (
	titleMinLen       = 5
	titleMaxLen       = 100
	descriptionMinLen = 10
)

func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < titleMinLen || length > titleMaxLen {
		return apperrors.NewFieldValidationError(string(domain.FieldTitle),
			fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen))
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) < descriptionMinLen {
		return apperrors.NewFieldValidationError(string(domain.FieldDescription),
			fmt.Sprintf("description must be at least %d characters", descriptionMinLen))
	}
	return nil
}

func errFieldRequired(field domain.TicketField) error {
	return apperrors.NewFieldValidationError(string(field), fmt.Sprintf("%s is required", field))
}

func errInvalidEnum(field domain.TicketField, value string) error {
	return apperrors.NewFieldValidationError(string(field), fmt.Sprintf("invalid %s value %q", field, value))
}

func errCommentEmpty() error {
	return apperrors.NewFieldValidationError("body", "comment body must not be empty")
}
