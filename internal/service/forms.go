package service

import "yatube/internal/models"

func newFormError() *models.AppError {
	return models.NewValidationError("Please correct the errors below.")
}

// collect copies the field messages of a validation error into form. Any
// other error is handed back to the caller.
func collect(form *models.AppError, err error) error {
	if err == nil {
		return nil
	}
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Code != models.CodeValidation {
		return err
	}
	if len(appErr.Fields) == 0 {
		form.WithField(models.NonFieldErrors, appErr.Message)
	}
	for field, msg := range appErr.Fields {
		form.WithField(field, msg)
	}
	return nil
}
