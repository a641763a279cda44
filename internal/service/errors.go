package service

import (
	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

// isRejection reports errors caused by the caller's input or the current
// state, as opposed to infrastructure failures.
func isRejection(err error) bool {
	return models.IsValidation(err) ||
		models.IsNotFound(err) ||
		models.IsDuplicateName(err) ||
		models.IsInsufficientStock(err) ||
		models.IsInvalidTransition(err)
}

// logFailure logs rejections at warn and everything else at error.
func logFailure(log *logger.Logger, msg string, err error, args ...interface{}) {
	args = append(args, "error", err)
	if isRejection(err) {
		log.Warn(msg, args...)
		return
	}
	log.Error(msg, args...)
}
