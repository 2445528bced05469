package controller

import (
	"errors"
	"net/http"

	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service sentinel errors onto the HTTP surface.
// Unrecognized errors are logged and become 500s.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExamNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrExamNotVisible),
		errors.Is(err, util.ErrResultsHidden):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrTimeExpired):
		util.ErrorData(ctx, http.StatusBadRequest, err.Error(), gin.H{"expired": true})
	case errors.Is(err, util.ErrExamNotYetOpen),
		errors.Is(err, util.ErrExamWindowClosed),
		errors.Is(err, util.ErrAlreadyCompleted),
		errors.Is(err, util.ErrWarnedOut),
		errors.Is(err, util.ErrNoActiveSession),
		errors.Is(err, util.ErrNotReopenable),
		errors.Is(err, util.ErrNotAnswerable),
		errors.Is(err, util.ErrAudioNotAllowed),
		errors.Is(err, util.ErrInvalidTimeWindow):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
