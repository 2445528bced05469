package controller

import (
	"encoding/json"
	"time"

	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamStudentController struct {
	Service *service.ExamStudentService
}

func NewExamStudentController(svc *service.ExamStudentService) *ExamStudentController {
	return &ExamStudentController{Service: svc}
}

// @Summary List exams visible to the caller
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/exams/visible [get]
func (c *ExamStudentController) VisibleExams(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.Service.VisibleExams(user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary Get exam info with the caller's attempt
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId} [get]
func (c *ExamStudentController) GetExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	info, err := c.Service.GetExamInfo(user.UserID, util.MustParseUint(ctx.Param("testId")), time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

// @Summary Start or resume an exam attempt
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId}/start [post]
func (c *ExamStudentController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	payload, err := c.Service.Start(user.UserID, util.MustParseUint(ctx.Param("testId")), time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, payload)
}

// @Summary Remaining time for the caller's attempt
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId}/time [get]
func (c *ExamStudentController) RemainingTime(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	remaining, expired, status, err := c.Service.RemainingTime(user.UserID, util.MustParseUint(ctx.Param("testId")), time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"remainingSeconds": remaining,
		"expired":          expired,
		"status":           status,
	})
}

// @Summary Save one answer
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param body body object true "questionId and answer"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId}/answer [post]
func (c *ExamStudentController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		QuestionID uint            `json:"questionId" binding:"required"`
		Answer     json.RawMessage `json:"answer" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.Service.SaveAnswer(user.UserID, util.MustParseUint(ctx.Param("testId")), req.QuestionID, req.Answer, time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Report a proctoring violation
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId}/warning [post]
func (c *ExamStudentController) RecordWarning(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	outcome, err := c.Service.RecordWarning(user.UserID, util.MustParseUint(ctx.Param("testId")), time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}

// @Summary Submit the attempt for grading
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId}/submit [post]
func (c *ExamStudentController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.Service.Submit(user.UserID, util.MustParseUint(ctx.Param("testId")), time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// @Summary Graded result for the caller's attempt
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{testId}/result [get]
func (c *ExamStudentController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetResult(user.UserID, util.MustParseUint(ctx.Param("testId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
