package controller

import (
	"encoding/json"
	"mime/multipart"
	"strconv"

	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamAdminController struct {
	Service *service.ExamAdminService
}

func NewExamAdminController(svc *service.ExamAdminService) *ExamAdminController {
	return &ExamAdminController{Service: svc}
}

// @Summary Create exam
// @Tags Exam Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamReq true "Exam fields"
// @Success 201 {object} util.Response
// @Router /api/admin/exams [post]
func (c *ExamAdminController) CreateExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.Service.CreateExam(&req, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// @Summary List exams
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/exams [get]
func (c *ExamAdminController) ListExams(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	exams, total, err := c.Service.ListExams(page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	util.Success(ctx, gin.H{"items": exams, "total": total})
}

// @Summary Get exam with questions
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId} [get]
func (c *ExamAdminController) GetExam(ctx *gin.Context) {
	detail, err := c.Service.GetExamDetail(util.MustParseUint(ctx.Param("testId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary Update exam
// @Tags Exam Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param body body service.ExamReq true "Fields to change"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId} [put]
func (c *ExamAdminController) UpdateExam(ctx *gin.Context) {
	var req service.ExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.Service.UpdateExam(util.MustParseUint(ctx.Param("testId")), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary Delete exam and all its submissions
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId} [delete]
func (c *ExamAdminController) DeleteExam(ctx *gin.Context) {
	if err := c.Service.DeleteExam(util.MustParseUint(ctx.Param("testId"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// bindQuestionReq reads a question from either multipart form fields or a
// JSON body, returning the optional audio upload alongside.
func bindQuestionReq(ctx *gin.Context) (*service.QuestionReq, *multipart.FileHeader, error) {
	contentType := ctx.ContentType()
	if contentType == "multipart/form-data" {
		var req service.QuestionReq
		if v, ok := ctx.GetPostForm("type"); ok {
			req.Type = &v
		}
		if v, ok := ctx.GetPostForm("data"); ok {
			req.Data = json.RawMessage(v)
		}
		if v, ok := ctx.GetPostForm("points"); ok {
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, nil, err
			}
			req.Points = &p
		}
		if v, ok := ctx.GetPostForm("audio_url"); ok {
			req.AudioURL = &v
		}
		file, err := ctx.FormFile("audio")
		if err != nil {
			file = nil
		}
		return &req, file, nil
	}

	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, nil, err
	}
	return &req, nil, nil
}

// @Summary Add question
// @Tags Exam Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param type formData string true "Question type"
// @Param data formData string true "Type-specific JSON payload"
// @Param points formData number false "Points"
// @Param audio formData file false "Audio attachment"
// @Param audio_url formData string false "Direct audio link"
// @Success 201 {object} util.Response
// @Router /api/admin/exams/{testId}/questions [post]
func (c *ExamAdminController) AddQuestion(ctx *gin.Context) {
	req, file, err := bindQuestionReq(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(ctx.Request.Context(), util.MustParseUint(ctx.Param("testId")), req, file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary Update question
// @Tags Exam Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param questionId path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/questions/{questionId} [put]
func (c *ExamAdminController) UpdateQuestion(ctx *gin.Context) {
	req, file, err := bindQuestionReq(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(ctx.Request.Context(),
		util.MustParseUint(ctx.Param("testId")),
		util.MustParseUint(ctx.Param("questionId")),
		req, file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Delete question
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param questionId path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/questions/{questionId} [delete]
func (c *ExamAdminController) DeleteQuestion(ctx *gin.Context) {
	err := c.Service.DeleteQuestion(
		util.MustParseUint(ctx.Param("testId")),
		util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Reorder questions
// @Tags Exam Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param body body object true "Complete question id list in new order"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/questions/reorder [put]
func (c *ExamAdminController) ReorderQuestions(ctx *gin.Context) {
	var req struct {
		QuestionIDs []uint `json:"questionIds" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.ReorderQuestions(util.MustParseUint(ctx.Param("testId")), req.QuestionIDs); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Grant exam visibility
// @Tags Exam Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param body body service.VisibilityReq true "Batch and user grants"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/visibility [post]
func (c *ExamAdminController) SetVisibility(ctx *gin.Context) {
	var req service.VisibilityReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SetVisibility(util.MustParseUint(ctx.Param("testId")), &req); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List visibility rules
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/visibility [get]
func (c *ExamAdminController) GetVisibility(ctx *gin.Context) {
	rules, err := c.Service.GetVisibility(util.MustParseUint(ctx.Param("testId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rules)
}

// @Summary Remove a visibility rule
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param ruleId path int true "Rule ID"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/visibility/{ruleId} [delete]
func (c *ExamAdminController) RemoveVisibility(ctx *gin.Context) {
	err := c.Service.RemoveVisibility(
		util.MustParseUint(ctx.Param("testId")),
		util.MustParseUint(ctx.Param("ruleId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List submissions for an exam
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Exam ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Param status query string false "Filter by submission status"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{testId}/submissions [get]
func (c *ExamAdminController) ListSubmissions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	status := ctx.Query("status")

	rows, total, err := c.Service.ListSubmissions(util.MustParseUint(ctx.Param("testId")), page, limit, status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": rows, "total": total})
}

// @Summary Reopen a closed submission
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} util.Response
// @Router /api/admin/submissions/{submissionId}/reopen [post]
func (c *ExamAdminController) ReopenSubmission(ctx *gin.Context) {
	sub, err := c.Service.ReopenSubmission(util.MustParseUint(ctx.Param("submissionId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// @Summary Reset a submission for a fresh attempt
// @Tags Exam Admin
// @Produce json
// @Security BearerAuth
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} util.Response
// @Router /api/admin/submissions/{submissionId}/reset [post]
func (c *ExamAdminController) ResetSubmission(ctx *gin.Context) {
	sub, err := c.Service.ResetSubmission(util.MustParseUint(ctx.Param("submissionId")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
