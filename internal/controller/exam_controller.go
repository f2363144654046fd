package controller

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	Session *service.ExamSessionService
	Grading *service.GradingService
	Result  *service.ResultService
}

func NewExamController(session *service.ExamSessionService, grading *service.GradingService, result *service.ResultService) *ExamController {
	return &ExamController{
		Session: session,
		Grading: grading,
		Result:  result,
	}
}

type startTestRequest struct {
	TestID uint `json:"test_id" binding:"required"`
}

// @Summary Start a timed test attempt
// @Tags exams
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body startTestRequest true "test to start"
// @Success 200 {object} service.SessionView
// @Failure 400 {object} util.ErrorBody
// @Router /exams/start [post]
func (c *ExamController) StartTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req startTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Session.StartAttempt(ctx.Request.Context(), user.UserID, req.TestID)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type submitTestRequest struct {
	TestID  uint                  `json:"test_id" binding:"required"`
	Answers []service.AnswerInput `json:"answers" binding:"required,min=1,dive"`
}

// @Summary Submit one or more answers for an open attempt
// @Tags exams
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body submitTestRequest true "answers"
// @Success 200 {object} service.SubmitResult
// @Failure 400 {object} util.ErrorBody
// @Router /exams/submit [post]
func (c *ExamController) SubmitTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Grading.SubmitAnswers(ctx.Request.Context(), user.UserID, req.TestID, req.Answers)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Get the graded result of an attempt
// @Tags exams
// @Produce json
// @Security ApiKeyAuth
// @Param test_id query int true "test id"
// @Param user_id query int false "user id, teacher/admin only"
// @Success 200 {object} service.ResultView
// @Failure 400 {object} util.ErrorBody
// @Router /exams/result [get]
func (c *ExamController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	testID := util.ParseUintOrZero(ctx.Query("test_id"))
	if testID == 0 {
		util.BadRequest(ctx, "test_id is required")
		return
	}

	userID := user.UserID
	if raw := ctx.Query("user_id"); raw != "" {
		requested := util.ParseUintOrZero(raw)
		// students may only read their own result
		if requested != user.UserID && user.Role == model.Student {
			util.Forbidden(ctx)
			return
		}
		userID = requested
	}

	view, err := c.Result.GetResult(ctx.Request.Context(), userID, testID)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary List tests whose window is currently open
// @Tags exams
// @Produce json
// @Security ApiKeyAuth
// @Param course_id query int false "narrow to one course"
// @Success 200 {object} gin.H
// @Router /exams/active [get]
func (c *ExamController) ListActiveTests(ctx *gin.Context) {
	courseID := util.ParseUintOrZero(ctx.Query("course_id"))

	tests, err := c.Session.ListActiveTests(courseID)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"tests": tests})
}

// @Summary List every attempt at a test
// @Tags exams
// @Produce json
// @Security ApiKeyAuth
// @Param testId path int true "test id"
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} gin.H
// @Router /exams/{testId}/results [get]
func (c *ExamController) ListTestResults(ctx *gin.Context) {
	testID := util.ParseUintOrZero(ctx.Param("testId"))
	if testID == 0 {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	rows, total, err := c.Result.ListTestResults(testID, page, limit)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": rows, "total": total})
}
