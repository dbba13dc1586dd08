package controller

import (
	"errors"
	"strconv"

	"skillorbit_backend/internal/grading"
	"skillorbit_backend/internal/service"
	"skillorbit_backend/internal/util"
	"skillorbit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type SharedContentController struct {
	Service *service.SharedContentService
}

func NewSharedContentController(svc *service.SharedContentService) *SharedContentController {
	return &SharedContentController{Service: svc}
}

// respondError translates the typed outcomes of the distribution engine into
// the response taxonomy: 400 malformed, 403 not authorized for the training,
// 404 nothing shared yet, 409 authorship clash, 410 terminal lock.
func respondError(ctx *gin.Context, err error) {
	var conflict *util.ConflictError
	var validation *util.ValidationError
	switch {
	case errors.As(err, &conflict):
		util.Conflict(ctx, conflict.Error(), conflict.ExistingAuthor)
	case errors.As(err, &validation):
		util.BadRequest(ctx, validation.Message)
	case errors.Is(err, grading.ErrShapeMismatch):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrNotTrainerForTraining),
		errors.Is(err, util.ErrTrainingNotAssigned),
		errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx, err.Error())
	case errors.Is(err, util.ErrTrainingNotFound),
		errors.Is(err, util.ErrAssignmentNotShared),
		errors.Is(err, util.ErrFeedbackNotShared),
		errors.Is(err, util.ErrNotSubmittedYet):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrSubmissionLocked):
		util.Gone(ctx, err.Error())
	case errors.Is(err, util.ErrFeedbackAlreadySubmitted):
		util.Error(ctx, 409, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func trainingIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("trainingId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid training id")
		return 0, false
	}
	return uint(id), true
}

// ShareAssignment godoc
// @Summary Publish the assignment for a training
// @Description First writer wins authorship; the same trainer may republish to edit. A different trainer gets 409 with the existing author.
// @Tags Shared Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ShareAssignmentReq true "Assignment content"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/shared-content/assignments [post]
func (c *SharedContentController) ShareAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ShareAssignmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rec, err := c.Service.PublishAssignment(user.Username, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, rec)
}

// OpenAssignmentForTrainer godoc
// @Summary Check a training's shared assignment as a trainer
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/shared-content/trainer/assignments/{trainingId} [get]
func (c *SharedContentController) OpenAssignmentForTrainer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.OpenAssignmentForTrainer(trainingID, user.Username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ShareFeedback godoc
// @Summary Publish the feedback form for a training
// @Tags Shared Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ShareFeedbackReq true "Custom feedback questions"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/shared-content/feedback [post]
func (c *SharedContentController) ShareFeedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ShareFeedbackReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rec, err := c.Service.PublishFeedback(user.Username, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, rec)
}

// OpenFeedbackForTrainer godoc
// @Summary Check a training's shared feedback form as a trainer
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/shared-content/trainer/feedback/{trainingId} [get]
func (c *SharedContentController) OpenFeedbackForTrainer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.OpenFeedbackForTrainer(trainingID, user.Username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ListSubmissions godoc
// @Summary List recorded exam submissions for a training
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/shared-content/assignments/{trainingId}/submissions [get]
func (c *SharedContentController) ListSubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	subs, err := c.Service.ListSubmissions(trainingID, user.Username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": subs, "total": len(subs)})
}

// ListFeedbackResponses godoc
// @Summary List feedback responses for a training
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/shared-content/feedback/{trainingId}/responses [get]
func (c *SharedContentController) ListFeedbackResponses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	responses, err := c.Service.ListFeedbackResponses(trainingID, user.Username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": responses, "total": len(responses)})
}

// StartExam godoc
// @Summary Open a training's exam as an assigned employee
// @Description Returns the question set with answer keys stripped, the completed state when locked at 100, or 404 when nothing is shared yet.
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/shared-content/assignments/{trainingId} [get]
func (c *SharedContentController) StartExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	result, err := c.Service.StartExam(user.Username, trainingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SubmitExam godoc
// @Summary Submit exam answers and receive the graded result
// @Tags Shared Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubmitExamReq true "Positional answers"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 410 {object} util.Response
// @Router /api/shared-content/assignments/submit [post]
func (c *SharedContentController) SubmitExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.SubmitExam(user.Username, req)
	if err != nil {
		monitoring.SubmissionCounter.WithLabelValues("rejected").Inc()
		respondError(ctx, err)
		return
	}
	outcome := "graded"
	if view.Score == 100 {
		outcome = "perfect"
	}
	monitoring.SubmissionCounter.WithLabelValues(outcome).Inc()
	util.Created(ctx, view)
}

// ViewResult godoc
// @Summary View the stored exam result for a training
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/shared-content/assignments/{trainingId}/result [get]
func (c *SharedContentController) ViewResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.ViewResult(user.Username, trainingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetFeedbackForm godoc
// @Summary Fetch a training's feedback form as an assigned employee
// @Tags Shared Content
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/shared-content/feedback/{trainingId} [get]
func (c *SharedContentController) GetFeedbackForm(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	trainingID, ok := trainingIDParam(ctx)
	if !ok {
		return
	}

	form, err := c.Service.GetFeedbackForm(user.Username, trainingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, form)
}

// SubmitFeedback godoc
// @Summary Submit a feedback response (one per training, no retakes)
// @Tags Shared Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubmitFeedbackReq true "Feedback responses"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/shared-content/feedback/submit [post]
func (c *SharedContentController) SubmitFeedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitFeedbackReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.SubmitFeedback(user.Username, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}
