package controller

import (
	"errors"
	"strconv"

	"skillorbit_backend/internal/service"
	"skillorbit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TrainingController struct {
	Service *service.TrainingService
}

func NewTrainingController(svc *service.TrainingService) *TrainingController {
	return &TrainingController{Service: svc}
}

// CreateTraining godoc
// @Summary Create a training with its trainer bindings
// @Tags Trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.TrainingReq true "Training details"
// @Success 201 {object} util.Response
// @Router /api/trainings [post]
func (c *TrainingController) CreateTraining(ctx *gin.Context) {
	var req service.TrainingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	training, err := c.Service.CreateTraining(req)
	if err != nil {
		var validation *util.ValidationError
		if errors.As(err, &validation) {
			util.BadRequest(ctx, validation.Message)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, training)
}

// ListTrainings godoc
// @Summary List trainings
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/trainings [get]
func (c *TrainingController) ListTrainings(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	trainings, total, err := c.Service.ListTrainings(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": trainings, "total": total})
}

// GetTraining godoc
// @Summary Get a training
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id} [get]
func (c *TrainingController) GetTraining(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid training id")
		return
	}

	training, err := c.Service.GetTraining(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrTrainingNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, training)
}

// DeleteTraining godoc
// @Summary Delete a training and cascade-invalidate its content
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Training ID"
// @Success 200 {object} util.Response
// @Router /api/trainings/{id} [delete]
func (c *TrainingController) DeleteTraining(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid training id")
		return
	}

	if err := c.Service.DeleteTraining(uint(id)); err != nil {
		if errors.Is(err, util.ErrTrainingNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

// AssignTraining godoc
// @Summary Assign a training to an employee
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssignTrainingReq true "Assignment"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/assignments [post]
func (c *TrainingController) AssignTraining(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignTrainingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.Service.AssignTraining(user.Username, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAlreadyAssigned):
			util.Error(ctx, 409, err.Error())
		case errors.Is(err, util.ErrTrainingNotFound):
			util.NotFound(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, assignment)
}

// MyTrainings godoc
// @Summary List trainings assigned to the current employee
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/assignments/my [get]
func (c *TrainingController) MyTrainings(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	trainings, err := c.Service.MyTrainings(user.Username)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": trainings, "total": len(trainings)})
}

// TeamAssignments godoc
// @Summary List the current manager's team assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/assignments/team [get]
func (c *TrainingController) TeamAssignments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	assignments, err := c.Service.TeamAssignments(user.Username)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": assignments, "total": len(assignments)})
}

// UnassignTraining godoc
// @Summary Remove a training assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param trainingId path int true "Training ID"
// @Param employee path string true "Employee username"
// @Success 200 {object} util.Response
// @Router /api/assignments/{trainingId}/{employee} [delete]
func (c *TrainingController) UnassignTraining(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	trainingID, err := strconv.ParseUint(ctx.Param("trainingId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid training id")
		return
	}
	employee := ctx.Param("employee")

	if err := c.Service.UnassignTraining(user.Username, uint(trainingID), employee); err != nil {
		var validation *util.ValidationError
		if errors.As(err, &validation) {
			util.NotFound(ctx, validation.Message)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
