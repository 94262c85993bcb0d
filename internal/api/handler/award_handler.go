package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/dto"
	"github.com/vEnhance/atheweb/internal/service"
	pkgerrors "github.com/vEnhance/atheweb/pkg/errors"
	"github.com/vEnhance/atheweb/pkg/response"
)

// AwardHandler 学院积分模块 HTTP 处理器
type AwardHandler struct {
	awardSvc service.AwardService
}

// NewAwardHandler 创建 AwardHandler
func NewAwardHandler(awardSvc service.AwardService) *AwardHandler {
	return &AwardHandler{awardSvc: awardSvc}
}

// Leaderboard 学院积分榜；semester 为空时取最新学期
// GET /api/v1/house-points/leaderboard?semester=xxx
func (h *AwardHandler) Leaderboard(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	board, err := h.awardSvc.Leaderboard(c.Request.Context(), caller, c.Query("semester"))
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, board)
}

// HouseDetail 学院分类明细；非员工只能查看本人学院
// GET /api/v1/house-points/houses/:house?semester=xxx
func (h *AwardHandler) HouseDetail(c *gin.Context) {
	house := c.Param("house")
	if house == "" {
		response.BadRequest(c, 10001, "house is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	detail, err := h.awardSvc.HouseDetail(c.Request.Context(), caller, c.Query("semester"), house)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, detail)
}

// HouseMatrix 员工视图：学院内学生 × 分类矩阵
// GET /api/v1/house-points/houses/:house/matrix?semester=xxx
func (h *AwardHandler) HouseMatrix(c *gin.Context) {
	house := c.Param("house")
	if house == "" {
		response.BadRequest(c, 10001, "house is required")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	matrix, err := h.awardSvc.HouseMatrix(c.Request.Context(), caller, c.Query("semester"), house)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, matrix)
}

// MyAwards 本人各学期积分概览
// GET /api/v1/house-points/awards/my
func (h *AwardHandler) MyAwards(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	awards, err := h.awardSvc.MyAwards(c.Request.Context(), caller)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, gin.H{"list": awards})
}

// List 奖励分页列表（管理端）
// GET /api/v1/house-points/awards?semester_id=xxx&page=1&page_size=20
func (h *AwardHandler) List(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semester_id is required")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "invalid pagination parameters")
		return
	}

	awards, total, err := h.awardSvc.List(c.Request.Context(), semesterID, &page)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OKPage(c, awards, total, page.GetPage(), page.GetPageSize())
}

// Create 创建奖励
// POST /api/v1/house-points/awards
func (h *AwardHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	award, err := h.awardSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.Created(c, award)
}

// Update 更新奖励
// PUT /api/v1/house-points/awards/:id
func (h *AwardHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "award id is required")
		return
	}

	var req dto.UpdateAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	award, err := h.awardSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, award)
}

// Delete 删除奖励
// DELETE /api/v1/house-points/awards/:id
func (h *AwardHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "award id is required")
		return
	}

	if err := h.awardSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, nil)
}

// BulkAward 按名单批量加分（当前学期）
// POST /api/v1/house-points/awards/bulk
func (h *AwardHandler) BulkAward(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.BulkAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.awardSvc.BulkAward(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAwardError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *AwardHandler) handleAwardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAwardNotFound):
		response.NotFound(c, 15001, "award not found")
	case errors.Is(err, service.ErrInvalidHouse):
		response.BadRequest(c, 15002, "invalid house")
	case errors.Is(err, service.ErrInvalidAwardType):
		response.BadRequest(c, 15003, "invalid award type")
	case errors.Is(err, service.ErrInvalidAwardedAt):
		response.BadRequest(c, 15004, "awarded_at must be in RFC 3339 format")
	case errors.Is(err, service.ErrStudentNoHouse):
		response.BadRequest(c, 15005, "student has no house assignment")
	case errors.Is(err, service.ErrHouseMismatch):
		response.BadRequest(c, 15006, "house does not match the student's house")
	case errors.Is(err, service.ErrStudentSemesterMismatch):
		response.BadRequest(c, 15007, "student is not enrolled in this semester")
	case errors.Is(err, service.ErrAwardTargetRequired):
		response.BadRequest(c, 15008, "award requires a student or a house")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 15009, "semester not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 15010, "student not found")
	case errors.Is(err, service.ErrNoActiveSemester):
		response.NotFound(c, 15011, "no active semester found")
	case errors.Is(err, service.ErrMultipleActiveSemesters):
		response.BadRequest(c, 15012, "multiple active semesters found")
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.Forbidden(c, 10003, "permission denied")
	default:
		response.InternalError(c)
	}
}
