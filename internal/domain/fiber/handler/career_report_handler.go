package handler

import (
	"time"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/dto"
	"github.com/fadilmartias/career-intel/internal/middleware"
	"github.com/fadilmartias/career-intel/internal/usecase"
	"github.com/fadilmartias/career-intel/internal/util"
	"github.com/gofiber/fiber/v2"
)

type CareerReportHandler struct {
	uc usecase.CareerReportUsecaseInterface
}

func NewCareerReportHandler(uc usecase.CareerReportUsecaseInterface) *CareerReportHandler {
	return &CareerReportHandler{uc: uc}
}

func (h *CareerReportHandler) RegisterRoutes(router fiber.Router) {
	reports := router.Group("/career-reports")
	reports.Post("/", middleware.RateLimiter(10, time.Minute), h.Ensure)
	reports.Get("/:candidateId", h.Fetch)
}

func (h *CareerReportHandler) Ensure(c *fiber.Ctx) error {
	var req dto.EnsureReportRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:      fiber.StatusBadRequest,
			ErrorCode: "INVALID_REQUEST_BODY",
			Message:   "invalid request body",
		}, err)
	}
	if ferr := util.ValidateStruct(&req); ferr != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:      fiber.StatusBadRequest,
			ErrorCode: domain.ErrorCode(domain.ErrCandidateIDRequired),
			Message:   "candidateId is required",
			Details:   ferr.Errors,
		}, ferr)
	}

	result, err := h.uc.EnsureReport(c.UserContext(), string(req.CandidateID), req.ForceRefresh)
	if err != nil {
		return util.DomainErrorResponse(c, "failed to generate career report", err)
	}

	code := fiber.StatusOK
	if result.Status == domain.StatusCreated {
		code = fiber.StatusCreated
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    code,
		Message: "career report " + string(result.Status),
		Data: dto.EnsureReportResponse{
			Status: result.Status,
			Report: dto.NewCareerReportDTO(result.Report),
		},
	})
}

func (h *CareerReportHandler) Fetch(c *fiber.Ctx) error {
	report, err := h.uc.FetchReport(c.UserContext(), c.Params("candidateId"))
	if err != nil {
		return util.DomainErrorResponse(c, "failed to get career report", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "success get career report",
		Data:    dto.NewCareerReportDTO(report),
	})
}
