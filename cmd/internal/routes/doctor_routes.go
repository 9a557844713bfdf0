package routes

import (
	"context"
	"net/http"
	"strings"

	"eclinic/cmd/internal/service"
	"eclinic/cmd/internal/utils"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type DoctorService interface {
	GetDoctors(ctx context.Context) ([]*service.DoctorResponse, apierror.ErrorResponse)
	GetDoctor(ctx context.Context, id string) (*service.DoctorResponse, apierror.ErrorResponse)
}

type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, doctorID string) (*service.AvailabilityResponse, apierror.ErrorResponse)
}

type ScheduleService interface {
	UpdateSchedule(ctx context.Context, doctorID string, req *service.ScheduleRequest, caller *utils.TokenData) (*service.ScheduleResponse, apierror.ErrorResponse)
}

type DefaultDoctorRoute struct {
	DoctorService       DoctorService
	AvailabilityService AvailabilityService
	ScheduleService     ScheduleService
}

func NewDoctorDefault(doctors DoctorService, slots AvailabilityService, schedules ScheduleService) *DefaultDoctorRoute {
	return &DefaultDoctorRoute{DoctorService: doctors, AvailabilityService: slots, ScheduleService: schedules}
}

func (d *DefaultDoctorRoute) GetDoctors(c echo.Context) error {
	doctors, apierr := d.DoctorService.GetDoctors(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"doctors": doctors}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDoctorRoute) GetDoctor(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	doctor, apierr := d.DoctorService.GetDoctor(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, doctor)
}

func (d *DefaultDoctorRoute) GetSlots(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	slots, apierr := d.AvailabilityService.GetAvailableSlots(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, slots)
}

func (d *DefaultDoctorRoute) UpdateSchedule(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	var req service.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	schedule, apierr := d.ScheduleService.UpdateSchedule(c.Request().Context(), id, &req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, schedule)
}
