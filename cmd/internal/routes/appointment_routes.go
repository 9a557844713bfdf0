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

type AppointmentService interface {
	GetAppointments(ctx context.Context, subId string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	CreateAppointment(ctx context.Context, req *service.AppointmentRequest, subId string) (*service.AppointmentResponse, apierror.ErrorResponse)
	CancelAppointment(ctx context.Context, id string, issuerSub string) (*service.AppointmentResponse, apierror.ErrorResponse)
	UpdatePreparation(ctx context.Context, id string, req *service.PreparationRequest, issuerSub string) (*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	appts, apierr := a.AppointmentService.GetAppointments(c.Request().Context(), data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	appt, apierr := a.AppointmentService.CreateAppointment(c.Request().Context(), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (a *DefaultAppointmentRoute) CancelAppointment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	appt, apierr := a.AppointmentService.CancelAppointment(c.Request().Context(), id, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) UpdatePreparation(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	var req service.PreparationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	appt, apierr := a.AppointmentService.UpdatePreparation(c.Request().Context(), id, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}
