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

type ProfileService interface {
	GetPatient(ctx context.Context, rawId string, caller *utils.TokenData) (*service.PatientResponse, apierror.ErrorResponse)
	SaveProfile(ctx context.Context, req *service.ProfileRequest, caller *utils.TokenData) (*service.ProfileResponse, apierror.ErrorResponse)
}

type DefaultProfileRoute struct {
	ProfileService ProfileService
}

func NewProfileDefault(profileService ProfileService) *DefaultProfileRoute {
	return &DefaultProfileRoute{ProfileService: profileService}
}

// GetPatient accepts "@me" as the id of the caller.
func (p *DefaultProfileRoute) GetPatient(c echo.Context) error {
	rawId := strings.TrimSpace(c.Param("id"))
	if rawId == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	patient, apierr := p.ProfileService.GetPatient(c.Request().Context(), rawId, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, patient)
}

func (p *DefaultProfileRoute) SaveProfile(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.AuthenticationRequiredError)
	}

	var req service.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	profile, apierr := p.ProfileService.SaveProfile(c.Request().Context(), &req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, profile)
}
