package validators

import (
	"time"

	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/utils"
	"github.com/go-playground/validator/v10"
)

const TimeOfDayLayout = "15:04"

// IsTimeOfDay accepts "HH:mm" 24-hour values.
func IsTimeOfDay(fl validator.FieldLevel) bool {
	_, err := time.Parse(TimeOfDayLayout, fl.Field().String())
	return err == nil
}

// IsWeekday accepts the weekday names used as WeeklySchedule keys.
func IsWeekday(fl validator.FieldLevel) bool {
	return entity.IsWeekday(fl.Field().String())
}

// IsSlotTime accepts a slot either as RFC3339 or as "2006-01-02T15:04".
func IsSlotTime(fl validator.FieldLevel) bool {
	_, err := utils.ParseSlotTime(fl.Field().String(), time.UTC)
	return err == nil
}

// Register installs every custom tag on validate.
func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("hhmm", IsTimeOfDay)
	_ = validate.RegisterValidation("weekday", IsWeekday)
	_ = validate.RegisterValidation("slottime", IsSlotTime)
}
