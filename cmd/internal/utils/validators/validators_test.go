package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestCustomTags(t *testing.T) {
	v := validator.New()
	Register(v)

	tests := []struct {
		tag   string
		value string
		ok    bool
	}{
		{"hhmm", "09:30", true},
		{"hhmm", "23:59", true},
		{"hhmm", "24:00", false},
		{"hhmm", "9am", false},
		{"weekday", "Monday", true},
		{"weekday", "monday", false},
		{"weekday", "Mon", false},
		{"slottime", "2026-03-02T09:00", true},
		{"slottime", "2026-03-02T09:00:00+01:00", true},
		{"slottime", "2026-03-02", false},
	}
	for _, tt := range tests {
		err := v.Var(tt.value, tt.tag)
		assert.Equal(t, tt.ok, err == nil, "%s %q", tt.tag, tt.value)
	}
}
