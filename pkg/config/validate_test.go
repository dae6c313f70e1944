package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{schedule: "@every 6h"},
		{schedule: "30 5 * * *"},
		{schedule: "@daily"},
		{schedule: "", wantErr: true},
		{schedule: "not a schedule", wantErr: true},
		{schedule: "* * * * * *", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(2, 1, 50))
	assert.NoError(t, ValidateIntRange(1, 1, 1))
	assert.ErrorContains(t, ValidateIntRange(0, 1, 50), "below minimum")
	assert.ErrorContains(t, ValidateIntRange(51, 1, 50), "exceeds maximum")
	assert.ErrorContains(t, ValidateIntRange(5, 10, 1), "invalid range")
}

func TestValidateDurations(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Second))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))

	assert.NoError(t, ValidateDurationRange(10*time.Second, time.Second, time.Minute))
	assert.Error(t, ValidateDurationRange(2*time.Minute, time.Second, time.Minute))
	assert.Error(t, ValidateDurationRange(time.Second, time.Minute, time.Second))
}
