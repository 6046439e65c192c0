package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

// fieldErrors returns the per-field messages a validation error carries
func (s *ValidationTestSuite) fieldErrors(err error) map[string][]string {
	var e *errors.Error
	s.Require().True(errors.As(err, &e))
	fields, ok := e.Meta["validation_errors"].(map[string][]string)
	s.Require().True(ok)
	return fields
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.Field("name", "is required").
		Fieldf("level", "must be between %d and %d", 1, 20).
		RequiredField("class")

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().Contains(err.Error(), "name: is required")
	s.Assert().Contains(err.Error(), "level: must be between 1 and 20")

	fields := s.fieldErrors(err)
	s.Assert().Equal([]string{"is required"}, fields["class"])
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	vb := errors.NewValidationBuilder()
	err := vb.Build()
	s.Assert().Nil(err)
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "test", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"valid with spaces", "  test  ", false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("field", tc.value, vb)
			err := vb.Build()
			if tc.shouldErr {
				s.Assert().NotNil(err)
			} else {
				s.Assert().Nil(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("level", 25, 1, 20, vb)
	errors.ValidateRange("ability", 15, 3, 18, vb)
	errors.ValidateRange("hp", 0, 1, 100, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	validationErrors := s.fieldErrors(err)
	s.Assert().Contains(validationErrors["level"][0], "must be between 1 and 20")
	s.Assert().Contains(validationErrors["hp"][0], "must be between 1 and 100")
	s.Assert().NotContains(validationErrors, "ability")
}

func (s *ValidationTestSuite) TestValidateEnum() {
	allowedWeather := []string{"clear", "rain", "snow", "fog"}

	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("weatherType", "hail", allowedWeather, vb)
	errors.ValidateEnum("previousWeather", "fog", allowedWeather, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	validationErrors := s.fieldErrors(err)
	s.Assert().Contains(validationErrors["weatherType"][0], "must be one of: clear, rain, snow, fog")
	s.Assert().NotContains(validationErrors, "previousWeather")
}

func (s *ValidationTestSuite) TestValidateFloatRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateFloatRange("weatherIntensity", 1.5, 0, 1, vb)
	errors.ValidateFloatRange("fogDensity", 0.5, 0, 1, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	validationErrors := s.fieldErrors(err)
	s.Assert().Contains(validationErrors["weatherIntensity"][0], "must be between 0 and 1")
	s.Assert().NotContains(validationErrors, "fogDensity")
}

func (s *ValidationTestSuite) TestComplexValidation() {
	// Simulate validating a weather update
	type WeatherInput struct {
		RoomID    string
		Type      string
		Intensity float64
	}

	input := WeatherInput{
		Type:      "sandstorm",
		Intensity: -0.5,
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("roomId", input.RoomID, vb)
	errors.ValidateEnum("weatherType", input.Type, []string{"clear", "rain", "snow", "fog"}, vb)
	errors.ValidateFloatRange("weatherIntensity", input.Intensity, 0, 1, vb)

	err := vb.Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	validationErrors := s.fieldErrors(err)
	s.Assert().Contains(validationErrors, "roomId")
	s.Assert().Contains(validationErrors, "weatherType")
	s.Assert().Contains(validationErrors, "weatherIntensity")
}
