package handlers

import "testing"

func floatPtr(value float64) *float64 { return &value }

func TestValidateChoreRequest_ProportionalNeedsWeightPerOccupant(t *testing.T) {
	request := choreRequest{Name: "dishes", Proportional: true}
	if message := validateChoreRequest(request); message == "" {
		t.Error("expected a validation message, got none")
	}

	request.WeightPerOccupant = floatPtr(1.5)
	if message := validateChoreRequest(request); message != "" {
		t.Errorf("unexpected validation message: %q", message)
	}
}

func TestValidateChoreRequest_ProportionalForbidsTotalWeight(t *testing.T) {
	request := choreRequest{
		Name:              "dishes",
		Proportional:      true,
		WeightPerOccupant: floatPtr(1.5),
		TotalWeight:       floatPtr(3),
	}
	if message := validateChoreRequest(request); message == "" {
		t.Error("expected a validation message, got none")
	}
}

func TestValidateChoreRequest_FixedWeightNeedsTotalWeight(t *testing.T) {
	request := choreRequest{Name: "trash"}
	if message := validateChoreRequest(request); message == "" {
		t.Error("expected a validation message, got none")
	}

	request.TotalWeight = floatPtr(2)
	if message := validateChoreRequest(request); message != "" {
		t.Errorf("unexpected validation message: %q", message)
	}
}

func TestValidateChoreRequest_FixedWeightForbidsWeightPerOccupant(t *testing.T) {
	request := choreRequest{
		Name:              "trash",
		TotalWeight:       floatPtr(2),
		WeightPerOccupant: floatPtr(1),
	}
	if message := validateChoreRequest(request); message == "" {
		t.Error("expected a validation message, got none")
	}
}
