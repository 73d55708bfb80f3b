// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package validation

import (
	"strings"
	"testing"
)

type statusChangeRequest struct {
	OrderID string `validate:"required,min=1"`
	Status  string `validate:"required,oneof=pending preparing ready served"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := statusChangeRequest{OrderID: "ord-42", Status: "ready"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_SingleError(t *testing.T) {
	req := statusChangeRequest{OrderID: "", Status: "ready"}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("Errors() len = %d, want 1", len(err.Errors()))
	}

	fe := err.Errors()[0]
	if fe.Field() != "OrderID" {
		t.Errorf("Field() = %q, want OrderID", fe.Field())
	}
	if fe.Tag() != "required" {
		t.Errorf("Tag() = %q, want required", fe.Tag())
	}
	if !strings.Contains(fe.Error(), "required") {
		t.Errorf("Error() = %q, want mention of required", fe.Error())
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	req := statusChangeRequest{}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("Errors() len = %d, want 2", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T, want []map[string]interface{}", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("fields len = %d, want 2", len(fields))
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	req := statusChangeRequest{OrderID: "ord-1", Status: "burnt"}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Status" {
		t.Errorf("Details[field] = %v, want Status", apiErr.Details["field"])
	}
	if !strings.Contains(apiErr.Message, "one of") {
		t.Errorf("Message = %q, want oneof translation", apiErr.Message)
	}
}

func TestTranslateError_MinMaxStrings(t *testing.T) {
	type lengths struct {
		Name string `validate:"min=3,max=10"`
	}

	err := ValidateStruct(&lengths{Name: "ab"})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if msg := err.Error(); !strings.Contains(msg, "at least 3 characters") {
		t.Errorf("Error() = %q, want character count message", msg)
	}

	err = ValidateStruct(&lengths{Name: "far too long a name"})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if msg := err.Error(); !strings.Contains(msg, "at most 10 characters") {
		t.Errorf("Error() = %q, want character count message", msg)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("GetValidator() returned different instances")
	}
}
