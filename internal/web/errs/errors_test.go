package errs_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/adamwoolhether/carbone/internal/web/errs"
)

func TestNew(t *testing.T) {
	err := errs.New(http.StatusBadRequest, fmt.Errorf("bad input"))

	if err.Code != http.StatusBadRequest {
		t.Fatalf("Code = %d, want %d", err.Code, http.StatusBadRequest)
	}
	if err.Message != "bad input" {
		t.Fatalf("Message = %q, want %q", err.Message, "bad input")
	}
	if err.FuncName == "" {
		t.Fatal("FuncName should be populated by runtime.Caller")
	}
	if !strings.Contains(err.FileName, "errors_test.go") {
		t.Fatalf("FileName = %q, want to contain errors_test.go", err.FileName)
	}
	if err.IsInternal() {
		t.Fatal("New must not be internal")
	}
}

func TestNewf(t *testing.T) {
	err := errs.Newf(http.StatusNotFound, "Template %s not found", "abc")

	if err.Code != http.StatusNotFound {
		t.Fatalf("Code = %d, want %d", err.Code, http.StatusNotFound)
	}
	if err.Error() != "Template abc not found" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "Template abc not found")
	}
}

func TestNewInternal(t *testing.T) {
	err := errs.NewInternal(fmt.Errorf("disk failure"))

	if err.Code != http.StatusInternalServerError {
		t.Fatalf("Code = %d, want %d", err.Code, http.StatusInternalServerError)
	}
	if !err.IsInternal() {
		t.Fatal("NewInternal must be internal")
	}
}

func TestError_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(errs.Newf(http.StatusUnauthorized, "Unauthorized"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(b) != `{"success":false,"error":"Unauthorized"}` {
		t.Fatalf("body = %s", b)
	}
}

func TestError_As(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", errs.Newf(http.StatusBadRequest, "bad"))

	appErr, ok := errors.AsType[*errs.Error](wrapped)
	if !ok {
		t.Fatal("expected *errs.Error in chain")
	}
	if appErr.Code != http.StatusBadRequest {
		t.Fatalf("Code = %d, want %d", appErr.Code, http.StatusBadRequest)
	}
}
