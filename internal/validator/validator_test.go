package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type sample struct {
	Type string `validate:"category_type"`
	Code string `validate:"category_code"`
	Role string `validate:"role"`
}

func TestRegister(t *testing.T) {
	Register()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("expected go-playground validator engine")
	}

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"all_valid", sample{Type: "INCOME", Code: "DANA_SOSIAL", Role: "KOMITE"}, true},
		{"expense", sample{Type: "EXPENSE", Code: "KAS", Role: "ADMIN"}, true},
		{"lowercase_type", sample{Type: "income", Code: "KAS", Role: "ADMIN"}, false},
		{"transfer_type", sample{Type: "TRANSFER", Code: "KAS", Role: "ADMIN"}, false},
		{"code_with_space", sample{Type: "INCOME", Code: "DANA SOSIAL", Role: "ADMIN"}, false},
		{"lowercase_code", sample{Type: "INCOME", Code: "kas", Role: "ADMIN"}, false},
		{"unknown_role", sample{Type: "INCOME", Code: "KAS", Role: "BENDAHARA"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
