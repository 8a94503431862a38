package keybinds

import (
	"strings"
	"testing"
)

func TestNewValidator(t *testing.T) {
	v := NewValidator()

	if v == nil {
		t.Fatal("NewValidator returned nil")
	}

	if !v.reservedKeys["ctrl+c"] {
		t.Error("Expected ctrl+c to be a reserved key")
	}

	if !v.inputContexts[ContextForm] || !v.inputContexts[ContextSearch] {
		t.Error("Expected form and search to be input contexts")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name: "conflict error",
			err: ValidationError{
				Type:    "conflict",
				Context: ContextForm,
				Key:     "a",
				Message: "printable key",
			},
			expected: "[conflict] a in context 'form': printable key",
		},
		{
			name: "invalid error",
			err: ValidationError{
				Type:    "invalid",
				Context: ContextGlobal,
				Key:     "",
				Message: "empty key",
			},
			expected: "[invalid]  in context 'global': empty key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidationResult_String(t *testing.T) {
	empty := &ValidationResult{}
	if got := empty.String(); got != "No issues found" {
		t.Errorf("String() = %q, want %q", got, "No issues found")
	}

	result := &ValidationResult{
		Errors:   []ValidationError{{Type: "conflict", Context: ContextForm, Key: "x", Message: "m"}},
		Warnings: []ValidationError{{Type: "warning", Context: ContextTable, Key: "y", Message: "w"}},
	}
	got := result.String()
	if !strings.Contains(got, "Errors (1)") || !strings.Contains(got, "Warnings (1)") {
		t.Errorf("String() missing sections: %q", got)
	}
	if !result.HasErrors() || !result.HasWarnings() {
		t.Error("Expected both errors and warnings")
	}
}

func TestValidateRegistry_Defaults(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())

	if result.HasErrors() {
		t.Errorf("default registry has errors:\n%s", result.String())
	}
	if result.HasWarnings() {
		t.Errorf("default registry has warnings:\n%s", result.String())
	}
}

func TestCheckInputCapture(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextForm, "s", ActionFormSubmit)
	r.Register(ContextSearch, "ctrl+x", ActionSearchCancel)
	r.Register(ContextTable, "s", ActionOpenSearch)

	result := &ValidationResult{}
	NewValidator().checkInputCapture(r, result)

	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].Context != ContextForm || result.Errors[0].Key != "s" {
		t.Errorf("Unexpected error: %v", result.Errors[0])
	}
}

func TestCheckReservedKeys(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextGlobal, "ctrl+c", ActionQuit)

	result := &ValidationResult{}
	NewValidator().checkReservedKeys(r, result)

	if len(result.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(result.Warnings))
	}
}

func TestCheckShadowing(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextHelp, "q", ActionQuit)

	result := &ValidationResult{}
	NewValidator().checkShadowing(r, result)

	if len(result.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	w := result.Warnings[0]
	if w.Context != ContextHelp || !strings.Contains(w.Message, "viewer") {
		t.Errorf("Unexpected warning: %v", w)
	}
}

func TestCheckUnknownActions(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextTable, "x", Action("explode"))

	result := &ValidationResult{}
	NewValidator().checkUnknownActions(r, result)

	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(result.Errors))
	}
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	ok := v.ValidateConfig(&Config{Table: map[string]string{"delete": "x"}})
	if ok.HasErrors() {
		t.Errorf("Expected no errors, got:\n%s", ok.String())
	}

	bad := v.ValidateConfig(&Config{Table: map[string]string{"explode": "x"}})
	if !bad.HasErrors() {
		t.Error("Expected unknown action to be an error")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"a", false},
		{"ctrl+s", false},
		{"shift+tab", false},
		{"", true},
		{"ctrl+", true},
		{"a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAction(t *testing.T) {
	if err := ValidateAction(""); err == nil {
		t.Error("Expected error for empty action")
	}
	if err := ValidateAction("add"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
