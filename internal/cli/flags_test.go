package cli

import (
	"reflect"
	"testing"

	"codeberg.org/tkimura/transflow/internal/budget"
	"codeberg.org/tkimura/transflow/internal/memory"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"SourceLang", flags.SourceLang, "ja"},
		{"TargetLangs", flags.TargetLangs, []string{"en"}},
		{"OutputDir", flags.OutputDir, "."},
		{"PreserveTags", flags.PreserveTags, true},
		{"BudgetJPY", flags.BudgetJPY, budget.DefaultCeilingJPY},
		{"MemoryMax", flags.MemoryMax, memory.DefaultMaxEntries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"EnglishFirst", flags.EnglishFirst},
		{"Assess", flags.Assess},
		{"ShowStats", flags.ShowStats},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"InputFile", flags.InputFile},
		{"GlossaryFile", flags.GlossaryFile},
		{"MemoryPath", flags.MemoryPath},
		{"GrokModel", flags.GrokModel},
		{"GeminiModel", flags.GeminiModel},
		{"ClaudeModel", flags.ClaudeModel},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestFlagsStructure(t *testing.T) {
	// Test that Flags struct has all expected fields
	flags := &Flags{}
	flagsType := reflect.TypeOf(*flags)

	expectedFields := []string{
		"CfgFile", "InputFile", "SourceLang", "TargetLangs", "OutputDir",
		"PreserveTags", "EnglishFirst", "Assess", "ShowStats",
		"BudgetJPY", "MemoryPath", "MemoryMax", "GlossaryFile",
		"GrokModel", "GeminiModel", "ClaudeModel",
	}

	for _, fieldName := range expectedFields {
		t.Run("has_field_"+fieldName, func(t *testing.T) {
			if _, ok := flagsType.FieldByName(fieldName); !ok {
				t.Errorf("Flags struct missing field: %s", fieldName)
			}
		})
	}
}
