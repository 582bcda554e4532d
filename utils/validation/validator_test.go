package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedVideoURL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		allowed bool
	}{
		{"youtube watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"youtube bare host", "https://youtube.com/watch?v=abc", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"mobile host", "https://m.youtube.com/watch?v=abc", true},
		{"plain http", "http://youtube.com/watch?v=abc", true},
		{"vimeo rejected", "https://vimeo.com/12345", false},
		{"lookalike host", "https://youtube.com.evil.io/watch?v=abc", false},
		{"allowed host in path only", "https://evil.io/youtube.com/watch", false},
		{"allowed host in query only", "https://evil.io/?u=youtube.com", false},
		{"missing scheme", "youtube.com/watch?v=abc", false},
		{"ftp scheme", "ftp://youtube.com/file", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsAllowedVideoURL(tt.value))
		})
	}
}

func TestValidateLessonContent(t *testing.T) {
	assert.Empty(t, ValidateLessonContent("Intro to Go", "A gentle first look at the language"))

	violations := ValidateLessonContent("Intro to Go", "intro to go")
	assert.Contains(t, violations, "description")

	// Surrounding whitespace does not dodge the rule.
	violations = ValidateLessonContent("  Intro to Go ", "INTRO TO GO")
	assert.Contains(t, violations, "description")
}

type titledPayload struct {
	Title string `json:"title" validate:"required,min=5,max=200,title_chars"`
}

func TestTitleCharsRule(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.ValidateStruct(titledPayload{Title: "Go: Concurrency, Patterns (Part 1)!"}))
	require.NoError(t, v.ValidateStruct(titledPayload{Title: "Основы программирования"}))

	err := v.ValidateStruct(titledPayload{Title: "Bad <script> title"})
	require.Error(t, err)
	fields := FormatValidationErrors(err)
	assert.Contains(t, fields, "title")

	err = v.ValidateStruct(titledPayload{Title: "abc"})
	require.Error(t, err)
	fields = FormatValidationErrors(err)
	assert.Contains(t, fields["title"], "at least 5")

	err = v.ValidateStruct(titledPayload{Title: strings.Repeat("a", 201)})
	require.Error(t, err)
}

type registerPayload struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func TestPasswordConfirmMismatchNamesPasswordField(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(registerPayload{
		Email:           "user@test.com",
		Password:        "secret-password",
		PasswordConfirm: "different-password",
	})
	require.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Contains(t, fields, "password_confirm")
	assert.Contains(t, fields["password_confirm"], "do not match")

	require.NoError(t, v.ValidateStruct(registerPayload{
		Email:           "user@test.com",
		Password:        "secret-password",
		PasswordConfirm: "secret-password",
	}))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello\x00 "))
}
