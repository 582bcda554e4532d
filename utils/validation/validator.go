package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Bounds for course material fields. Lessons allow shorter titles and
// descriptions than courses.
const (
	CourseTitleMin = 5
	LessonTitleMin = 3
	TitleMax       = 200

	CourseDescriptionMin = 20
	CourseDescriptionMax = 2000
	LessonDescriptionMin = 10
	LessonDescriptionMax = 1000
)

// titleCharsRegex restricts titles to letters, digits and basic punctuation.
var titleCharsRegex = regexp.MustCompile(`^[\p{L}\p{N}_\s\-.,:!?()]+$`)

// videoHostAllowlist is the set of hosts lesson videos may be served from.
// YouTube only; see DESIGN.md for the variant decision.
var videoHostAllowlist = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// Validator wraps the go-playground validator with the project's
// custom rules registered.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()

	// Report fields under their json names so violations line up with
	// the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("title_chars", validateTitleChars)
	v.RegisterValidation("video_url", validateVideoURL)

	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

func validateTitleChars(fl validator.FieldLevel) bool {
	return titleCharsRegex.MatchString(fl.Field().String())
}

func validateVideoURL(fl validator.FieldLevel) bool {
	return IsAllowedVideoURL(fl.Field().String())
}

// IsAllowedVideoURL reports whether the value is a well-formed absolute
// http(s) URL whose host is on the video allow-list. Path and query
// content never influence the outcome.
func IsAllowedVideoURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return videoHostAllowlist[strings.ToLower(u.Hostname())]
}

// ValidateLessonContent applies the cross-field rule that a lesson's
// title must not repeat its description. Returns a field violation map,
// empty when the rule holds.
func ValidateLessonContent(title, description string) map[string]string {
	violations := make(map[string]string)
	if strings.EqualFold(strings.TrimSpace(title), strings.TrimSpace(description)) {
		violations["description"] = "Description must not duplicate the title"
	}
	return violations
}

// FormatValidationErrors converts validation errors to a field->message map
func FormatValidationErrors(err error) map[string]string {
	violations := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		violations["payload"] = err.Error()
		return violations
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			violations[field] = fmt.Sprintf("%s is required", field)
		case "email":
			violations[field] = "Invalid email format"
		case "min":
			violations[field] = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			violations[field] = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case "gt":
			violations[field] = fmt.Sprintf("%s must be greater than %s", field, e.Param())
		case "eqfield":
			violations[field] = "Password fields do not match"
		case "title_chars":
			violations[field] = fmt.Sprintf("%s contains characters that are not allowed", field)
		case "video_url":
			violations[field] = "Only YouTube video links are allowed"
		case "url":
			violations[field] = fmt.Sprintf("%s must be a valid URL", field)
		default:
			violations[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return violations
}

// SanitizeString removes null bytes and surrounding whitespace.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
