package core

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// MinYear is the release year of the first known film.
const MinYear = 1878

const (
	MinRating = 0.0
	MaxRating = 10.0
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)

	nameTag   = "name"
	nameText  = "only letters, spaces, hyphens and apostrophes are allowed (2-40 characters)"
	nameRegex = regexp.MustCompile(`^[A-Za-zÀ-ÿ' -]{2,40}$`)

	yearTag  = "year"
	yearText = "must be a four digit year between 1878 and the current year"

	ratingTag  = "rating"
	ratingText = "must be a number between 0 and 10"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(nameTag, nameValidation)
	RegisterCustomTranslation(validate, translator, nameTag, nameText)

	_ = validate.RegisterValidation(yearTag, yearValidation)
	RegisterCustomTranslation(validate, translator, yearTag, yearText)

	_ = validate.RegisterValidation(ratingTag, ratingValidation)
	RegisterCustomTranslation(validate, translator, ratingTag, ratingText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// nameValidation allows human names: letters, spaces, hyphens and apostrophes.
func nameValidation(fl validator.FieldLevel) bool {
	return nameRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

// yearValidation checks a form year string: 4 digits, MinYear..current year.
func yearValidation(fl validator.FieldLevel) bool {
	return IsValidYear(fl.Field().String())
}

// ratingValidation checks a form rating string: float within MinRating..MaxRating.
func ratingValidation(fl validator.FieldLevel) bool {
	return IsValidRating(fl.Field().String())
}

// IsValidYear reports whether year is a 4 digit year within MinYear and the current year.
func IsValidYear(year string) bool {
	if len(year) != 4 {
		return false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return MinYear <= y && y <= time.Now().Year()
}

// IsValidRating reports whether rating parses as a float within MinRating and MaxRating.
func IsValidRating(rating string) bool {
	val, err := strconv.ParseFloat(rating, 64)
	if err != nil {
		return false
	}
	return MinRating <= val && val <= MaxRating
}

// NormalizeRating converts a rating string to a float clamped to the valid boundaries.
func NormalizeRating(rating string) float64 {
	val, err := strconv.ParseFloat(rating, 64)
	if err != nil {
		val = MinRating
	}
	if val < MinRating {
		return MinRating
	}
	if val > MaxRating {
		return MaxRating
	}
	return val
}
