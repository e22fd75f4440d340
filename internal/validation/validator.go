// Package validation checks request structs against their `validate` tags and
// reports failures with client facing field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"blog-go-template/internal/shared"
)

// Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	plans    sync.Map // reflect.Type -> []fieldRule
}

// fieldRule checks one field against one rule. shape is a single field
// struct carrying that rule as its only tag, so the validator reports the
// rule under the original field name.
type fieldRule struct {
	index int
	shape reflect.Type
}

// New builds a validator with English messages.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("register notblank: %w", err)
	}

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}
	for _, tr := range translations {
		if err := v.RegisterTranslation(tr.tag, trans, tr.register, tr.translate); err != nil {
			return nil, fmt.Errorf("register %s translation: %w", tr.tag, err)
		}
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Struct validates s. Every rule of every field is evaluated, so a field can
// fail several rules at once. Failures come back in field declaration order,
// then tag order. A non-nil error means s could not be validated at all.
//
// Rules run in isolation: cross-field tags such as eqfield or required_if
// are not supported.
func (v *Validator) Struct(s any) ([]shared.ValidationFailure, error) {
	rv := reflect.ValueOf(s)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("validation: %T is not a struct", s)
	}

	var failures []shared.ValidationFailure
	for _, r := range v.plan(rv.Type()) {
		one := reflect.New(r.shape).Elem()
		one.Field(0).Set(rv.Field(r.index))

		err := v.validate.Struct(one.Interface())
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for _, fe := range fieldErrs {
			failures = append(failures, shared.ValidationFailure{
				PropertyName: fe.StructField(),
				ErrorMessage: fe.Translate(v.trans),
			})
		}
	}
	return failures, nil
}

func (v *Validator) plan(t reflect.Type) []fieldRule {
	if p, ok := v.plans.Load(t); ok {
		return p.([]fieldRule)
	}
	var rules []fieldRule
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		for _, tag := range splitRules(f.Tag.Get("validate")) {
			shape := reflect.StructOf([]reflect.StructField{{
				Name: f.Name,
				Type: f.Type,
				Tag:  reflect.StructTag(`validate:"` + tag + `"`),
			}})
			rules = append(rules, fieldRule{index: i, shape: shape})
		}
	}
	p, _ := v.plans.LoadOrStore(t, rules)
	return p.([]fieldRule)
}

// splitRules breaks a validate tag into tags that each hold one rule. A
// leading omitempty is kept in front of every rule. Tags that dive into
// elements stay whole.
func splitRules(tag string) []string {
	if tag == "" || tag == "-" {
		return nil
	}
	if strings.Contains(tag, "dive") {
		return []string{tag}
	}
	parts := strings.Split(tag, ",")
	prefix := ""
	if parts[0] == "omitempty" {
		prefix, parts = "omitempty,", parts[1:]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, prefix+p)
		}
	}
	return out
}

type translation struct {
	tag       string
	register  validator.RegisterTranslationsFunc
	translate validator.TranslationFunc
}

const (
	keyEmpty     = "empty"
	keyMinLength = "min-length"
	keyMin       = "min-value"
)

var translations = []translation{
	{tag: "required", register: addEmpty, translate: translateEmpty},
	{tag: "notblank", register: addEmpty, translate: translateEmpty},
	{
		tag: "min",
		register: func(t ut.Translator) error {
			if err := t.Add(keyMinLength, "The length of '{0}' must be at least {1} characters. You entered {2} characters.", true); err != nil {
				return err
			}
			return t.Add(keyMin, "'{0}' must be greater than or equal to '{1}'.", true)
		},
		translate: func(t ut.Translator, fe validator.FieldError) string {
			field := shared.NormalizeFieldName(fe.StructField())
			if fe.Kind() == reflect.String {
				entered := utf8.RuneCountInString(fmt.Sprint(fe.Value()))
				msg, _ := t.T(keyMinLength, field, fe.Param(), fmt.Sprint(entered))
				return msg
			}
			msg, _ := t.T(keyMin, field, fe.Param())
			return msg
		},
	},
}

func addEmpty(t ut.Translator) error {
	return t.Add(keyEmpty, "'{0}' must not be empty.", true)
}

func translateEmpty(t ut.Translator, fe validator.FieldError) string {
	msg, _ := t.T(keyEmpty, shared.NormalizeFieldName(fe.StructField()))
	return msg
}

// Check validates s and converts rule failures into Validation errors keyed
// by normalized field name. An empty slice means s is valid.
func (v *Validator) Check(s any) ([]shared.Error, error) {
	failures, err := v.Struct(s)
	if err != nil {
		return nil, err
	}
	return shared.ValidationErrors(failures), nil
}
